// Package importer reads item exports of the browser version of the app,
// where the list lives under the ichinichi_items local storage key.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"ichinichi/internal/core"
)

// DefaultPath selects the item list in a local storage dump.
const DefaultPath = "$.ichinichi_items"

var ErrNoItems = errors.New("no item list at path")

// legacyItem accepts both the browser field names and the current ones.
type legacyItem struct {
	Name            string          `json:"name"`
	Price           json.RawMessage `json:"price"`
	PaymentInterval string          `json:"paymentInterval"`
	PaymentType     string          `json:"paymentType"`
	PaymentPeriod   *core.DateRange `json:"paymentPeriod"`
	UsagePeriod     core.DateRange  `json:"usagePeriod"`
	Category        string          `json:"category"`
}

// Parse decodes the JSON document in r and returns the items found at path.
// The value at path may be an array of items or a string holding one, which
// is how local storage keeps it. An empty path means DefaultPath.
func Parse(r io.Reader, path string) ([]core.ItemInput, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrNoItems, path, err)
	}
	if s, ok := val.(string); ok {
		var inner any
		d := json.NewDecoder(strings.NewReader(s))
		d.UseNumber()
		if err := d.Decode(&inner); err != nil {
			return nil, fmt.Errorf("decode embedded item list: %w", err)
		}
		val = inner
	}
	list, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%w %s: got %T", ErrNoItems, path, val)
	}

	inputs := make([]core.ItemInput, 0, len(list))
	for i, raw := range list {
		in, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func decodeItem(raw any) (core.ItemInput, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return core.ItemInput{}, err
	}
	var li legacyItem
	if err := json.Unmarshal(b, &li); err != nil {
		return core.ItemInput{}, err
	}

	price, err := parsePrice(li.Price)
	if err != nil {
		return core.ItemInput{}, err
	}

	cadence := li.PaymentInterval
	if cadence == "" {
		cadence = li.PaymentType
	}
	pc, err := core.ParseCadence(cadence)
	if err != nil {
		return core.ItemInput{}, err
	}

	return core.ItemInput{
		Name:          li.Name,
		Price:         price,
		Cadence:       pc,
		PaymentPeriod: li.PaymentPeriod,
		UsagePeriod:   li.UsagePeriod,
		Category:      li.Category,
	}.Normalize(), nil
}

// parsePrice accepts a JSON number or a string such as "1,200".
func parsePrice(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return core.ParsePrice(s)
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", core.ErrInvalidPrice, raw)
	}
	return f, nil
}
