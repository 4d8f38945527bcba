package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	OneTime PaymentCadence = "once"
	Monthly PaymentCadence = "monthly"
	Yearly  PaymentCadence = "yearly"
)

// Field limits for ItemInput.
const (
	MaxNameLength     = 50
	MaxCategoryLength = 20
)

// UncategorizedLabel groups items that carry no category.
const UncategorizedLabel = "Uncategorized"

type (
	PaymentCadence string

	// ItemInput is the user supplied part of an item.
	ItemInput struct {
		Name          string         `json:"name"`
		Price         float64        `json:"price"`
		Cadence       PaymentCadence `json:"paymentType"`
		PaymentPeriod *DateRange     `json:"paymentPeriod,omitempty"`
		UsagePeriod   DateRange      `json:"usagePeriod"`
		Category      string         `json:"category,omitempty"`
	}

	// Item is a stored ItemInput. CostPerDay is derived from the input on
	// every write and never edited directly.
	Item struct {
		ItemInput
		ID         string    `json:"id"`
		CostPerDay float64   `json:"costPerDay"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidItem = errors.New("invalid item")
)

// ValidationError lists every field that failed validation, keyed by its
// JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidItem, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrInvalidItem) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidItem
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Valid reports whether c is one of the known cadences.
func (c PaymentCadence) Valid() bool {
	switch c {
	case OneTime, Monthly, Yearly:
		return true
	}
	return false
}

// Recurring reports whether the cadence bills more than once.
func (c PaymentCadence) Recurring() bool {
	return c == Monthly || c == Yearly
}

func (c PaymentCadence) Label() string {
	switch c {
	case OneTime:
		return "One-time"
	case Monthly:
		return "Monthly"
	case Yearly:
		return "Yearly"
	}
	return string(c)
}

// ParseCadence accepts the wire values plus a few common aliases.
func ParseCadence(s string) (PaymentCadence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once", "onetime", "one-time", "one_time":
		return OneTime, nil
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year", "annual":
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown payment cadence %q", s)
}

// Normalize returns a copy with surrounding whitespace removed from the text
// fields.
func (in ItemInput) Normalize() ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.PaymentPeriod != nil && in.PaymentPeriod.IsEmpty() {
		in.PaymentPeriod = nil
	}
	return in
}

// Validate checks every field and reports all failures at once. The input is
// expected to be normalized.
func (in ItemInput) Validate() error {
	var verr ValidationError

	nameLen := utf8.RuneCountInString(in.Name)
	switch {
	case nameLen == 0:
		verr.add("name", "name is required")
	case nameLen > MaxNameLength:
		verr.add("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}

	switch {
	case !(in.Price > 0):
		verr.add("price", "price must be greater than 0")
	case math.IsInf(in.Price, 1):
		verr.add("price", "price is out of range")
	}

	if !in.Cadence.Valid() {
		verr.add("paymentType", fmt.Sprintf("unknown payment cadence %q", in.Cadence))
	}

	switch {
	case in.UsagePeriod.IsEmpty():
		verr.add("usagePeriod", "usage period is required")
	case !in.UsagePeriod.Valid():
		verr.add("usagePeriod", "usage period must start on or before its end")
	}

	if in.PaymentPeriod != nil && !in.PaymentPeriod.Valid() {
		verr.add("paymentPeriod", "payment period must start on or before its end")
	}

	if utf8.RuneCountInString(in.Category) > MaxCategoryLength {
		verr.add("category", fmt.Sprintf("category must be at most %d characters", MaxCategoryLength))
	}

	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}

// CategoryOrDefault returns the item's category or UncategorizedLabel.
func (in ItemInput) CategoryOrDefault() string {
	if in.Category == "" {
		return UncategorizedLabel
	}
	return in.Category
}
