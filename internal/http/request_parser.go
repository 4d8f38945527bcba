package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ichinichi/internal/core"
	"ichinichi/internal/cost"
)

const maxRankingLimit = 100

// errBadRequest marks malformed input that never reached validation.
var errBadRequest = errors.New("bad request")

// rangeBody keeps dates as text so a bad calendar date becomes a field error
// instead of a decoding failure.
type rangeBody struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

type itemBody struct {
	Name          string              `json:"name"`
	Price         float64             `json:"price"`
	Cadence       core.PaymentCadence `json:"paymentType"`
	PaymentPeriod *rangeBody          `json:"paymentPeriod"`
	UsagePeriod   rangeBody           `json:"usagePeriod"`
	Category      string              `json:"category"`
}

// bindItemInput decodes the JSON body of a create, update or preview request.
// Malformed JSON is errBadRequest; dates that are not calendar dates come back
// as a *core.ValidationError together with every other field failure.
func bindItemInput(c *gin.Context) (core.ItemInput, error) {
	var body itemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return core.ItemInput{}, fmt.Errorf("%w: malformed item body: %v", errBadRequest, err)
	}

	dateErrs := make(map[string]string)
	in := core.ItemInput{
		Name:        body.Name,
		Price:       body.Price,
		Cadence:     body.Cadence,
		UsagePeriod: parseRange(body.UsagePeriod, "usagePeriod", dateErrs),
		Category:    body.Category,
	}
	if body.PaymentPeriod != nil {
		r := parseRange(*body.PaymentPeriod, "paymentPeriod", dateErrs)
		in.PaymentPeriod = &r
	}
	if len(dateErrs) == 0 {
		return in, nil
	}

	verr := &core.ValidationError{Fields: dateErrs}
	var rest *core.ValidationError
	if errors.As(in.Normalize().Validate(), &rest) {
		for field, msg := range rest.Fields {
			if _, ok := verr.Fields[field]; !ok {
				verr.Fields[field] = msg
			}
		}
	}
	return core.ItemInput{}, verr
}

// parseRange converts both bounds, recording the first bad one under field.
// Empty bounds stay unset for validation to report.
func parseRange(r rangeBody, field string, errs map[string]string) core.DateRange {
	var out core.DateRange
	for _, b := range []struct {
		raw string
		dst *core.Date
	}{{r.Start, &out.Start}, {r.End, &out.End}} {
		if strings.TrimSpace(b.raw) == "" {
			continue
		}
		d, err := core.ParseDate(b.raw)
		if err != nil {
			if _, seen := errs[field]; !seen {
				errs[field] = fmt.Sprintf("%q is not a valid date (YYYY-MM-DD)", b.raw)
			}
			continue
		}
		*b.dst = d
	}
	return out
}

// parsePeriod reads ?period=day|month|year, defaulting to day.
func parsePeriod(c *gin.Context) (core.DisplayPeriod, error) {
	raw := strings.ToLower(strings.TrimSpace(c.Query("period")))
	p, err := core.ParseDisplayPeriod(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return p, nil
}

// parseLimit reads ?limit=, defaulting to cost.DefaultTopN and capping at
// maxRankingLimit.
func parseLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return cost.DefaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", errBadRequest)
	}
	return min(n, maxRankingLimit), nil
}
