// Package core provides price parsing utilities.
//
// Prices are entered as free text in the CLI and the legacy import, and are
// carried as float64 once parsed. Parsing goes through decimal so that inputs
// like "0.1" or "1,980" do not pick up binary rounding noise on the way in.
package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid price")

// PricePrecision is the number of fractional digits kept when parsing.
const PricePrecision = 2

// ParsePrice converts a user supplied price to a positive float64.
//
// Thousands separators (",", "_", " ") and a leading currency sign (¥, ￥, $,
// €) are ignored. The value is rounded half away from zero to PricePrecision
// digits. Zero, negative, non-numeric and out of float64 range inputs are
// rejected.
//
// Examples:
//
//	ParsePrice("1,980")   -> 1980, nil
//	ParsePrice("¥12000")  -> 12000, nil
//	ParsePrice("9.999")   -> 10, nil
//	ParsePrice("-1")      -> 0, ErrInvalidPrice
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, sign := range []string{"¥", "￥", "$", "€"} {
		s = strings.TrimPrefix(s, sign)
	}
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	d = d.Round(PricePrecision)
	if !d.IsPositive() {
		return 0, ErrInvalidPrice
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, ErrInvalidPrice
	}
	return f, nil
}
