// Package cost turns heterogeneous payment inputs into comparable daily,
// monthly and yearly figures, and aggregates them across items.
//
// Each payment cadence has its own Normalizer registered by cadence. Nothing
// in this package returns an error: degenerate inputs produce 0.
package cost

import (
	"fmt"
	"math"

	"ichinichi/internal/core"
)

// Nominal period lengths. Calendar months and leap years are not modelled.
const (
	MonthDays = 30
	YearDays  = 365
)

// Normalizer is the strategy interface for one payment cadence.
type Normalizer interface {
	// PerDay returns the cost per day of usage. usageDays is always positive.
	PerDay(in core.ItemInput, usageDays int) float64
	// PerMonth returns the monthly figure given the price and the item's
	// canonical daily cost.
	PerMonth(price, perDay float64) float64
	// PerYear returns the yearly figure given the price and the item's
	// canonical daily cost.
	PerYear(price, perDay float64) float64
}

// OneTimeNormalizer spreads a single payment over the usage period.
type OneTimeNormalizer struct{}

func (OneTimeNormalizer) PerDay(in core.ItemInput, usageDays int) float64 {
	return in.Price / float64(usageDays)
}

func (OneTimeNormalizer) PerMonth(_, perDay float64) float64 { return perDay * MonthDays }

func (OneTimeNormalizer) PerYear(_, perDay float64) float64 { return perDay * YearDays }

// MonthlyNormalizer charges the price once per nominal 30 day interval.
type MonthlyNormalizer struct{}

func (MonthlyNormalizer) PerDay(in core.ItemInput, usageDays int) float64 {
	return recurringPerDay(in, usageDays, MonthDays)
}

func (MonthlyNormalizer) PerMonth(price, _ float64) float64 { return price }

func (MonthlyNormalizer) PerYear(price, _ float64) float64 { return price * 12 }

// YearlyNormalizer charges the price once per nominal 365 day interval.
type YearlyNormalizer struct{}

func (YearlyNormalizer) PerDay(in core.ItemInput, usageDays int) float64 {
	return recurringPerDay(in, usageDays, YearDays)
}

func (YearlyNormalizer) PerMonth(price, _ float64) float64 { return price / 12 }

func (YearlyNormalizer) PerYear(price, _ float64) float64 { return price }

// recurringPerDay counts the payments that fall in the billing span (the
// payment period when given, the usage period otherwise) and spreads their sum
// over the usage days. A payment period that is not a valid range is ignored.
func recurringPerDay(in core.ItemInput, usageDays, intervalDays int) float64 {
	billingDays := usageDays
	if in.PaymentPeriod != nil && in.PaymentPeriod.Valid() {
		billingDays = in.PaymentPeriod.Days()
	}
	payments := math.Ceil(float64(billingDays) / float64(intervalDays))
	return in.Price * payments / float64(usageDays)
}

// normalizers maps payment cadences to their strategies.
var normalizers = map[core.PaymentCadence]Normalizer{
	core.OneTime: OneTimeNormalizer{},
	core.Monthly: MonthlyNormalizer{},
	core.Yearly:  YearlyNormalizer{},
}

// NormalizerFor returns the strategy for a cadence.
func NormalizerFor(cadence core.PaymentCadence) (Normalizer, error) {
	n, ok := normalizers[cadence]
	if !ok {
		return nil, fmt.Errorf("unknown payment cadence: %s", cadence)
	}
	return n, nil
}

// RegisterNormalizer adds or replaces the strategy for a cadence. It is not
// safe to call concurrently with the engine and belongs in init code.
func RegisterNormalizer(cadence core.PaymentCadence, n Normalizer) {
	normalizers[cadence] = n
}
