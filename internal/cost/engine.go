package cost

import "ichinichi/internal/core"

// PerDay returns the canonical cost per day of an input. It returns 0 when the
// usage period is empty or inverted, or when the cadence is unknown.
func PerDay(in core.ItemInput) float64 {
	if in.UsagePeriod.IsEmpty() {
		return 0
	}
	usageDays := in.UsagePeriod.Days()
	if usageDays <= 0 {
		return 0
	}
	n, err := NormalizerFor(in.Cadence)
	if err != nil {
		return 0
	}
	return n.PerDay(in, usageDays)
}

// PerMonth derives the monthly figure of a stored item from its cadence,
// price and cached CostPerDay.
func PerMonth(item core.Item) float64 {
	n, err := NormalizerFor(item.Cadence)
	if err != nil {
		return item.CostPerDay * MonthDays
	}
	return n.PerMonth(item.Price, item.CostPerDay)
}

// PerYear derives the yearly figure of a stored item from its cadence, price
// and cached CostPerDay.
func PerYear(item core.Item) float64 {
	n, err := NormalizerFor(item.Cadence)
	if err != nil {
		return item.CostPerDay * YearDays
	}
	return n.PerYear(item.Price, item.CostPerDay)
}

// Preview is the set of normalized figures for one input.
type Preview struct {
	CostPerDay   float64 `json:"costPerDay"`
	CostPerMonth float64 `json:"costPerMonth"`
	CostPerYear  float64 `json:"costPerYear"`
}

// PreviewOf computes the figures an input would have once saved.
func PreviewOf(in core.ItemInput) Preview {
	item := core.Item{ItemInput: in, CostPerDay: PerDay(in)}
	return Preview{
		CostPerDay:   item.CostPerDay,
		CostPerMonth: PerMonth(item),
		CostPerYear:  PerYear(item),
	}
}
