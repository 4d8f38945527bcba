package core

import "fmt"

// DisplayPeriod selects which normalized figure a summary is shown in.
type DisplayPeriod string

const (
	PeriodDay   DisplayPeriod = "day"
	PeriodMonth DisplayPeriod = "month"
	PeriodYear  DisplayPeriod = "year"
)

var periodCycle = []DisplayPeriod{PeriodDay, PeriodMonth, PeriodYear}

// ParseDisplayPeriod parses day, month or year. An empty string means day.
func ParseDisplayPeriod(s string) (DisplayPeriod, error) {
	switch DisplayPeriod(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth, PeriodYear:
		return DisplayPeriod(s), nil
	}
	return "", fmt.Errorf("unknown display period %q", s)
}

// Next cycles day -> month -> year -> day.
func (p DisplayPeriod) Next() DisplayPeriod {
	for i, q := range periodCycle {
		if q == p {
			return periodCycle[(i+1)%len(periodCycle)]
		}
	}
	return PeriodDay
}

// Prev cycles in the opposite direction of Next.
func (p DisplayPeriod) Prev() DisplayPeriod {
	for i, q := range periodCycle {
		if q == p {
			return periodCycle[(i+len(periodCycle)-1)%len(periodCycle)]
		}
	}
	return PeriodDay
}

// Label is the per-unit suffix shown next to amounts.
func (p DisplayPeriod) Label() string {
	switch p {
	case PeriodMonth:
		return "per month"
	case PeriodYear:
		return "per year"
	}
	return "per day"
}

// CategorySummary holds the totals of one category.
type CategorySummary struct {
	Category          string  `json:"category"`
	TotalCostPerDay   float64 `json:"totalCostPerDay"`
	TotalCostPerMonth float64 `json:"totalCostPerMonth"`
	TotalCostPerYear  float64 `json:"totalCostPerYear"`
	ItemCount         int     `json:"itemCount"`
}

// Total returns the figure for the given period.
func (c CategorySummary) Total(p DisplayPeriod) float64 {
	return pick(p, c.TotalCostPerDay, c.TotalCostPerMonth, c.TotalCostPerYear)
}

// SummaryData is the portfolio-wide view over all items.
type SummaryData struct {
	TotalCostPerDay   float64           `json:"totalCostPerDay"`
	TotalCostPerMonth float64           `json:"totalCostPerMonth"`
	TotalCostPerYear  float64           `json:"totalCostPerYear"`
	CategorySummary   []CategorySummary `json:"categorySummary"`
}

// Total returns the figure for the given period.
func (s SummaryData) Total(p DisplayPeriod) float64 {
	return pick(p, s.TotalCostPerDay, s.TotalCostPerMonth, s.TotalCostPerYear)
}

// ItemCount is the number of items across all categories.
func (s SummaryData) ItemCount() int {
	n := 0
	for _, c := range s.CategorySummary {
		n += c.ItemCount
	}
	return n
}

// CategoryShare is one slice of the category breakdown for a display period.
type CategoryShare struct {
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	ItemCount int     `json:"itemCount"`
	Percent   float64 `json:"percent"`
}

func pick(p DisplayPeriod, day, month, year float64) float64 {
	switch p {
	case PeriodMonth:
		return month
	case PeriodYear:
		return year
	}
	return day
}
