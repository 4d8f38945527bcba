package cost

import (
	"sort"

	"ichinichi/internal/core"
)

// Summarize rolls items up into portfolio and per-category totals.
//
// Monthly and yearly totals sum each item's own PerMonth/PerYear figure, so a
// monthly subscription contributes its price to the monthly total rather
// than CostPerDay*30. Categories are ordered by daily total, highest first;
// ties keep the order in which the categories were first seen.
func Summarize(items []core.Item) core.SummaryData {
	summary := core.SummaryData{CategorySummary: []core.CategorySummary{}}
	index := make(map[string]int)

	for _, item := range items {
		perMonth := PerMonth(item)
		perYear := PerYear(item)

		summary.TotalCostPerDay += item.CostPerDay
		summary.TotalCostPerMonth += perMonth
		summary.TotalCostPerYear += perYear

		category := item.CategoryOrDefault()
		i, ok := index[category]
		if !ok {
			i = len(summary.CategorySummary)
			index[category] = i
			summary.CategorySummary = append(summary.CategorySummary, core.CategorySummary{Category: category})
		}
		cs := &summary.CategorySummary[i]
		cs.TotalCostPerDay += item.CostPerDay
		cs.TotalCostPerMonth += perMonth
		cs.TotalCostPerYear += perYear
		cs.ItemCount++
	}

	sort.SliceStable(summary.CategorySummary, func(a, b int) bool {
		return summary.CategorySummary[a].TotalCostPerDay > summary.CategorySummary[b].TotalCostPerDay
	})
	return summary
}

// Shares breaks the summary down by category for one display period. Percent
// is relative to the period total and is 0 when that total is 0.
func Shares(summary core.SummaryData, period core.DisplayPeriod) []core.CategoryShare {
	total := summary.Total(period)
	shares := make([]core.CategoryShare, 0, len(summary.CategorySummary))
	for _, cs := range summary.CategorySummary {
		amount := cs.Total(period)
		var pct float64
		if total != 0 {
			pct = amount / total * 100
		}
		shares = append(shares, core.CategoryShare{
			Category:  cs.Category,
			Amount:    amount,
			ItemCount: cs.ItemCount,
			Percent:   pct,
		})
	}
	return shares
}

// Categories returns the distinct non-empty categories in ascending order.
func Categories(items []core.Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	sort.Strings(out)
	return out
}

// FilterByCategory returns the items in a category, preserving order. An
// empty category returns every item; UncategorizedLabel matches items without
// a category.
func FilterByCategory(items []core.Item, category string) []core.Item {
	if category == "" {
		out := make([]core.Item, len(items))
		copy(out, items)
		return out
	}
	out := []core.Item{}
	for _, item := range items {
		if item.Category == category || (category == core.UncategorizedLabel && item.Category == "") {
			out = append(out, item)
		}
	}
	return out
}
