package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"ichinichi/internal/core"
	"ichinichi/internal/cost"
)

// ItemsHeader is the first row of the items sheet.
var ItemsHeader = []any{
	"ID", "Name", "Category", "Payment Type", "Price",
	"Usage Start", "Usage End", "Payment Start", "Payment End",
	"Cost/Day", "Cost/Month", "Cost/Year", "Updated At",
}

// SummaryHeader is the first row of the summary sheet.
var SummaryHeader = []any{"Category", "Items", "Cost/Day", "Cost/Month", "Cost/Year", "Share"}

// ItemRows renders items as sheet rows, header included.
func ItemRows(items []core.Item) [][]any {
	rows := make([][]any, 0, len(items)+1)
	rows = append(rows, ItemsHeader)
	for _, it := range items {
		var payStart, payEnd string
		if it.PaymentPeriod != nil {
			payStart = it.PaymentPeriod.Start.String()
			payEnd = it.PaymentPeriod.End.String()
		}
		rows = append(rows, []any{
			it.ID,
			it.Name,
			it.CategoryOrDefault(),
			it.Cadence.Label(),
			round2(it.Price),
			it.UsagePeriod.Start.String(),
			it.UsagePeriod.End.String(),
			payStart,
			payEnd,
			round2(it.CostPerDay),
			round2(cost.PerMonth(it)),
			round2(cost.PerYear(it)),
			it.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

// SummaryRows renders the per-category totals followed by a Total row and
// the export timestamp. Share is the daily share in percent.
func SummaryRows(summary core.SummaryData, exportedAt time.Time) [][]any {
	shares := cost.Shares(summary, core.PeriodDay)
	rows := make([][]any, 0, len(summary.CategorySummary)+3)
	rows = append(rows, SummaryHeader)
	for i, cs := range summary.CategorySummary {
		rows = append(rows, []any{
			cs.Category,
			cs.ItemCount,
			round2(cs.TotalCostPerDay),
			round2(cs.TotalCostPerMonth),
			round2(cs.TotalCostPerYear),
			round2(shares[i].Percent),
		})
	}
	rows = append(rows,
		[]any{
			"Total",
			summary.ItemCount(),
			round2(summary.TotalCostPerDay),
			round2(summary.TotalCostPerMonth),
			round2(summary.TotalCostPerYear),
			"",
		},
		[]any{"Exported At", exportedAt.UTC().Format(time.RFC3339)},
	)
	return rows
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
