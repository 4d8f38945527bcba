package cost

import (
	"math"
	"testing"

	"ichinichi/internal/core"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func span(start, end string) core.DateRange {
	return core.DateRange{Start: core.MustParseDate(start), End: core.MustParseDate(end)}
}

func TestPerDay(t *testing.T) {
	tests := []struct {
		name string
		in   core.ItemInput
		want float64
	}{
		{
			name: "one time spread over usage",
			in:   core.ItemInput{Price: 36500, Cadence: core.OneTime, UsagePeriod: span("2023-01-01", "2023-12-31")},
			want: 100,
		},
		{
			name: "one time single day",
			in:   core.ItemInput{Price: 500, Cadence: core.OneTime, UsagePeriod: span("2024-05-05", "2024-05-05")},
			want: 500,
		},
		{
			name: "monthly exactly thirty days",
			in:   core.ItemInput{Price: 900, Cadence: core.Monthly, UsagePeriod: span("2024-01-01", "2024-01-30")},
			want: 900.0 / 30,
		},
		{
			name: "monthly thirty one days counts two payments",
			in:   core.ItemInput{Price: 1000, Cadence: core.Monthly, UsagePeriod: span("2024-01-01", "2024-01-31")},
			want: 1000.0 * 2 / 31,
		},
		{
			name: "yearly common year",
			in:   core.ItemInput{Price: 12000, Cadence: core.Yearly, UsagePeriod: span("2023-01-01", "2023-12-31")},
			want: 12000.0 / 365,
		},
		{
			name: "yearly leap year rounds payments up",
			in:   core.ItemInput{Price: 12000, Cadence: core.Yearly, UsagePeriod: span("2024-01-01", "2024-12-31")},
			want: 12000.0 * 2 / 366,
		},
		{
			name: "yearly payment period shorter than usage",
			in: core.ItemInput{
				Price:         12000,
				Cadence:       core.Yearly,
				PaymentPeriod: ptr(span("2023-01-01", "2023-12-31")),
				UsagePeriod:   span("2023-01-01", "2027-12-31"),
			},
			want: 12000.0 / 1826,
		},
		{
			name: "monthly payment period of six months over a year of use",
			in: core.ItemInput{
				Price:         1000,
				Cadence:       core.Monthly,
				PaymentPeriod: ptr(span("2024-01-01", "2024-06-30")),
				UsagePeriod:   span("2024-01-01", "2024-12-31"),
			},
			want: 1000.0 * 7 / 366,
		},
		{
			name: "inverted usage yields zero",
			in:   core.ItemInput{Price: 100, Cadence: core.OneTime, UsagePeriod: span("2024-02-01", "2024-01-01")},
			want: 0,
		},
		{
			name: "empty usage yields zero",
			in:   core.ItemInput{Price: 100, Cadence: core.OneTime},
			want: 0,
		},
		{
			name: "unknown cadence yields zero",
			in:   core.ItemInput{Price: 100, Cadence: "weekly", UsagePeriod: span("2024-01-01", "2024-01-07")},
			want: 0,
		},
		{
			name: "negative price passes through",
			in:   core.ItemInput{Price: -70, Cadence: core.OneTime, UsagePeriod: span("2024-01-01", "2024-01-07")},
			want: -10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerDay(tt.in)
			if !approx(got, tt.want) {
				t.Errorf("PerDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerDayIdempotent(t *testing.T) {
	in := core.ItemInput{Price: 1234, Cadence: core.Monthly, UsagePeriod: span("2024-01-15", "2024-04-02")}
	if PerDay(in) != PerDay(in) {
		t.Fatalf("PerDay must be deterministic")
	}
}

func TestPerMonthAndYear(t *testing.T) {
	monthly := item(core.ItemInput{Price: 1980, Cadence: core.Monthly, UsagePeriod: span("2024-01-01", "2024-03-17")})
	if PerMonth(monthly) != 1980 {
		t.Errorf("monthly PerMonth = %v, want exactly 1980", PerMonth(monthly))
	}
	if PerYear(monthly) != 1980*12 {
		t.Errorf("monthly PerYear = %v", PerYear(monthly))
	}

	yearly := item(core.ItemInput{Price: 12000, Cadence: core.Yearly, UsagePeriod: span("2024-01-01", "2024-12-31")})
	if PerMonth(yearly) != 1000 {
		t.Errorf("yearly PerMonth = %v, want 1000", PerMonth(yearly))
	}
	if PerYear(yearly) != 12000 {
		t.Errorf("yearly PerYear = %v, want 12000", PerYear(yearly))
	}

	once := item(core.ItemInput{Price: 3650, Cadence: core.OneTime, UsagePeriod: span("2023-01-01", "2023-12-31")})
	if !approx(PerMonth(once), 300) {
		t.Errorf("one time PerMonth = %v, want 300", PerMonth(once))
	}
	if !approx(PerYear(once), 3650) {
		t.Errorf("one time PerYear = %v, want 3650", PerYear(once))
	}
}

func TestPreviewOf(t *testing.T) {
	p := PreviewOf(core.ItemInput{Price: 12000, Cadence: core.Yearly, UsagePeriod: span("2023-01-01", "2023-12-31")})
	if !approx(p.CostPerDay, 12000.0/365) || p.CostPerMonth != 1000 || p.CostPerYear != 12000 {
		t.Fatalf("unexpected preview %+v", p)
	}
}

type flatNormalizer struct{}

func (flatNormalizer) PerDay(core.ItemInput, int) float64 { return 1 }
func (flatNormalizer) PerMonth(float64, float64) float64   { return 30 }
func (flatNormalizer) PerYear(float64, float64) float64    { return 365 }

func TestRegisterNormalizer(t *testing.T) {
	const weekly core.PaymentCadence = "test-flat"
	if _, err := NormalizerFor(weekly); err == nil {
		t.Fatalf("expected error before registration")
	}
	RegisterNormalizer(weekly, flatNormalizer{})
	defer delete(normalizers, weekly)

	got := PerDay(core.ItemInput{Price: 10, Cadence: weekly, UsagePeriod: span("2024-01-01", "2024-01-02")})
	if got != 1 {
		t.Fatalf("PerDay with registered normalizer = %v, want 1", got)
	}
}

func ptr(r core.DateRange) *core.DateRange { return &r }

func item(in core.ItemInput) core.Item {
	return core.Item{ItemInput: in, CostPerDay: PerDay(in)}
}
