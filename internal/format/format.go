// Package format renders amounts for people. Computation never rounds; this
// is the only place figures are cut to a fixed number of decimals.
package format

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"ichinichi/internal/core"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "JPY"

// Formatter formats amounts in a single currency.
type Formatter struct {
	cur money.Currency
}

// New returns a Formatter for an ISO 4217 code. Unknown codes fall back to the
// currency's code as symbol, which is what go-money does for them.
func New(code string) *Formatter {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	// money.New always yields a non-nil currency, GetCurrency may not.
	return &Formatter{cur: *money.New(0, code).Currency()}
}

// Currency returns the ISO code in use.
func (f *Formatter) Currency() string {
	return f.cur.Code
}

// Amount formats v with no decimals, rounding half away from zero.
func (f *Formatter) Amount(v float64) string {
	return f.format(v, 0)
}

// Detailed formats v with two decimals, used for previews and daily costs
// below one unit.
func (f *Formatter) Detailed(v float64) string {
	return f.format(v, 2)
}

// PerPeriod formats v followed by the period suffix, e.g. "¥1,000 per month".
func (f *Formatter) PerPeriod(v float64, p core.DisplayPeriod) string {
	return f.Amount(v) + " " + p.Label()
}

// Percent formats a share with one decimal.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1) + "%"
}

func (f *Formatter) format(v float64, places int32) string {
	d := decimal.NewFromFloat(v).Round(places)
	fm := f.cur.Formatter()
	fm.Fraction = int(places)
	if fm.Decimal == "" {
		fm.Decimal = "."
	}
	return fm.Format(d.Shift(places).IntPart())
}
