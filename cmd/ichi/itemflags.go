package main

import (
	"flag"
	"fmt"
	"strings"

	"ichinichi/internal/core"
)

// itemFlags are the item fields shared by add, edit and preview.
type itemFlags struct {
	name       string
	price      string
	cadence    string
	usageStart string
	usageEnd   string
	payStart   string
	payEnd     string
	category   string
}

const itemFlagsUsage = `  -name <name> -price <amount> -cadence once|monthly|yearly
  -usage-start YYYY-MM-DD -usage-end YYYY-MM-DD
  [-pay-start YYYY-MM-DD -pay-end YYYY-MM-DD] [-category <category>]
`

func (fl *itemFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&fl.name, "name", "", "Item name, at most 50 characters.")
	f.StringVar(&fl.price, "price", "", "Price per payment, e.g. 1200 or ¥1,200.")
	f.StringVar(&fl.cadence, "cadence", "", "Payment cadence: once, monthly or yearly.")
	f.StringVar(&fl.usageStart, "usage-start", "", "First day of use (YYYY-MM-DD).")
	f.StringVar(&fl.usageEnd, "usage-end", "", "Last day of use (YYYY-MM-DD).")
	f.StringVar(&fl.payStart, "pay-start", "", "First day paid for, when billing differs from use.")
	f.StringVar(&fl.payEnd, "pay-end", "", "Last day paid for.")
	f.StringVar(&fl.category, "category", "", "Optional category, at most 20 characters.")
}

// setFlags returns the names of the flags given on the command line.
func setFlags(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// apply overwrites the fields of base whose flag is in set. A nil set applies
// every flag. Missing values are left for validation to report; values that
// cannot be parsed are errors.
func (fl *itemFlags) apply(base core.ItemInput, set map[string]bool) (core.ItemInput, error) {
	given := func(name string) bool { return set == nil || set[name] }
	in := base

	if given("name") {
		in.Name = fl.name
	}
	if given("category") {
		in.Category = fl.category
	}
	if given("price") {
		in.Price = 0
		if strings.TrimSpace(fl.price) != "" {
			p, err := core.ParsePrice(fl.price)
			if err != nil {
				return core.ItemInput{}, fmt.Errorf("-price %q: %w", fl.price, err)
			}
			in.Price = p
		}
	}
	if given("cadence") {
		in.Cadence = ""
		if strings.TrimSpace(fl.cadence) != "" {
			c, err := core.ParseCadence(fl.cadence)
			if err != nil {
				return core.ItemInput{}, fmt.Errorf("-cadence: %w", err)
			}
			in.Cadence = c
		}
	}

	var err error
	if given("usage-start") {
		if in.UsagePeriod.Start, err = parseOptionalDate("usage-start", fl.usageStart); err != nil {
			return core.ItemInput{}, err
		}
	}
	if given("usage-end") {
		if in.UsagePeriod.End, err = parseOptionalDate("usage-end", fl.usageEnd); err != nil {
			return core.ItemInput{}, err
		}
	}

	if given("pay-start") || given("pay-end") {
		var pp core.DateRange
		if in.PaymentPeriod != nil {
			pp = *in.PaymentPeriod
		}
		if given("pay-start") {
			if pp.Start, err = parseOptionalDate("pay-start", fl.payStart); err != nil {
				return core.ItemInput{}, err
			}
		}
		if given("pay-end") {
			if pp.End, err = parseOptionalDate("pay-end", fl.payEnd); err != nil {
				return core.ItemInput{}, err
			}
		}
		in.PaymentPeriod = &pp
	}

	return in.Normalize(), nil
}

func parseOptionalDate(flagName, s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("-%s: %w", flagName, err)
	}
	return d, nil
}
