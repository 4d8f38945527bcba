package main

import (
	"errors"
	"flag"
	"io"
	"testing"

	"ichinichi/internal/core"
)

func parseItemFlags(t *testing.T, args ...string) (*itemFlags, *flag.FlagSet) {
	t.Helper()
	var fl itemFlags
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	fl.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return &fl, f
}

func TestItemFlagsAdd(t *testing.T) {
	fl, _ := parseItemFlags(t,
		"-name", " Gym ", "-price", "¥8,000", "-cadence", "Monthly",
		"-usage-start", "2024-04-01", "-usage-end", "2025-03-31", "-category", "Health")

	in, err := fl.apply(core.ItemInput{}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if in.Name != "Gym" || in.Price != 8000 || in.Cadence != core.Monthly || in.Category != "Health" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.PaymentPeriod != nil {
		t.Fatalf("payment period should be absent, got %v", in.PaymentPeriod)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("expected valid input: %v", err)
	}
}

func TestItemFlagsMissingValuesLeftToValidation(t *testing.T) {
	fl, _ := parseItemFlags(t, "-name", "Gym")
	in, err := fl.apply(core.ItemInput{}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var verr *core.ValidationError
	if !errors.As(in.Validate(), &verr) {
		t.Fatalf("expected validation error")
	}
	for _, field := range []string{"price", "paymentType", "usagePeriod"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected %s in %v", field, verr.Fields)
		}
	}
}

func TestItemFlagsParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-price", "free"},
		{"-cadence", "weekly"},
		{"-usage-start", "2024-13-01"},
		{"-pay-end", "tomorrow"},
	} {
		fl, _ := parseItemFlags(t, args...)
		if _, err := fl.apply(core.ItemInput{}, nil); err == nil {
			t.Errorf("apply(%v) should fail", args)
		}
	}
}

func TestItemFlagsEditOnlyChangesGivenFlags(t *testing.T) {
	base := core.ItemInput{
		Name:          "Storage",
		Price:         12000,
		Cadence:       core.Yearly,
		UsagePeriod:   core.DateRange{Start: core.NewDate(2023, 1, 1), End: core.NewDate(2023, 12, 31)},
		PaymentPeriod: &core.DateRange{Start: core.NewDate(2023, 1, 1), End: core.NewDate(2023, 12, 31)},
		Category:      "Cloud",
	}

	fl, f := parseItemFlags(t, "-price", "15000", "-usage-end", "2024-12-31")
	in, err := fl.apply(base, setFlags(f))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if in.Price != 15000 || in.UsagePeriod.End != core.NewDate(2024, 12, 31) {
		t.Fatalf("flags not applied: %+v", in)
	}
	if in.Name != "Storage" || in.Category != "Cloud" || in.Cadence != core.Yearly || in.PaymentPeriod == nil {
		t.Fatalf("untouched fields changed: %+v", in)
	}
	if base.Price != 12000 {
		t.Fatalf("base must not be modified")
	}

	fl, f = parseItemFlags(t, "-pay-start=", "-pay-end=")
	in, err = fl.apply(base, setFlags(f))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if in.PaymentPeriod != nil {
		t.Fatalf("empty payment flags should drop the payment period, got %v", in.PaymentPeriod)
	}
	if base.PaymentPeriod == nil {
		t.Fatalf("base payment period must not be modified")
	}

	fl, f = parseItemFlags(t, "-category=")
	in, _ = fl.apply(base, setFlags(f))
	if in.Category != "" {
		t.Fatalf("category should be cleared, got %q", in.Category)
	}
}
