package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"ichinichi/internal/core"
	"ichinichi/internal/cost"
	"ichinichi/internal/format"
	"ichinichi/internal/report"
)

type summaryCmd struct {
	period string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display totals by category" }
func (*summaryCmd) Usage() string {
	return `ichi summary [-period day|month|year]

  Displays the total cost, the breakdown by category and the most expensive items.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", string(core.PeriodDay), "Display period: day, month or year.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := core.ParseDisplayPeriod(strings.ToLower(c.period))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		items, err := a.svc.Items.List(ctx)
		if err != nil {
			return printError("listing items", err)
		}
		md, err := report.Markdown(report.Build(items, period, cost.DefaultTopN, time.Now()), a.formatter)
		if err != nil {
			return printError("rendering summary", err)
		}
		printMarkdown(md)
		return subcommands.ExitSuccess
	})
}

type topCmd struct {
	n int
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "list the most expensive items per day" }
func (*topCmd) Usage() string {
	return `ichi top [-n 10]

  Lists items by cost per day, highest first.
`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", cost.DefaultTopN, "Number of items to list.")
}

func (c *topCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.n < 1 {
		fmt.Fprintln(os.Stderr, "-n must be at least 1")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		top, err := a.svc.Items.Top(ctx, c.n)
		if err != nil {
			return printError("ranking items", err)
		}
		md, err := report.ItemsMarkdown(top, a.formatter)
		if err != nil {
			return printError("rendering items", err)
		}
		printMarkdown(md)
		return subcommands.ExitSuccess
	})
}

type categoriesCmd struct{}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the categories in use" }
func (*categoriesCmd) Usage() string {
	return `ichi categories

  Prints one category per line, sorted.
`
}

func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (*categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		cats, err := a.svc.Items.Categories(ctx)
		if err != nil {
			return printError("listing categories", err)
		}
		for _, c := range cats {
			fmt.Println(c)
		}
		return subcommands.ExitSuccess
	})
}

type previewCmd struct {
	item itemFlags
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "compute the cost of an item without saving it" }
func (*previewCmd) Usage() string {
	return "ichi preview\n" + itemFlagsUsage
}

func (c *previewCmd) SetFlags(f *flag.FlagSet) { c.item.SetFlags(f) }

func (c *previewCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.item.apply(core.ItemInput{}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if err := in.Validate(); err != nil {
		return printError("computing preview", err)
	}
	p := cost.PreviewOf(in)
	f := format.New(currency())
	printMarkdown(fmt.Sprintf("| Per day | Per month | Per year |\n|--------:|----------:|---------:|\n| %s | %s | %s |\n",
		f.Detailed(p.CostPerDay),
		f.Detailed(p.CostPerMonth),
		f.Detailed(p.CostPerYear)))
	return subcommands.ExitSuccess
}
