package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"ichinichi/internal/core"
	"ichinichi/internal/importer"
	"ichinichi/internal/report"
)

type addCmd struct {
	item itemFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an item" }
func (*addCmd) Usage() string {
	return "ichi add\n" + itemFlagsUsage + `
  Stores a new item and prints it with its cost per day.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { c.item.SetFlags(f) }

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.item.apply(core.ItemInput{}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		item, err := a.svc.Items.Create(ctx, in)
		if err != nil {
			return printError("adding item", err)
		}
		return printItem(a, item)
	})
}

type editCmd struct {
	item itemFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change fields of an item" }
func (*editCmd) Usage() string {
	return "ichi edit <id>\n" + itemFlagsUsage + `
  Only the given flags change. Pass -pay-start= -pay-end= to drop the payment period.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) { c.item.SetFlags(f) }

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "edit takes exactly one item id")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	set := setFlags(f)
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		current, err := a.svc.Items.Get(ctx, id)
		if err != nil {
			return printError("loading item", err)
		}
		in, err := c.item.apply(current.ItemInput, set)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		item, err := a.svc.Items.Update(ctx, id, in)
		if err != nil {
			return printError("updating item", err)
		}
		return printItem(a, item)
	})
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete items" }
func (*rmCmd) Usage() string {
	return `ichi rm <id>...

  Deletes the given items. Unknown ids are reported and skipped.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "rm needs at least one item id")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		status := subcommands.ExitSuccess
		for _, id := range f.Args() {
			if err := a.svc.Items.Delete(ctx, id); err != nil {
				status = printError("deleting "+id, err)
				continue
			}
			fmt.Printf("Deleted %s\n", id)
		}
		return status
	})
}

type listCmd struct {
	category string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list items" }
func (*listCmd) Usage() string {
	return `ichi list [-category <category>]

  Lists items in the order they were added.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Only list items of this category. Use \""+core.UncategorizedLabel+"\" for items without one.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		items, err := a.svc.Items.ListByCategory(ctx, c.category)
		if err != nil {
			return printError("listing items", err)
		}
		md, err := report.ItemsMarkdown(items, a.formatter)
		if err != nil {
			return printError("rendering items", err)
		}
		printMarkdown(md)
		return subcommands.ExitSuccess
	})
}

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "show one item" }
func (*showCmd) Usage() string {
	return `ichi show <id>

  Displays every field of an item with its cost per day, month and year.
`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "show takes exactly one item id")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		item, err := a.svc.Items.Get(ctx, f.Arg(0))
		if err != nil {
			return printError("loading item", err)
		}
		return printItem(a, item)
	})
}

func printItem(a *app, item core.Item) subcommands.ExitStatus {
	md, err := report.ItemMarkdown(item, a.formatter)
	if err != nil {
		return printError("rendering item", err)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

type importCmd struct {
	path string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import items from a JSON export" }
func (*importCmd) Usage() string {
	return `ichi import [-path <jsonpath>] <file>

  Imports items from a JSON document, "-" reads stdin. By default the items
  are read from the ichinichi_items key of a browser local storage dump. Either
  every item is valid and imported, or none is.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", importer.DefaultPath, "JSONPath of the item list in the document.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "import takes exactly one file")
		return subcommands.ExitUsageError
	}

	var r io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	inputs, err := importer.Parse(r, c.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading items: %v\n", err)
		return subcommands.ExitFailure
	}

	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		created, err := a.svc.Items.Import(ctx, inputs)
		if err != nil {
			return printError("importing items", err)
		}
		fmt.Printf("Imported %d items\n", len(created))
		return subcommands.ExitSuccess
	})
}
