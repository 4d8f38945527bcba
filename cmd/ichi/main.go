// Command ichi manages items from the terminal.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"ichinichi/internal/cli"
)

func main() {
	completion().Complete("ichi")

	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "WARN")
	}
	cli.LoadEnvFile()
	cli.SetupLoggerTo(os.Stderr)

	commander := subcommands.NewCommander(flag.CommandLine, "ichi")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range itemCommands {
		commander.Register(c, "items")
	}
	for _, c := range reportCommands {
		commander.Register(c, "reports")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

var (
	itemCommands = []subcommands.Command{
		&addCmd{}, &editCmd{}, &rmCmd{}, &listCmd{}, &showCmd{}, &importCmd{},
	}
	reportCommands = []subcommands.Command{
		&summaryCmd{}, &topCmd{}, &categoriesCmd{}, &previewCmd{},
	}
)

// completion describes the command line for shell completion. Running
// COMP_INSTALL=1 ichi installs it.
func completion() *complete.Command {
	periods := predict.Set{"day", "month", "year"}
	item := map[string]complete.Predictor{
		"name":        predict.Something,
		"price":       predict.Something,
		"cadence":     predict.Set{"once", "monthly", "yearly"},
		"usage-start": predict.Something,
		"usage-end":   predict.Something,
		"pay-start":   predict.Something,
		"pay-end":     predict.Something,
		"category":    predict.Something,
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"backend":  predict.Set{"memory", "sqlite", "postgres"},
			"currency": predict.Something,
		},
		Sub: map[string]*complete.Command{
			"add":        {Flags: item},
			"edit":       {Flags: item, Args: predict.Something},
			"preview":    {Flags: item},
			"rm":         {Args: predict.Something},
			"show":       {Args: predict.Something},
			"list":       {Flags: map[string]complete.Predictor{"category": predict.Something}},
			"summary":    {Flags: map[string]complete.Predictor{"period": periods}},
			"top":        {Flags: map[string]complete.Predictor{"n": predict.Something}},
			"categories": {},
			"import": {
				Flags: map[string]complete.Predictor{"path": predict.Something},
				Args:  predict.Files("*.json"),
			},
		},
	}
}
