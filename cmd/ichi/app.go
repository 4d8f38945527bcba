package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"ichinichi/internal/cli"
	"ichinichi/internal/config"
	"ichinichi/internal/core"
	"ichinichi/internal/format"
	"ichinichi/internal/report"
)

// As a short lived CLI, global flags are fine.
var (
	backendFlag  = flag.String("backend", "", "Storage backend: memory, sqlite or postgres. Defaults to DATA_BACKEND.")
	currencyFlag = flag.String("currency", "", "ISO 4217 currency for amounts. Defaults to CURRENCY.")
)

type app struct {
	cfg       *config.Config
	svc       *cli.Services
	formatter *format.Formatter
}

// openApp loads the configuration, applies the global flags and opens the
// item service.
func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if *backendFlag != "" {
		cfg.DataBackend = *backendFlag
	}
	cfg.Currency = currency()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc, err := cli.BuildServices(ctx, slog.Default(), cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, svc: svc, formatter: format.New(cfg.Currency)}, nil
}

// currency is -currency when given, CURRENCY otherwise.
func currency() string {
	if *currencyFlag != "" {
		return strings.ToUpper(*currencyFlag)
	}
	return config.Load().Currency
}

func (a *app) close() {
	if err := a.svc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing storage: %v\n", err)
	}
}

// withApp opens the app, runs fn and closes the app again.
func withApp(ctx context.Context, fn func(*app) subcommands.ExitStatus) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening item store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()
	return fn(a)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	width, _ := strconv.Atoi(os.Getenv("COLUMNS"))
	out, err := report.Terminal(md, width)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// printError reports err on stderr, one line per invalid field.
func printError(action string, err error) subcommands.ExitStatus {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(os.Stderr, "Invalid item:\n")
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f, verr.Fields[f])
		}
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
	return subcommands.ExitFailure
}
