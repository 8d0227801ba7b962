package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/metalsim"
	"github.com/etnz/metalsim/renderer"
	"github.com/google/subcommands"
)

// simulateCmd holds the flags for the 'simulate' subcommand.
type simulateCmd struct {
	configFlags
	ledger  bool
	trace   bool
	csvFile string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run a savings-plan simulation and report on it" }
func (*simulateCmd) Usage() string {
	return `msim simulate -start <date> [flags]

  Runs a full simulation of the configured savings plan over the price
  history and prints a summary. Use -ledger for the full ledger table,
  -trace for the trend audit, and -csv to export the ledger.

Usage Examples:
# Monthly 500 with a yearly July rebalance.
$ msim -prices prices.csv simulate -start 2015-01-01 -rebalance1 07-01

`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	c.configFlags.SetFlags(f)
	f.BoolVar(&c.ledger, "ledger", false, "Print the full ledger table")
	f.BoolVar(&c.trace, "trace", false, "Print the trend audit table")
	f.StringVar(&c.csvFile, "csv", "", "Write the ledger as CSV to this file")
}

func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	prices, err := LoadPrices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	inflation, err := LoadInflation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ledger, err := metalsim.Run(prices, inflation, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.csvFile != "" {
		out, err := os.Create(c.csvFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.csvFile, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		if err := ledger.WriteCSV(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.csvFile, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote ledger to %s\n", c.csvFile)
	}

	var b strings.Builder
	report, err := metalsim.NewReport(ledger, prices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}
	b.WriteString(renderer.RenderSummary(renderer.NewSummary(report)))
	if c.ledger {
		b.WriteString("\n")
		b.WriteString(renderer.RenderLedger(renderer.NewLedgerTable(ledger)))
	}
	if c.trace {
		b.WriteString("\n")
		b.WriteString(renderer.RenderTrend(renderer.NewTrendTable(ledger)))
	}
	printMarkdown(b.String())

	return subcommands.ExitSuccess
}
