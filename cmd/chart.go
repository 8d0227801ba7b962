package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/metalsim"
	"github.com/google/subcommands"
	charts "github.com/vicanso/go-charts/v2"
)

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct {
	configFlags
	outFile string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the simulated portfolio value as a PNG chart" }
func (*chartCmd) Usage() string {
	return `msim chart -start <date> [flags] [-o chart.png]

  Runs a simulation and renders the nominal and inflation-deflated
  portfolio value over time as a PNG line chart.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.configFlags.SetFlags(f)
	f.StringVar(&c.outFile, "o", "chart.png", "Output PNG file")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	buf, err := renderValueChart(ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.outFile, buf, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.outFile, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Wrote chart to %s\n", c.outFile)
	return subcommands.ExitSuccess
}

// renderValueChart plots invested capital, nominal value and real value
// across the ledger entries.
func renderValueChart(ledger *metalsim.Ledger) ([]byte, error) {
	var labels []string
	var invested, nominal, real []float64
	for e := range ledger.Entries() {
		labels = append(labels, e.Date.String())
		invested = append(invested, e.Invested.AsFloat())
		nominal = append(nominal, e.Value.AsFloat())
		real = append(real, e.RealValue.AsFloat())
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("empty ledger, nothing to chart")
	}

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = len(labels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{invested, nominal, real},
		charts.TitleTextOptionFunc(fmt.Sprintf("Savings plan value (%s)", ledger.Currency)),
		charts.LegendLabelsOptionFunc([]string{"Invested", "Nominal", "Real"}),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}
