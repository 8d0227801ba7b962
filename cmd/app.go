// Package cmd implements the msim CLI subcommands.
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/metalsim"
	"github.com/google/subcommands"
)

// Commands lists every subcommand. A main package registers them all
// on a commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&simulateCmd{},
	&chartCmd{},
	&fetchCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var pricesFile = flag.String("prices", "prices.csv", "Path to the spot prices CSV file")
var inflationFile = flag.String("inflation", "", "Path to the yearly inflation CSV file (optional)")
var Verbose = flag.Bool("v", false, "Enable verbose logging")

// LoadPrices reads the spot price history from the app prices file.
func LoadPrices() (*metalsim.PriceTable, error) {
	f, err := os.Open(*pricesFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open prices file %q: %w", *pricesFile, err)
	}
	defer f.Close()
	table, err := metalsim.LoadPrices(f)
	if err != nil {
		return nil, fmt.Errorf("cannot load prices from %q: %w", *pricesFile, err)
	}
	if *Verbose {
		log.Printf("loaded %d trading dates from %q (%s..%s)", table.Len(), *pricesFile, table.First(), table.Last())
	}
	return table, nil
}

// LoadInflation reads the yearly inflation table from the app inflation
// file. Without one, inflation is zero and real values equal nominal.
func LoadInflation() (metalsim.InflationTable, error) {
	if *inflationFile == "" {
		log.Println("warning, no inflation file given, real values will equal nominal values")
		return nil, nil
	}
	f, err := os.Open(*inflationFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open inflation file %q: %w", *inflationFile, err)
	}
	defer f.Close()
	table, err := metalsim.LoadInflation(f)
	if err != nil {
		return nil, fmt.Errorf("cannot load inflation from %q: %w", *inflationFile, err)
	}
	if *Verbose {
		log.Printf("loaded inflation for %d years from %q", len(table), *inflationFile)
	}
	return table, nil
}
