package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/vbert/snapback"
)

type importPricesCmd struct{}

func (*importPricesCmd) Name() string { return "import-prices" }
func (*importPricesCmd) Synopsis() string {
	return "import closing prices from finance chart JSON files into the price table"
}
func (*importPricesCmd) Usage() string {
	return `pvs import-prices <chart.json> [<chart.json>...]

  Parses finance-chart JSON documents (the Yahoo chart API shape), extracts
  the daily closing prices, and merges them into the prices file. Existing
  prices for the same (ticker, date) are overwritten.
`
}

func (c *importPricesCmd) SetFlags(f *flag.FlagSet) {}

func (c *importPricesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one chart file is required")
		return subcommands.ExitUsageError
	}

	market, err := DecodeMarket()
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, prices file does not exist, starting an empty price table")
		market, err = snapback.NewMarket(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, filename := range f.Args() {
		in, err := os.Open(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening chart file %q: %v\n", filename, err)
			return subcommands.ExitFailure
		}
		ticker, closes, err := snapback.DecodeChart(in)
		in.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading chart file %q: %v\n", filename, err)
			return subcommands.ExitFailure
		}
		for day, price := range closes.Values() {
			market.Add(ticker, day, price)
		}
		log.Printf("imported %d closes for %s from %q", closes.Len(), ticker, filename)
	}

	out, err := os.Create(*pricesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating prices file %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := snapback.EncodeMarket(out, market); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing prices file %q: %v\n", *pricesFile, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
