package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/vbert/snapback"
	"github.com/vbert/snapback/date"
	"github.com/vbert/snapback/renderer"
)

type backfillCmd struct {
	end          string
	holdingsOut  string
	portfolioOut string
}

func (*backfillCmd) Name() string { return "backfill" }
func (*backfillCmd) Synopsis() string {
	return "reconstruct daily portfolio and holding snapshots from the transaction ledger"
}
func (*backfillCmd) Usage() string {
	return `pvs backfill [-end <date>] [-holdings <file>] [-portfolio <file>]

  Replays the transaction ledger day by day from the earliest transaction to
  the end date, values every held position against the historical price
  table, and writes the two snapshot collections as CSV.

  Days without any priced holding (weekends, holidays) produce no output
  rows. Unknown funds and missing prices are warnings, not errors.
`
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.end, "end", "", "Last date to value (defaults to the last date the price table covers)")
	f.StringVar(&c.holdingsOut, "holdings", "holdings_snapshots.csv", "Output file for holding snapshots")
	f.StringVar(&c.portfolioOut, "portfolio", "portfolio_snapshots.csv", "Output file for portfolio snapshots")
}

func (c *backfillCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	market, err := DecodeMarket()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	end := snapback.DefaultEndDate
	if c.end != "" {
		if end, err = date.Parse(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	result, err := snapback.Backfill(ledger, market, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := writeHoldings(c.holdingsOut, result.Holdings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := writePortfolio(c.portfolioOut, result.Portfolio); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.BackfillMarkdown(result))
	return subcommands.ExitSuccess
}

func writeHoldings(filename string, snaps []snapback.HoldingSnapshot) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", filename, err)
	}
	defer f.Close()
	if err := snapback.EncodeHoldingSnapshots(f, snaps); err != nil {
		return fmt.Errorf("could not write %q: %w", filename, err)
	}
	return nil
}

func writePortfolio(filename string, snaps []snapback.PortfolioSnapshot) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", filename, err)
	}
	defer f.Close()
	if err := snapback.EncodePortfolioSnapshots(f, snaps); err != nil {
		return fmt.Errorf("could not write %q: %w", filename, err)
	}
	return nil
}
