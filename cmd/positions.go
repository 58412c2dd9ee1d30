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

type positionsCmd struct {
	date string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the position book after replaying the ledger" }
func (*positionsCmd) Usage() string {
	return `pvs positions [-d <date>]

  Replays the transaction ledger up to and including the given date and
  displays the resulting positions with their average cost. Defaults to the
  date of the last transaction.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date to replay up to (defaults to the last transaction)")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	on := ledger.NewestTransactionDate()
	if c.date != "" {
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	book := snapback.NewBook()
	for _, tx := range ledger.Transactions() {
		if tx.Date.After(on) {
			break
		}
		book.Apply(tx.Fund, tx.MoneySource, tx.Units, tx.Amount)
	}

	printMarkdown(renderer.PositionsMarkdown(book))
	return subcommands.ExitSuccess
}
