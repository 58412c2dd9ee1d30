// Package cmd implements the CLI application to backfill portfolio snapshots.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/vbert/snapback"
)

// Commands lists the subcommands a main package should register.
var Commands = []subcommands.Command{
	&backfillCmd{},
	&positionsCmd{},
	&importPricesCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var transactionsFile = flag.String("transactions-file", "transactions_rows.csv", "Path to the transaction ledger file (CSV format)")
var pricesFile = flag.String("prices-file", "prices.jsonl", "Path to the historical prices file (JSONL format)")

// DecodeLedger loads the transaction ledger from the app transactions file.
func DecodeLedger() (*snapback.Ledger, error) {
	f, err := os.Open(*transactionsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open transactions file %q: %w", *transactionsFile, err)
	}
	defer f.Close()

	txs, err := snapback.DecodeTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode transactions file %q: %w", *transactionsFile, err)
	}
	return snapback.NewLedger(txs...), nil
}

// DecodeMarket loads the historical price table from the app prices file.
func DecodeMarket() (*snapback.Market, error) {
	f, err := os.Open(*pricesFile)
	if err != nil {
		return nil, fmt.Errorf("could not open prices file %q: %w", *pricesFile, err)
	}
	defer f.Close()

	m, err := snapback.DecodeMarket(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode prices file %q: %w", *pricesFile, err)
	}
	return m, nil
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(doc string) {
	out, err := glamour.Render(doc, "auto")
	if err != nil {
		// fall back to the raw markdown, still readable.
		fmt.Println(doc)
		return
	}
	fmt.Print(out)
}
