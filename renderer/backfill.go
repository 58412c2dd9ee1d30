// Package renderer builds the markdown reports printed by the pvs commands.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/vbert/snapback"
)

// BackfillMarkdown renders the post-run summary of a backfill: counts, date
// range, and the final portfolio value.
func BackfillMarkdown(r *snapback.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Backfill Summary")

	totalDays := 0
	for range r.Range.Days() {
		totalDays++
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Date Range"), fmt.Sprintf("%s to %s", r.Range.From, r.Range.To)},
		Rows: [][]string{
			{"Total Days", fmt.Sprintf("%d", totalDays)},
			{"Portfolio Snapshots", fmt.Sprintf("%d", len(r.Portfolio))},
			{"Holding Snapshots", fmt.Sprintf("%d", len(r.Holdings))},
		},
	})

	if len(r.Portfolio) > 0 {
		last := r.Portfolio[len(r.Portfolio)-1]
		doc.H2(fmt.Sprintf("Final Portfolio Value (as of %s)", last.Date))
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{md.Bold("Market Value"), md.Bold(last.TotalMarketValue.String())},
			Rows: [][]string{
				{"Cost Basis", last.TotalCostBasis.String()},
				{"Gain/Loss", last.TotalGainLoss.SignedString()},
				{"Gain/Loss %", last.TotalGainLossPercent.SignedString()},
			},
		})
	}
	return doc.String()
}

// PositionsMarkdown renders the final state of the position book. Liquidated
// positions are listed too, with a zero share count.
func PositionsMarkdown(book *snapback.Book) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Positions")

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Fund", "Account", "Shares", "Cost Basis", "Avg Cost"},
	}
	for pos := range book.Positions() {
		table.Rows = append(table.Rows, []string{
			pos.Fund,
			pos.Account,
			pos.Shares.String(),
			pos.CostBasis.String(),
			pos.AverageCost().Round(2).String(),
		})
	}
	doc.Table(table)
	return doc.String()
}
