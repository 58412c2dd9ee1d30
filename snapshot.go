package snapback

import (
	"fmt"

	"github.com/vbert/snapback/date"
)

// DefaultEndDate is the last date the bundled price table covers, and the
// default cutoff for a backfill.
var DefaultEndDate = date.New(2025, 10, 28)

// Tags stamped on every record produced by a backfill.
const (
	priceSourceHistorical  = "historical"
	snapshotSourceBackfill = "backfill"
	marketStatusClosed     = "closed"
)

// HoldingSnapshot is the valuation of one position on one date. It is only
// produced for dates where a closing price is available and the position is
// above the liquidation epsilon.
type HoldingSnapshot struct {
	Date        date.Date
	Fund        string
	Account     string
	Shares      Quantity
	UnitPrice   Money // closing price used for the valuation
	MarketValue Money
	CostBasis   Money
	GainLoss    Money
	PriceSource string
}

// PortfolioSnapshot aggregates all holding snapshots sharing a date.
// Monetary totals are rounded to 2 decimal places, the percentage to 4.
type PortfolioSnapshot struct {
	Date                 date.Date
	TotalMarketValue     Money
	TotalCostBasis       Money
	TotalGainLoss        Money
	TotalGainLossPercent Percent
	SnapshotSource       string
	MarketStatus         string
}

// Result holds the two aligned collections a backfill produces, plus the
// final state of the position book for reporting.
type Result struct {
	Range     date.Range
	Portfolio []PortfolioSnapshot
	Holdings  []HoldingSnapshot
	Book      *Book
}

// Backfill reconstructs the daily valuation history of the ledger.
//
// It visits every calendar day from the earliest transaction date to 'end'
// inclusive, replays that day's transactions through the position book, then
// values every held position that has a closing price. Weekends and holidays
// disappear from the output naturally, because the market has no price for
// them; days are never zero-filled.
func Backfill(ledger *Ledger, market *Market, end date.Date) (*Result, error) {
	if ledger.Len() == 0 {
		return nil, fmt.Errorf("ledger has no transactions")
	}
	start := ledger.OldestTransactionDate()
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before the first transaction on %s", end, start)
	}

	r := &Result{Range: date.Range{From: start, To: end}, Book: NewBook()}

	for on := range r.Range.Days() {
		for tx := range ledger.On(on) {
			r.Book.Apply(tx.Fund, tx.MoneySource, tx.Units, tx.Amount)
		}

		var holdings []HoldingSnapshot
		totalMarketValue := M(0, USD)
		totalCostBasis := M(0, USD)

		for pos := range r.Book.Positions() {
			if !pos.Held() {
				continue
			}
			price, ok := market.Lookup(pos.Fund, on)
			if !ok {
				// No price today. The position stays tracked for future dates.
				continue
			}

			marketValue := price.Mul(pos.Shares)
			totalMarketValue = totalMarketValue.Add(marketValue)
			totalCostBasis = totalCostBasis.Add(pos.CostBasis)

			holdings = append(holdings, HoldingSnapshot{
				Date:        on,
				Fund:        pos.Fund,
				Account:     pos.Account,
				Shares:      pos.Shares,
				UnitPrice:   price,
				MarketValue: marketValue,
				CostBasis:   pos.CostBasis,
				GainLoss:    marketValue.Sub(pos.CostBasis),
				PriceSource: priceSourceHistorical,
			})
		}

		if len(holdings) == 0 {
			// Nothing was priced today, emit nothing.
			continue
		}

		totalGainLoss := totalMarketValue.Sub(totalCostBasis)
		percent := Pct(0)
		if totalCostBasis.IsPositive() {
			percent = gainLossPercent(totalGainLoss, totalCostBasis)
		}

		r.Portfolio = append(r.Portfolio, PortfolioSnapshot{
			Date:                 on,
			TotalMarketValue:     totalMarketValue.Round(2),
			TotalCostBasis:       totalCostBasis.Round(2),
			TotalGainLoss:        totalGainLoss.Round(2),
			TotalGainLossPercent: percent.Round(4),
			SnapshotSource:       snapshotSourceBackfill,
			MarketStatus:         marketStatusClosed,
		})
		r.Holdings = append(r.Holdings, holdings...)
	}
	return r, nil
}

// gainLossPercent computes gain/loss over cost basis as a percentage.
func gainLossPercent(gainLoss, costBasis Money) Percent {
	return Pct(gainLoss.value.Div(costBasis.value).Mul(newDecimal(100)))
}
