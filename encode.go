package snapback

import (
	"encoding/csv"
	"fmt"
	"io"
)

// This file contains the CSV encoders for the two output collections. Column
// orders are fixed and part of the observable contract. An empty collection
// writes nothing at all, not even a header.

var holdingColumns = []string{
	"snapshot_date", "fund", "account_name", "shares", "unit_price",
	"market_value", "cost_basis", "gain_loss", "price_source",
}

var portfolioColumns = []string{
	"snapshot_date", "total_market_value", "total_cost_basis",
	"total_gain_loss", "total_gain_loss_percent", "snapshot_source",
	"market_status",
}

// EncodeHoldingSnapshots writes the holding snapshots to 'w' as CSV.
func EncodeHoldingSnapshots(w io.Writer, snaps []HoldingSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(holdingColumns); err != nil {
		return fmt.Errorf("cannot write holdings header: %w", err)
	}
	for _, s := range snaps {
		record := []string{
			s.Date.String(),
			s.Fund,
			s.Account,
			s.Shares.String(),
			s.UnitPrice.value.String(),
			s.MarketValue.value.String(),
			s.CostBasis.value.String(),
			s.GainLoss.value.String(),
			s.PriceSource,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write holding snapshot for %s: %w", s.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodePortfolioSnapshots writes the portfolio snapshots to 'w' as CSV.
func EncodePortfolioSnapshots(w io.Writer, snaps []PortfolioSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(portfolioColumns); err != nil {
		return fmt.Errorf("cannot write portfolio header: %w", err)
	}
	for _, s := range snaps {
		record := []string{
			s.Date.String(),
			s.TotalMarketValue.value.String(),
			s.TotalCostBasis.value.String(),
			s.TotalGainLoss.value.String(),
			s.TotalGainLossPercent.value.String(),
			s.SnapshotSource,
			s.MarketStatus,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write portfolio snapshot for %s: %w", s.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
