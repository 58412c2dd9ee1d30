package snapback

import (
	"bytes"
	"testing"
)

// testMarket covers the first full week of September 2025. The 6th and 7th
// are a weekend, so they have no prices.
func testMarket() *Market {
	m := NewMarket()
	for day, price := range map[string]float64{
		"2025-09-02": 315.99, "2025-09-03": 317.33, "2025-09-04": 320.14,
		"2025-09-05": 319.55, "2025-09-08": 320.57,
	} {
		m.Add("VTI", on(day), price)
	}
	for day, price := range map[string]float64{
		"2025-09-02": 27.84, "2025-09-03": 27.60,
	} {
		m.Add("SCHD", on(day), price)
	}
	m.Add("VOO", on("2025-09-02"), 588.71)
	return m
}

func TestBackfill_SingleHolding(t *testing.T) {
	ledger := NewLedger(tx("2025-09-02", "VTI", "Brokerage", 10, -3000))
	r, err := Backfill(ledger, testMarket(), on("2025-09-02"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	if len(r.Holdings) != 1 || len(r.Portfolio) != 1 {
		t.Fatalf("got %d holdings, %d portfolio snapshots; want 1 and 1", len(r.Holdings), len(r.Portfolio))
	}

	h := r.Holdings[0]
	if !h.MarketValue.Equal(dollars(3159.90)) {
		t.Errorf("MarketValue = %v, want 3159.90", h.MarketValue)
	}
	if !h.GainLoss.Equal(dollars(159.90)) {
		t.Errorf("GainLoss = %v, want 159.90", h.GainLoss)
	}
	if h.PriceSource != "historical" {
		t.Errorf("PriceSource = %q, want historical", h.PriceSource)
	}

	p := r.Portfolio[0]
	if !p.TotalMarketValue.Equal(dollars(3159.90)) || !p.TotalCostBasis.Equal(dollars(3000)) {
		t.Errorf("totals = %v / %v, want 3159.90 / 3000", p.TotalMarketValue, p.TotalCostBasis)
	}
	if !p.TotalGainLossPercent.Equal(Pct(5.33)) {
		t.Errorf("TotalGainLossPercent = %v, want 5.33", p.TotalGainLossPercent)
	}
	if p.SnapshotSource != "backfill" || p.MarketStatus != "closed" {
		t.Errorf("tags = %q / %q", p.SnapshotSource, p.MarketStatus)
	}
}

func TestBackfill_WeekendsDisappear(t *testing.T) {
	ledger := NewLedger(tx("2025-09-02", "VTI", "Brokerage", 10, -3000))
	r, err := Backfill(ledger, testMarket(), on("2025-09-08"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	// 2..8 September is 7 calendar days, the weekend has no prices.
	if len(r.Portfolio) != 5 {
		t.Fatalf("got %d portfolio snapshots, want 5", len(r.Portfolio))
	}
	for _, p := range r.Portfolio {
		if p.Date == on("2025-09-06") || p.Date == on("2025-09-07") {
			t.Errorf("snapshot emitted for the weekend day %s", p.Date)
		}
	}

	// the position survives the gap: Monday is valued at Monday's close.
	last := r.Portfolio[len(r.Portfolio)-1]
	if last.Date != on("2025-09-08") {
		t.Fatalf("last snapshot on %s, want 2025-09-08", last.Date)
	}
	if !last.TotalMarketValue.Equal(dollars(3205.70)) {
		t.Errorf("Monday TotalMarketValue = %v, want 3205.70", last.TotalMarketValue)
	}
}

func TestBackfill_AggregationConsistency(t *testing.T) {
	ledger := NewLedger(
		tx("2025-09-02", "VTI", "Brokerage", 10, -3000),
		tx("2025-09-02", "SCHD", "IRA", 100, -2780),
		tx("2025-09-03", "VTI", "Brokerage", -4, 1280),
	)
	r, err := Backfill(ledger, testMarket(), on("2025-09-05"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	for _, p := range r.Portfolio {
		sum := dollars(0)
		count := 0
		for _, h := range r.Holdings {
			if h.Date == p.Date {
				sum = sum.Add(h.MarketValue)
				count++
			}
		}
		if count == 0 {
			t.Errorf("portfolio snapshot on %s has no holdings", p.Date)
		}
		if !p.TotalMarketValue.Equal(sum.Round(2)) {
			t.Errorf("%s: TotalMarketValue = %v, sum of holdings = %v", p.Date, p.TotalMarketValue, sum)
		}
	}
}

func TestBackfill_MissingPriceSkipsHoldingOnly(t *testing.T) {
	// SCHD has no price after the 3rd; VTI keeps being valued without it, and
	// the SCHD position remains tracked.
	ledger := NewLedger(
		tx("2025-09-02", "VTI", "Brokerage", 10, -3000),
		tx("2025-09-02", "SCHD", "IRA", 100, -2780),
	)
	r, err := Backfill(ledger, testMarket(), on("2025-09-05"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	var schdDays, vtiDays int
	for _, h := range r.Holdings {
		switch h.Fund {
		case "SCHD":
			schdDays++
		case "VTI":
			vtiDays++
		}
	}
	if schdDays != 2 {
		t.Errorf("SCHD valued on %d days, want 2", schdDays)
	}
	if vtiDays != 4 {
		t.Errorf("VTI valued on %d days, want 4", vtiDays)
	}
	if pos := r.Book.Get("SCHD", "IRA"); pos == nil || !pos.Shares.Equal(Q(100)) {
		t.Error("SCHD position must stay tracked through price gaps")
	}
}

func TestBackfill_DustPositionExcluded(t *testing.T) {
	ledger := NewLedger(
		tx("2025-09-02", "VTI", "Brokerage", 10, -3000),
		tx("2025-09-03", "VTI", "Brokerage", -9.99995, 3200),
	)
	r, err := Backfill(ledger, testMarket(), on("2025-09-04"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	// day one is valued; afterwards the residue is below the epsilon.
	if len(r.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(r.Holdings))
	}
	if r.Holdings[0].Date != on("2025-09-02") {
		t.Errorf("holding on %s, want 2025-09-02", r.Holdings[0].Date)
	}
}

func TestBackfill_UnitConversionFlowsThrough(t *testing.T) {
	ledger := NewLedger(tx("2025-09-02", "0899 Vanguard 500 Index Fund Adm", "Voya 401k", 100, -3779.35))
	r, err := Backfill(ledger, testMarket(), on("2025-09-02"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if len(r.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(r.Holdings))
	}

	want, _ := testMarket().Lookup("0899 Vanguard 500 Index Fund Adm", on("2025-09-02"))
	if !r.Holdings[0].UnitPrice.Equal(want) {
		t.Errorf("UnitPrice = %v, want the converted VOO price %v", r.Holdings[0].UnitPrice, want)
	}
}

func TestBackfill_ZeroCostBasisPercent(t *testing.T) {
	// free shares: cost basis is zero, the percent is defined as zero.
	ledger := NewLedger(tx("2025-09-02", "VTI", "Brokerage", 10, 0))
	r, err := Backfill(ledger, testMarket(), on("2025-09-02"))
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if p := r.Portfolio[0]; !p.TotalGainLossPercent.IsZero() {
		t.Errorf("TotalGainLossPercent = %v, want 0", p.TotalGainLossPercent)
	}
}

func TestBackfill_Errors(t *testing.T) {
	if _, err := Backfill(NewLedger(), testMarket(), on("2025-09-02")); err == nil {
		t.Error("Backfill() must fail on an empty ledger")
	}
	ledger := NewLedger(tx("2025-09-02", "VTI", "Brokerage", 10, -3000))
	if _, err := Backfill(ledger, testMarket(), on("2025-09-01")); err == nil {
		t.Error("Backfill() must fail when the end date precedes the first transaction")
	}
}

func TestBackfill_Idempotent(t *testing.T) {
	ledger := NewLedger(
		tx("2025-09-02", "VTI", "Brokerage", 10, -3000),
		tx("2025-09-02", "SCHD", "IRA", 100, -2780),
		tx("2025-09-03", "VTI", "Brokerage", -4, 1280),
	)

	encode := func() ([]byte, []byte) {
		r, err := Backfill(ledger, testMarket(), on("2025-09-08"))
		if err != nil {
			t.Fatalf("Backfill() error = %v", err)
		}
		var hb, pb bytes.Buffer
		if err := EncodeHoldingSnapshots(&hb, r.Holdings); err != nil {
			t.Fatalf("EncodeHoldingSnapshots() error = %v", err)
		}
		if err := EncodePortfolioSnapshots(&pb, r.Portfolio); err != nil {
			t.Fatalf("EncodePortfolioSnapshots() error = %v", err)
		}
		return hb.Bytes(), pb.Bytes()
	}

	h1, p1 := encode()
	h2, p2 := encode()
	if !bytes.Equal(h1, h2) || !bytes.Equal(p1, p2) {
		t.Error("two identical runs must produce byte-identical outputs")
	}
}
