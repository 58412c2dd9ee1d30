package snapback

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBook_Acquisition(t *testing.T) {
	book := NewBook()
	pos := book.Apply("VTI", "Brokerage", Q(10), dollars(-3000))

	if !pos.Shares.Equal(Q(10)) {
		t.Errorf("Shares = %v, want 10", pos.Shares)
	}
	if !pos.CostBasis.Equal(dollars(3000)) {
		t.Errorf("CostBasis = %v, want 3000", pos.CostBasis)
	}
	if !pos.AverageCost().Equal(dollars(300)) {
		t.Errorf("AverageCost = %v, want 300", pos.AverageCost())
	}
}

func TestBook_AcquisitionsBlend(t *testing.T) {
	// Repeated acquisitions accumulate additively: that is the defining
	// property of average-cost accounting.
	book := NewBook()
	book.Apply("VTI", "Brokerage", Q(10), dollars(-3000))
	pos := book.Apply("VTI", "Brokerage", Q(10), dollars(-4000))

	if !pos.Shares.Equal(Q(20)) {
		t.Errorf("Shares = %v, want 20", pos.Shares)
	}
	if !pos.CostBasis.Equal(dollars(7000)) {
		t.Errorf("CostBasis = %v, want 7000", pos.CostBasis)
	}
	if !pos.AverageCost().Equal(dollars(350)) {
		t.Errorf("AverageCost = %v, want 350", pos.AverageCost())
	}
}

func TestBook_Disposal(t *testing.T) {
	book := NewBook()
	book.Apply("VTI", "Brokerage", Q(10), dollars(-3000))
	pos := book.Apply("VTI", "Brokerage", Q(-4), dollars(1280))

	if !pos.Shares.Equal(Q(6)) {
		t.Errorf("Shares = %v, want 6", pos.Shares)
	}
	if !pos.CostBasis.Equal(dollars(1800)) {
		t.Errorf("CostBasis = %v, want 1800", pos.CostBasis)
	}
}

func TestBook_DisposalPreservesAverageCost(t *testing.T) {
	// Removing basis proportionally to shares removed must leave the average
	// cost of the remainder unchanged, up to division precision.
	book := NewBook()
	book.Apply("FND", "IRA", Q(3), dollars(-100))
	pos := book.Get("FND", "IRA")
	before := pos.AverageCost()

	book.Apply("FND", "IRA", Q(-1), dollars(35))
	after := pos.AverageCost()

	tolerance := decimal.New(1, -9) // 1e-9
	if before.Sub(after).Abs().value.GreaterThan(tolerance) {
		t.Errorf("average cost changed on disposal: before %v, after %v", before, after)
	}
}

func TestBook_OverDisposalClamps(t *testing.T) {
	book := NewBook()
	book.Apply("VTI", "Brokerage", Q(10), dollars(-3000))
	book.Apply("VTI", "Brokerage", Q(-4), dollars(1280))
	pos := book.Apply("VTI", "Brokerage", Q(-100), dollars(2000))

	if !pos.Shares.IsZero() {
		t.Errorf("Shares = %v, want 0", pos.Shares)
	}
	if !pos.CostBasis.IsZero() {
		t.Errorf("CostBasis = %v, want 0", pos.CostBasis)
	}
	if pos.Held() {
		t.Error("a fully liquidated position should not be held")
	}
}

func TestBook_NoOps(t *testing.T) {
	t.Run("zero units", func(t *testing.T) {
		book := NewBook()
		book.Apply("VTI", "Brokerage", Q(10), dollars(-3000))
		pos := book.Apply("VTI", "Brokerage", Q(0), dollars(-12.50))
		if !pos.Shares.Equal(Q(10)) || !pos.CostBasis.Equal(dollars(3000)) {
			t.Errorf("zero units must not change the position, got %v shares, %v basis", pos.Shares, pos.CostBasis)
		}
	})

	t.Run("disposal on empty position", func(t *testing.T) {
		book := NewBook()
		pos := book.Apply("VTI", "Brokerage", Q(-5), dollars(100))
		if !pos.Shares.IsZero() || !pos.CostBasis.IsZero() {
			t.Errorf("disposal on empty position must be a no-op, got %v shares, %v basis", pos.Shares, pos.CostBasis)
		}
		// the position is still created and tracked for future re-acquisitions.
		if book.Len() != 1 {
			t.Errorf("Len() = %d, want 1", book.Len())
		}
	})
}

func TestBook_PureAcquisitionsAreOrderIndependent(t *testing.T) {
	amounts := []float64{-1000, -250.50, -3999.99, -10, -87.65}
	units := []float64{10, 2.5, 40, 0.1, 1}

	perm := rand.Perm(len(amounts))
	ordered, shuffled := NewBook(), NewBook()
	for i := range amounts {
		ordered.Apply("VTI", "Brokerage", Q(units[i]), dollars(amounts[i]))
		shuffled.Apply("VTI", "Brokerage", Q(units[perm[i]]), dollars(amounts[perm[i]]))
	}

	a, b := ordered.Get("VTI", "Brokerage"), shuffled.Get("VTI", "Brokerage")
	if !a.Shares.Equal(b.Shares) || !a.CostBasis.Equal(b.CostBasis) {
		t.Errorf("pure acquisitions must be order independent: %v/%v vs %v/%v",
			a.Shares, a.CostBasis, b.Shares, b.CostBasis)
	}

	// cost basis is the sum of absolute acquisition amounts.
	if !a.CostBasis.Equal(dollars(1000 + 250.50 + 3999.99 + 10 + 87.65)) {
		t.Errorf("CostBasis = %v, want the sum of absolute amounts", a.CostBasis)
	}
}

func TestBook_NeverNegative(t *testing.T) {
	// whatever the disposal, shares and cost basis stay at or above zero.
	book := NewBook()
	book.Apply("FND", "IRA", Q(3.333), dollars(-99.99))
	for _, sell := range []float64{-1, -1, -1, -1, -1} {
		pos := book.Apply("FND", "IRA", Q(sell), dollars(30))
		if pos.Shares.IsNegative() {
			t.Fatalf("Shares went negative: %v", pos.Shares)
		}
		if pos.CostBasis.IsNegative() {
			t.Fatalf("CostBasis went negative: %v", pos.CostBasis)
		}
	}
}

func TestBook_PositionsKeepCreationOrder(t *testing.T) {
	book := NewBook()
	book.Apply("VTI", "Brokerage", Q(1), dollars(-100))
	book.Apply("SCHD", "IRA", Q(1), dollars(-50))
	book.Apply("VTI", "IRA", Q(1), dollars(-100))

	var got []string
	for pos := range book.Positions() {
		got = append(got, pos.Fund+"/"+pos.Account)
	}
	want := []string{"VTI/Brokerage", "SCHD/IRA", "VTI/IRA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Positions() order = %v, want %v", got, want)
		}
	}
}
