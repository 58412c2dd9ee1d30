package snapback

import (
	"iter"

	"github.com/shopspring/decimal"
)

// positionEpsilon is the share count below which a position is considered
// fully liquidated and excluded from valuation. The position itself is kept,
// so it can receive future re-acquisitions.
var positionEpsilon = Q(decimal.RequireFromString("0.0001"))

// PositionKey identifies a position: one fund held within one money source.
type PositionKey struct {
	Fund    string
	Account string
}

// Position is the holding of one fund within one account, tracked under the
// average-cost method: CostBasis/Shares is always the latest average unit
// cost, and neither value ever goes negative.
type Position struct {
	Fund      string
	Account   string
	Shares    Quantity
	CostBasis Money
}

// AverageCost returns the average cost per share of the position, or zero
// money when no shares are held.
func (p *Position) AverageCost() Money {
	if p.Shares.IsZero() {
		return M(0, p.CostBasis.Currency())
	}
	return p.CostBasis.Div(p.Shares)
}

// Held reports whether the position is large enough to count for valuation.
func (p *Position) Held() bool {
	return !p.Shares.Abs().LessThan(positionEpsilon)
}

// Book tracks every position touched during a replay. Positions are created
// lazily on first use and never deleted, even at zero shares.
type Book struct {
	positions map[PositionKey]*Position
	order     []PositionKey // creation order, for deterministic iteration
}

// NewBook creates an empty position book.
func NewBook() *Book {
	return &Book{positions: make(map[PositionKey]*Position)}
}

// Get returns the tracked position for (fund, account), or nil.
func (b *Book) Get(fund, account string) *Position {
	return b.positions[PositionKey{Fund: fund, Account: account}]
}

// Len returns the number of tracked positions, including liquidated ones.
func (b *Book) Len() int { return len(b.positions) }

// Positions iterates over all tracked positions in creation order.
func (b *Book) Positions() iter.Seq[*Position] {
	return func(yield func(*Position) bool) {
		for _, key := range b.order {
			if !yield(b.positions[key]) {
				return
			}
		}
	}
}

// Apply replays one transaction against the book and returns the updated position.
//
// Acquisitions (units > 0) blend into the running average: the absolute cash
// amount is added to the cost basis and the units to the share count.
// Disposals and fees (units < 0) remove basis proportionally to the shares
// removed, so the average cost of the remainder is unchanged. Over-disposal
// is clamped at zero rather than rejected, and a disposal against an empty
// position is a no-op.
func (b *Book) Apply(fund, account string, units Quantity, amount Money) *Position {
	key := PositionKey{Fund: fund, Account: account}
	pos, ok := b.positions[key]
	if !ok {
		pos = &Position{Fund: fund, Account: account, CostBasis: M(0, amount.Currency())}
		b.positions[key] = pos
		b.order = append(b.order, key)
	}

	switch {
	case units.IsPositive():
		pos.CostBasis = pos.CostBasis.Add(amount.Abs())
		pos.Shares = pos.Shares.Add(units)

	case units.IsNegative() && pos.Shares.IsPositive():
		// Shares is positive here, the zero check guards the division anyway.
		avgCost := pos.AverageCost()
		reduced := units.Abs().Min(pos.Shares)
		pos.CostBasis = floorMoney(pos.CostBasis.Sub(avgCost.Mul(reduced)))
		pos.Shares = floorQuantity(pos.Shares.Sub(units.Abs()))
	}
	// units == 0, or a disposal while nothing is held, changes nothing.
	return pos
}

// floorMoney clamps negative residue (floating point dust or over-disposal) to zero.
func floorMoney(m Money) Money {
	if m.IsNegative() {
		return M(0, m.Currency())
	}
	return m
}

func floorQuantity(q Quantity) Quantity {
	if q.IsNegative() {
		return Q(0)
	}
	return q
}
