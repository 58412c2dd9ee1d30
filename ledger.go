package snapback

import (
	"iter"
	"maps"
	"slices"
	"sort"

	"github.com/vbert/snapback/date"
)

// USD is the only currency the ledger deals in.
const USD = "USD"

// Ledger represents a list of transactions.
//
// In a Ledger transactions are always in chronological order. The sort is
// stable: transactions sharing a date keep the order they were loaded in,
// which makes a replay deterministic even though the source makes no claim
// about same-day ordering.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates a ledger from the given transactions.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{}
	l.Append(txs...)
	return l
}

// Append appends transactions to this ledger and maintains the chronological order.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator that yields each transaction in chronological order.
func (l *Ledger) Transactions() iter.Seq2[int, Transaction] {
	return slices.All(l.transactions)
}

// On returns an iterator over the transactions dated exactly 'day', in the
// order they appear in the ledger.
func (l *Ledger) On(day date.Date) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Date.After(day) {
				// The ledger is sorted by date, so it's safe to stop.
				return
			}
			if tx.Date == day {
				if !yield(tx) {
					return
				}
			}
		}
	}
}

// OldestTransactionDate returns the date of the earliest transaction in the ledger,
// or the zero date if the ledger is empty.
func (l *Ledger) OldestTransactionDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[0].Date
}

// NewestTransactionDate returns the date of the latest transaction in the ledger,
// or the zero date if the ledger is empty.
func (l *Ledger) NewestTransactionDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[len(l.transactions)-1].Date
}

// AllFunds iterates over the unique fund names in the ledger, sorted.
func (l *Ledger) AllFunds() iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make(map[string]struct{})
		for _, tx := range l.transactions {
			visited[tx.Fund] = struct{}{}
		}
		funds := slices.Collect(maps.Keys(visited))
		slices.Sort(funds)
		for _, fund := range funds {
			if !yield(fund) {
				return
			}
		}
	}
}
