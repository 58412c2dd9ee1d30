package snapback

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/vbert/snapback/date"
)

// Transaction is a single immutable row from the transaction ledger: a buy,
// sell, or fee applied to one fund within one money source.
type Transaction struct {
	Date        date.Date // day the transaction settled
	Fund        string    // instrument name as it appears on the statement
	MoneySource string    // account the transaction belongs to
	Activity    string    // free-text label, informational only
	Units       Quantity  // signed: positive acquires, negative disposes
	UnitPrice   Money     // informational only, not used in valuation
	Amount      Money     // signed cash effect
}

// transactionColumns is the required header of the transaction CSV.
var transactionColumns = []string{"date", "fund", "money_source", "activity", "units", "unit_price", "amount"}

// DecodeTransactions reads the transaction ledger from CSV.
//
// Every numeric column must parse; a malformed row is a fatal error naming
// the offending line, and no partial result is returned.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("transaction file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read transaction header: %w", err)
	}

	// index the header columns, and check they are all there.
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range transactionColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("transaction file is missing required column %q", name)
		}
	}

	var txs []Transaction
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read transaction on line %d: %w", line, err)
		}

		field := func(name string) string { return record[index[name]] }

		on, err := date.Parse(field("date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		units, err := decimal.NewFromString(field("units"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid units %q: %w", line, field("units"), err)
		}
		unitPrice, err := decimal.NewFromString(field("unit_price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid unit_price %q: %w", line, field("unit_price"), err)
		}
		amount, err := decimal.NewFromString(field("amount"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q: %w", line, field("amount"), err)
		}

		txs = append(txs, Transaction{
			Date:        on,
			Fund:        field("fund"),
			MoneySource: field("money_source"),
			Activity:    field("activity"),
			Units:       Q(units),
			UnitPrice:   M(unitPrice, USD),
			Amount:      M(amount, USD),
		})
	}
	return txs, nil
}
