package snapback

import "github.com/vbert/snapback/date"

// dollars is a helper for tests to create USD money from a const.
func dollars(v float64) Money { return M(v, USD) }

// on is a helper for tests to parse a date from a const.
func on(s string) date.Date { return date.MustParse(s) }

// tx is a helper for tests to build a transaction row.
func tx(day, fund, account string, units, amount float64) Transaction {
	return Transaction{
		Date:        on(day),
		Fund:        fund,
		MoneySource: account,
		Units:       Q(units),
		Amount:      dollars(amount),
	}
}
