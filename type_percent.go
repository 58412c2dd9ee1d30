package snapback

import "github.com/shopspring/decimal"

// Percent represents a percentage value (e.g. 5.33 for 5.33%).
type Percent struct {
	value decimal.Decimal
}

func Pct[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

func (p Percent) IsZero() bool { return p.value.IsZero() }

// Equal compares two percentages with some precision.
func (p Percent) Equal(q Percent) bool {
	const precision = "0.0001"
	diff := p.value.Sub(q.value).Abs()
	return diff.LessThan(decimal.RequireFromString(precision))
}

// Round returns the percent rounded to the given number of decimal places.
func (p Percent) Round(places int32) Percent {
	return Percent{value: p.value.Round(places)}
}

func (p Percent) String() string {
	return p.value.Round(2).String() + "%"
}

func (p Percent) SignedString() string {
	if p.value.IsZero() {
		return "-"
	}
	if p.value.IsPositive() {
		return "+" + p.String()
	}
	return p.String()
}
