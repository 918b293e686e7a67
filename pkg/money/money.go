// Package money holds the rounding rules shared by pricing, promotions and
// commissions. Amounts round half up to two places at every persisted field;
// currency rates keep four.
package money

import "github.com/shopspring/decimal"

const (
	AmountPlaces = 2
	RatePlaces   = 4
)

var hundred = decimal.NewFromInt(100)

// Round rounds an amount half up to cents. Amounts are non-negative, where
// decimal's half-away-from-zero rounding is half up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// Percent returns amount * rate / 100 rounded to cents.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate).Div(hundred))
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps negative values to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MustParse is for constants and tests.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
