// Package money holds the rounding rule shared by every amount in a room:
// two decimal places, applied after each arithmetic step.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept on every amount.
const Places = 2

func init() {
	// Clients send and expect plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Round rounds d to Places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// FromFloat converts and rounds a float (config values, tests).
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// Add returns round(a + b).
func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Add(b))
}

// Sub returns round(a - b).
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Sub(b))
}

// Mul returns round(a * n).
func Mul(a decimal.Decimal, n int) decimal.Decimal {
	return Round(a.Mul(decimal.NewFromInt(int64(n))))
}

// Sum adds the values of m.
func Sum(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return Round(total)
}
