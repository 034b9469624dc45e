package report

import (
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every money figure.
const CurrencySymbol = "₱"

// Pct is an integer percentage. Valid is false when the denominator was not
// positive, in which case the figure must not be displayed as a number.
type Pct struct {
	Value int
	Valid bool
}

// Percent returns round-half-up(x / y * 100).
func Percent(x, y float64) Pct {
	if y <= 0 || math.IsNaN(x) || math.IsNaN(y) {
		return Pct{}
	}
	return Pct{Value: RoundHalfUp(x / y * 100), Valid: true}
}

// RoundHalfUp rounds to the nearest integer, halves toward positive infinity.
func RoundHalfUp(v float64) int {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return int(f)
}

func (p Pct) String() string {
	if !p.Valid {
		return "n/a"
	}
	return strconv.Itoa(p.Value) + "%"
}

// MarshalJSON renders an invalid percentage as null.
func (p Pct) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return jsoniter.Marshal(p.Value)
}

// Money formats an amount with the currency symbol and two decimals.
func Money(v float64) string {
	return CurrencySymbol + decimal.NewFromFloat(v).StringFixed(2)
}

func oneDecimal(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
