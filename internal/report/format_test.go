package report

import (
	"math"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want Pct
	}{
		{name: "balance against limit", x: 450, y: 1000, want: Pct{Value: 45, Valid: true}},
		{name: "half rounds up", x: 1, y: 8, want: Pct{Value: 13, Valid: true}},
		{name: "below half rounds down", x: 1, y: 3, want: Pct{Value: 33, Valid: true}},
		{name: "zero limit", x: 450, y: 0, want: Pct{}},
		{name: "negative denominator", x: 1, y: -5, want: Pct{}},
		{name: "zero numerator", x: 0, y: 10, want: Pct{Value: 0, Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.x, tt.y))
		})
	}
}

func TestPercentProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		y := rapid.IntRange(1, 1_000_000).Draw(t, "y")
		x := rapid.IntRange(0, y).Draw(t, "x")

		p := Percent(float64(x), float64(y))
		if !p.Valid {
			t.Fatalf("percent of positive denominator must be valid")
		}
		if p.Value < 0 || p.Value > 100 {
			t.Fatalf("percent %d out of range for %d/%d", p.Value, x, y)
		}
		exact := float64(x) / float64(y) * 100
		if math.Abs(float64(p.Value)-exact) > 0.5+1e-9 {
			t.Fatalf("percent %d too far from %f", p.Value, exact)
		}
	})
}

func TestPercentInvalidWithoutPositiveDenominator(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(-1e6, 1e6).Draw(t, "x")
		y := rapid.Float64Range(-1e6, 0).Draw(t, "y")

		if p := Percent(x, y); p.Valid {
			t.Fatalf("percent of %f/%f must be invalid", x, y)
		}
	})
}

func TestPctFormatting(t *testing.T) {
	assert.Equal(t, "45%", Pct{Value: 45, Valid: true}.String())
	assert.Equal(t, "n/a", Pct{}.String())

	out, err := jsoniter.Marshal(struct {
		A Pct `json:"a"`
		B Pct `json:"b"`
	}{A: Pct{Value: 45, Valid: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":45,"b":null}`, string(out))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "₱6669.80", Money(6669.8))
	assert.Equal(t, "₱0.00", Money(0))
	assert.Equal(t, "₱876.50", Money(876.5))
	assert.Equal(t, "₱1333.96", Money(6669.8/5))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 80, RoundHalfUp(79.6))
	assert.Equal(t, 3, RoundHalfUp(2.5))
	assert.Equal(t, 2, RoundHalfUp(2.49))
	assert.Equal(t, -2, RoundHalfUp(-2.5))
	assert.Equal(t, 0, RoundHalfUp(0.49999999999999994))
	assert.Equal(t, 4503599627370497, RoundHalfUp(4503599627370497))
}
