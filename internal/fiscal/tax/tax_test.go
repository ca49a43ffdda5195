package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTax(t *testing.T) {
	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "0.00"},
		{"100", "18.00"},
		{"100.01", "18.01"}, // 18.0018
		{"99.995", "18.00"}, // 17.9991
		{"99.94", "17.99"},  // 17.9892
		{"10.50", "1.89"},
		{"0.01", "0.01"}, // 0.0018
		{"1234.56", "222.23"},
	}
	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTax(d(tt.subtotal)).StringFixed(2))
		})
	}
}

func TestComputeTax_NeverRoundsDown(t *testing.T) {
	for cents := int64(0); cents < 20000; cents += 7 {
		subtotal := decimal.New(cents, -2)
		raw := subtotal.Mul(Rate)
		got := ComputeTax(subtotal)
		assert.True(t, got.GreaterThanOrEqual(raw), "subtotal=%s", subtotal)
		assert.True(t, got.Sub(raw).LessThan(d("0.01")), "subtotal=%s", subtotal)
	}
}

func TestComputeNetFromGross(t *testing.T) {
	assert.Equal(t, "100.00", ComputeNetFromGross(d("118")).StringFixed(2))
	assert.Equal(t, "84.75", ComputeNetFromGross(d("100")).StringFixed(2))
	assert.Equal(t, "0.85", ComputeNetFromGross(d("1")).StringFixed(2))
	assert.Equal(t, "0.00", ComputeNetFromGross(decimal.Zero).StringFixed(2))
}

func TestComputeTaxFromGross(t *testing.T) {
	assert.Equal(t, "18.00", ComputeTaxFromGross(d("118")).StringFixed(2))
	assert.Equal(t, "15.25", ComputeTaxFromGross(d("100")).StringFixed(2))
}

func TestGrossSplitMayExceedTotal(t *testing.T) {
	total := d("10.001")
	net := ComputeNetFromGross(total)
	tx := ComputeTaxFromGross(total)

	assert.Equal(t, "8.48", net.StringFixed(2))
	assert.Equal(t, "1.53", tx.StringFixed(2))
	assert.False(t, net.Add(tx).Equal(total))
	assert.True(t, net.Add(tx).Sub(total).LessThan(d("0.05")))
}

func TestBreakdowns(t *testing.T) {
	b := FromSubtotal(d("200"))
	assert.Equal(t, "36.00", b.Tax.StringFixed(2))
	assert.Equal(t, "236.00", b.Total.StringFixed(2))

	g := FromGross(d("236"))
	assert.Equal(t, "200.00", g.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", g.Tax.StringFixed(2))
}
