// Package tax computes ITBIS amounts. All results are rounded up to the cent
// (toward positive infinity), which is the authority's rule; do not replace it
// with half-even or half-up rounding.
package tax

import "github.com/shopspring/decimal"

const Places int32 = 2

// Rate is the ITBIS general rate.
var Rate = decimal.RequireFromString("0.18")

var one = decimal.NewFromInt(1)

// ComputeTax returns subtotal * Rate rounded up to the cent.
func ComputeTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(Rate).RoundCeil(Places)
}

// ComputeNetFromGross extracts the pre-tax amount from a tax-inclusive total.
func ComputeNetFromGross(total decimal.Decimal) decimal.Decimal {
	return total.Div(one.Add(Rate)).RoundCeil(Places)
}

// ComputeTaxFromGross is total minus ComputeNetFromGross(total). Because both
// sides round up independently, net + tax may differ from total by a few cents.
func ComputeTaxFromGross(total decimal.Decimal) decimal.Decimal {
	return total.Sub(ComputeNetFromGross(total)).RoundCeil(Places)
}

// Breakdown is the tax split of one amount.
type Breakdown struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// FromSubtotal computes tax on top of subtotal.
func FromSubtotal(subtotal decimal.Decimal) Breakdown {
	t := ComputeTax(subtotal)
	return Breakdown{Subtotal: subtotal, Tax: t, Total: subtotal.Add(t)}
}

// FromGross splits a tax-inclusive total.
func FromGross(total decimal.Decimal) Breakdown {
	return Breakdown{
		Subtotal: ComputeNetFromGross(total),
		Tax:      ComputeTaxFromGross(total),
		Total:    total,
	}
}
