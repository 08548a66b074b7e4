package pricing

// DefaultTaxRate is the IVA rate applied on the subtotal.
const DefaultTaxRate = 0.13

type SaleTotals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func Subtotal(lines []CartLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.LineTotal()
	}
	return sum
}

// ComputeTotals derives the amount due. Tax is charged on the subtotal before
// discount. The discount is clamped into [0, subtotal] so the total never
// drops below the tax.
func ComputeTotals(lines []CartLine, discount, taxRate float64) SaleTotals {
	subtotal := Subtotal(lines)
	discount = clampDiscount(discount, subtotal)
	tax := subtotal * taxRate
	return SaleTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

func clampDiscount(discount, subtotal float64) float64 {
	if discount < 0 || subtotal <= 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}
