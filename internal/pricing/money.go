package pricing

import "github.com/shopspring/decimal"

// MoneyTolerance is the largest difference accepted between client and server totals.
const MoneyTolerance = 0.01

// RoundMoney rounds half away from zero to cents.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func (t SaleTotals) Rounded() SaleTotals {
	return SaleTotals{
		Subtotal: RoundMoney(t.Subtotal),
		Discount: RoundMoney(t.Discount),
		Tax:      RoundMoney(t.Tax),
		Total:    RoundMoney(t.Total),
	}
}

func WithinTolerance(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().
		LessThanOrEqual(decimal.NewFromFloat(MoneyTolerance))
}
