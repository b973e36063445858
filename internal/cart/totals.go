package cart

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedUnitPrice applies the per-product markdown to the list price.
func DiscountedUnitPrice(item LineItem) decimal.Decimal {
	price := decimal.NewFromFloat(item.UnitPrice)
	discount := decimal.NewFromFloat(item.DiscountPercent)
	markdown := price.Mul(discount).Div(hundred)
	return price.Sub(markdown)
}

// Subtotal sums the discount-adjusted line prices across the cart.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		line := DiscountedUnitPrice(item).Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(line)
	}
	return total
}

// TotalWithTax applies the checkout tax rate (a percentage, e.g. "8") to
// the subtotal and rounds to two decimal places.
func TotalWithTax(items []LineItem, taxRatePercent decimal.Decimal) decimal.Decimal {
	subtotal := Subtotal(items)
	multiplier := decimal.NewFromInt(1).Add(taxRatePercent.Div(hundred))
	return subtotal.Mul(multiplier).Round(2)
}
