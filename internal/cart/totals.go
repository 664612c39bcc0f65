package cart

import "github.com/roach88/espr/internal/model"

// TaxRate is the VAT applied to every cart subtotal.
const TaxRate = 0.12

// Totals are the derived amounts shown under a cart or order summary.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// CalculateTotals sums price × quantity and applies TaxRate.
func CalculateTotals(items []model.LineItem) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	tax := subtotal * TaxRate
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

// Count is the total number of units in the cart.
func Count(items []model.LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
