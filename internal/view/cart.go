package view

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/roach88/espr/internal/cart"
	"github.com/roach88/espr/internal/format"
	"github.com/roach88/espr/internal/model"
)

// Cart writes every rendered cart state to W.
type Cart struct {
	W io.Writer
}

// Render implements cart.Renderer.
func (v Cart) Render(s cart.State) {
	_ = WriteCart(v.W, s)
}

// WriteCart renders the cart page: one line per item, then totals.
func WriteCart(w io.Writer, s cart.State) error {
	var b strings.Builder
	if len(s.Items) == 0 {
		b.WriteString("Your cart is empty.\n")
		return flush(w, &b)
	}

	fmt.Fprintf(&b, "Cart (%s)\n", units(s.Count))
	writeLines(&b, s.Items)
	b.WriteString("\n")
	writeTotals(&b, s.Totals)
	return flush(w, &b)
}

// WriteCartLine is the one-line confirmation printed after a cart change.
func WriteCartLine(w io.Writer, s cart.State) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Cart: %s, total %s\n", units(s.Count), format.Currency(s.Totals.Total))
	return flush(w, &b)
}

func writeLines(b *strings.Builder, items []model.LineItem) {
	for _, it := range items {
		fmt.Fprintf(b, "  [%s] %s x %d @ %s = %s\n",
			it.ID, it.Name, it.Quantity, format.Currency(it.Price), format.Currency(it.LineTotal()))
	}
}

func writeTotals(b *strings.Builder, t cart.Totals) {
	vat := fmt.Sprintf("VAT (%.0f%%):", math.Round(cart.TaxRate*100))
	fmt.Fprintf(b, "%-11s%s\n", "Subtotal:", format.Currency(t.Subtotal))
	fmt.Fprintf(b, "%-11s%s\n", vat, format.Currency(t.Tax))
	fmt.Fprintf(b, "%-11s%s\n", "Total:", format.Currency(t.Total))
}

func units(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func flush(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}
