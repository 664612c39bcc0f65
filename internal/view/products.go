package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/roach88/espr/internal/catalog"
	"github.com/roach88/espr/internal/format"
	"github.com/roach88/espr/internal/model"
)

// maxColWidth truncates long descriptions in tables.
const maxColWidth = 40

// WriteProducts renders the product grid as a table.
func WriteProducts(w io.Writer, products []model.Product, origin catalog.Origin) error {
	if len(products) == 0 {
		_, err := io.WriteString(w, "No products found.\n")
		return err
	}

	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("ID", "NAME", "CATEGORY", "PRICE", "STOCK")
	for _, p := range products {
		table.AddRow(p.ID, p.Name, p.Category, format.Currency(p.Price), stockText(p.StockQuantity))
	}

	var b strings.Builder
	b.WriteString(table.String())
	b.WriteString("\n")
	if origin == catalog.OriginBundled {
		b.WriteString("\nShowing the offline catalog; prices and stock may be out of date.\n")
	}
	return flush(w, &b)
}

// WriteProduct renders one product's detail card.
func WriteProduct(w io.Writer, p model.Product) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "Price:    %s\n", format.Currency(p.Price))
	if p.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", p.Category)
	}
	fmt.Fprintf(&b, "Stock:    %s\n", stockText(p.StockQuantity))
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Description)
	}
	fmt.Fprintf(&b, "\nAdd it with: espr cart add %s\n", p.ID)
	return flush(w, &b)
}

func stockText(n int) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
