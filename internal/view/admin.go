package view

import (
	"io"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/roach88/espr/internal/api"
	"github.com/roach88/espr/internal/format"
)

// WriteAdminProducts renders the console product table.
func WriteAdminProducts(w io.Writer, products []api.AdminProduct) error {
	if len(products) == 0 {
		_, err := io.WriteString(w, "No products found.\n")
		return err
	}
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("ID", "NAME", "PRICE", "QTY", "CATEGORY")
	for _, p := range products {
		table.AddRow(p.ID.String(), p.Name, format.Currency(p.Price), p.Quantity, p.Category)
	}
	return writeTable(w, table)
}

// WriteAdminOrders renders the console order table.
func WriteAdminOrders(w io.Writer, list []api.AdminOrder) error {
	if len(list) == 0 {
		_, err := io.WriteString(w, "No orders found.\n")
		return err
	}
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("ORDER", "CUSTOMER", "DATE", "TOTAL", "STATUS")
	for _, o := range list {
		customer := o.CustomerName
		if customer == "" {
			customer = "N/A"
		}
		table.AddRow(o.Code(), customer, format.StoredDate(o.OrderDate, false), format.Currency(o.TotalWithVAT), statusText(o.Status))
	}
	return writeTable(w, table)
}

// WriteAdminUsers renders the console user table.
func WriteAdminUsers(w io.Writer, users []api.AdminUser) error {
	if len(users) == 0 {
		_, err := io.WriteString(w, "No users found.\n")
		return err
	}
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("ID", "USERNAME", "EMAIL", "NAME")
	for _, u := range users {
		table.AddRow(u.ID.String(), u.Username, u.Email, u.Name)
	}
	return writeTable(w, table)
}

func writeTable(w io.Writer, table *uitable.Table) error {
	var b strings.Builder
	b.WriteString(table.String())
	b.WriteString("\n")
	return flush(w, &b)
}
