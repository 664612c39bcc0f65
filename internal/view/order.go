package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/espr/internal/cart"
	"github.com/roach88/espr/internal/checkout"
	"github.com/roach88/espr/internal/format"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/orders"
)

// WriteOrderPlaced renders the confirmation shown after a successful
// checkout.
func WriteOrderPlaced(w io.Writer, o model.Order) error {
	var b strings.Builder
	b.WriteString("Thank you! Your order has been placed.\n")
	fmt.Fprintf(&b, "Tracking code: %s\n", o.OrderID)
	b.WriteString("Keep this code to track your order.\n\n")
	writeOrderDetail(&b, o)
	return flush(w, &b)
}

// WriteNotSaved warns that a confirmed order is missing from the local
// history.
func WriteNotSaved(w io.Writer) error {
	_, err := io.WriteString(w, "\nWarning: this order could not be saved to the history on this device.\n"+
		"Note the tracking code above; \"espr orders\" will not list it.\n")
	return err
}

// WriteTrackedOrder renders an order found by tracking code.
func WriteTrackedOrder(w io.Writer, o model.Order, src orders.Source) error {
	var b strings.Builder
	switch src {
	case orders.SourceLocal:
		b.WriteString("Order found in the history saved on this device.\n\n")
	default:
		b.WriteString("Order found! Details are below.\n\n")
	}
	writeOrderDetail(&b, o)
	return flush(w, &b)
}

// WritePastOrders renders the order history, newest first as given.
func WritePastOrders(w io.Writer, list []model.Order) error {
	var b strings.Builder
	if len(list) == 0 {
		b.WriteString("You have no past orders.\n")
		return flush(w, &b)
	}

	fmt.Fprintf(&b, "Past orders (%d)\n", len(list))
	for _, o := range list {
		fmt.Fprintf(&b, "\n%s  %s  %s  %s\n",
			o.OrderID, format.StoredDate(o.Date, false), statusText(o.Status), format.Currency(o.Total))
		for _, it := range o.Cart {
			fmt.Fprintf(&b, "  %s x %d\n", it.Name, it.Quantity)
		}
	}
	return flush(w, &b)
}

// WriteValidation renders field messages in focus order.
func WriteValidation(w io.Writer, errs checkout.FieldErrors) error {
	var b strings.Builder
	b.WriteString("Please fix the following:\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "  %s: %s\n", e.Field, e.Message)
	}
	return flush(w, &b)
}

func writeOrderDetail(b *strings.Builder, o model.Order) {
	fmt.Fprintf(b, "Order %s\n", o.OrderID)
	fmt.Fprintf(b, "Status: %s [%s]\n", statusText(o.Status), o.Status.Slug())
	if o.Date != "" {
		fmt.Fprintf(b, "Placed: %s\n", format.StoredDate(o.Date, true))
	}

	if len(o.Cart) > 0 {
		b.WriteString("\nItems\n")
		writeLines(b, o.Cart)
		b.WriteString("\n")
		totals := cart.CalculateTotals(o.Cart)
		if o.Total != 0 {
			totals.Total = o.Total
		}
		writeTotals(b, totals)
	} else {
		fmt.Fprintf(b, "Total: %s\n", format.Currency(o.Total))
	}

	s := o.Shipping
	if s.Name == "" && s.Address == "" {
		return
	}
	b.WriteString("\nShip to\n")
	for _, line := range []string{s.Name, s.Email, s.Phone, s.Address} {
		if line != "" {
			fmt.Fprintf(b, "  %s\n", line)
		}
	}
	if s.Note != "" {
		fmt.Fprintf(b, "  Note: %s\n", s.Note)
	}
}

func statusText(s model.Status) string {
	if s == "" {
		return "Unknown"
	}
	return string(s)
}
