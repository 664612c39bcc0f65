package model

import "strings"

// Product is a catalog entry as served by GET /api/products.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Category      string  `json:"category,omitempty"`
	StockQuantity int     `json:"stockQuantity,omitempty"`
	Description   string  `json:"description,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
}

// LineItem is one product entry in a cart.
// IDs are unique within a cart and Quantity is always at least 1.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// LineTotal is Price × Quantity.
func (li LineItem) LineTotal() float64 {
	return li.Price * float64(li.Quantity)
}

// ShippingInfo is the delivery block captured at checkout.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

// Status is an order's fulfilment state. The set is open-ended; the server
// may report values not listed here.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Slug returns the badge class for the status, e.g. "status-shipped".
func (s Status) Slug() string {
	return "status-" + strings.ToLower(strings.ReplaceAll(string(s), " ", "-"))
}

// Order is the record created by a successful checkout.
// Cart is a snapshot taken at submission time.
type Order struct {
	OrderID  string       `json:"orderId"`
	Cart     []LineItem   `json:"cart"`
	Shipping ShippingInfo `json:"shipping"`
	Status   Status       `json:"status"`
	Date     string       `json:"date"`
	Total    float64      `json:"total"`
}

// CloneItems returns a copy of items that shares no backing array.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
