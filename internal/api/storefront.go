package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/roach88/espr/internal/model"
)

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	ShippingAddress string         `json:"shippingAddress"`
	Items           []CheckoutItem `json:"items"`
}

// CheckoutResponse is the success body of POST /api/checkout. OrderCode may
// be empty when the server does not assign one.
type CheckoutResponse struct {
	OrderCode string `json:"orderCode"`
	Message   string `json:"message,omitempty"`
}

// IdempotencyHeader carries the per-checkout retry key.
const IdempotencyHeader = "Idempotency-Key"

// Products fetches the live catalog.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var raw []struct {
		ID            FlexID  `json:"id"`
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		Category      string  `json:"category"`
		StockQuantity int     `json:"stockQuantity"`
		Quantity      int     `json:"quantity"`
		Description   string  `json:"description"`
		ImageURL      string  `json:"imageUrl"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/products"}, &raw); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(raw))
	for _, r := range raw {
		stock := r.StockQuantity
		if stock == 0 {
			stock = r.Quantity
		}
		products = append(products, model.Product{
			ID:            r.ID.String(),
			Name:          r.Name,
			Price:         r.Price,
			Category:      r.Category,
			StockQuantity: stock,
			Description:   r.Description,
			ImageURL:      r.ImageURL,
		})
	}
	return products, nil
}

// Checkout submits an order. A non-empty idempotencyKey is sent in the
// Idempotency-Key header so the server can deduplicate retries.
//
// A 2xx reply with an empty body (such as 204) confirms the order without a
// server code. A non-empty body that is not JSON is ErrMalformedResponse.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest, idempotencyKey string) (*CheckoutResponse, error) {
	if req.Items == nil {
		req.Items = []CheckoutItem{}
	}
	r, err := jsonRequest(http.MethodPost, "/api/checkout", req)
	if err != nil {
		return nil, err
	}
	if idempotencyKey != "" {
		r.header = http.Header{IdempotencyHeader: []string{idempotencyKey}}
	}
	r.allowEmpty = true

	var resp CheckoutResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	resp.OrderCode = strings.TrimSpace(resp.OrderCode)
	return &resp, nil
}

// Order fetches one order by tracking code. A 2xx reply that does not carry
// an order identifier is reported as ErrMalformedResponse.
func (c *Client) Order(ctx context.Context, id string) (*model.Order, error) {
	var raw struct {
		model.Order
		OrderCode string `json:"orderCode"`
	}
	path := "/api/orders/" + url.PathEscape(id)
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &raw); err != nil {
		return nil, err
	}

	order := raw.Order
	if order.OrderID == "" {
		order.OrderID = raw.OrderCode
	}
	if order.OrderID == "" {
		return nil, &malformedError{path: path}
	}
	return &order, nil
}

type malformedError struct {
	path string
}

func (e *malformedError) Error() string {
	return "GET " + e.path + ": " + ErrMalformedResponse.Error() + ": missing order id"
}

func (e *malformedError) Unwrap() error {
	return ErrMalformedResponse
}
