package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/espr/internal/model"
)

// Slot keys used by the storefront.
const (
	KeyCart        = "cart"
	KeyOrders      = "orders"
	KeyCheckoutKey = "checkout-key"
)

// Items stores the cart and the local order log in Slots.
//
// Reads never fail: missing, unreadable or corrupt slots read as empty and
// the problem is logged. Writes replace the whole list in one Set so a
// failure never leaves a partially written collection behind.
type Items struct {
	slots  Slots
	logger *zap.Logger
}

// NewItems wraps slots. A nil logger discards diagnostics.
func NewItems(slots Slots, logger *zap.Logger) *Items {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Items{slots: slots, logger: logger.Named("store")}
}

// Cart returns the stored line items in display order.
// Entries without an id are dropped and quantities below 1 are raised to 1.
func (s *Items) Cart(ctx context.Context) []model.LineItem {
	raws, err := s.readList(ctx, KeyCart)
	if err != nil {
		s.logger.Warn("reading slot", zap.String("key", KeyCart), zap.Error(err))
	}
	return s.decodeCart(raws)
}

// LoadCart is Cart for callers that write the cart back. A storage error is
// returned instead of reading as an empty cart; missing or corrupt data
// still reads as empty.
func (s *Items) LoadCart(ctx context.Context) ([]model.LineItem, error) {
	raws, err := s.readList(ctx, KeyCart)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.decodeCart(raws), nil
}

func (s *Items) decodeCart(raws []json.RawMessage) []model.LineItem {
	items := []model.LineItem{}
	for _, raw := range raws {
		var li model.LineItem
		if err := json.Unmarshal(raw, &li); err != nil {
			s.logger.Warn("skipping unreadable cart entry", zap.Error(err))
			continue
		}
		if li.ID == "" {
			continue
		}
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		items = append(items, li)
	}
	return items
}

// SaveCart overwrites the stored cart.
func (s *Items) SaveCart(ctx context.Context, items []model.LineItem) error {
	if items == nil {
		items = []model.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if err := s.slots.Set(ctx, KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// ClearCart removes the cart slot.
func (s *Items) ClearCart(ctx context.Context) error {
	if err := s.slots.Remove(ctx, KeyCart); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Orders returns the local order log in append order.
func (s *Items) Orders(ctx context.Context) []model.Order {
	raws, err := s.readList(ctx, KeyOrders)
	if err != nil {
		s.logger.Warn("reading slot", zap.String("key", KeyOrders), zap.Error(err))
	}
	return s.decodeOrders(raws)
}

func (s *Items) decodeOrders(raws []json.RawMessage) []model.Order {
	orders := []model.Order{}
	for _, raw := range raws {
		var o model.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			s.logger.Warn("skipping unreadable order entry", zap.Error(err))
			continue
		}
		if o.Cart == nil {
			o.Cart = []model.LineItem{}
		}
		orders = append(orders, o)
	}
	return orders
}

// AppendOrder adds order to the end of the local order log.
// The log is append-only; there is no way to edit a stored order. If the
// log cannot be read the append is refused so stored history is never
// overwritten.
func (s *Items) AppendOrder(ctx context.Context, order model.Order) error {
	raws, err := s.readList(ctx, KeyOrders)
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	orders := append(s.decodeOrders(raws), order)
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	if err := s.slots.Set(ctx, KeyOrders, data); err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	return nil
}

// PendingCheckout is the idempotency key of a checkout the backend has not
// confirmed, with a fingerprint of the request it was sent for.
type PendingCheckout struct {
	Key         string `json:"key"`
	Fingerprint string `json:"fingerprint"`
}

// PendingCheckout returns the checkout in progress. The zero value means
// none is pending.
func (s *Items) PendingCheckout(ctx context.Context) PendingCheckout {
	v, ok, err := s.slots.Get(ctx, KeyCheckoutKey)
	if err != nil {
		s.logger.Warn("reading checkout key", zap.Error(err))
		return PendingCheckout{}
	}
	if !ok {
		return PendingCheckout{}
	}
	var p PendingCheckout
	if err := json.Unmarshal(v, &p); err != nil {
		s.logger.Warn("unreadable checkout key, starting a new one", zap.Error(err))
		return PendingCheckout{}
	}
	return p
}

// SetPendingCheckout records the idempotency key for the pending checkout.
func (s *Items) SetPendingCheckout(ctx context.Context, p PendingCheckout) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("set checkout key: %w", err)
	}
	if err := s.slots.Set(ctx, KeyCheckoutKey, data); err != nil {
		return fmt.Errorf("set checkout key: %w", err)
	}
	return nil
}

// ClearPendingCheckout forgets the pending checkout's idempotency key.
func (s *Items) ClearPendingCheckout(ctx context.Context) error {
	if err := s.slots.Remove(ctx, KeyCheckoutKey); err != nil {
		return fmt.Errorf("clear checkout key: %w", err)
	}
	return nil
}

// readList decodes a slot holding a JSON array into its raw elements.
// Storage errors are returned; a missing slot or one that is not a JSON
// array reads as empty.
func (s *Items) readList(ctx context.Context, key string) ([]json.RawMessage, error) {
	data, ok, err := s.slots.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("slot is not a list, treating as empty", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return list, nil
}
