package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/store"
)

// ErrItemNotFound is returned when a quantity change names an id the cart
// does not hold.
var ErrItemNotFound = errors.New("item not in cart")

// State is what a cart view renders.
type State struct {
	Items  []model.LineItem `json:"items"`
	Totals Totals           `json:"totals"`
	Count  int              `json:"count"`
}

// NewState derives a State from items.
func NewState(items []model.LineItem) State {
	return State{Items: items, Totals: CalculateTotals(items), Count: Count(items)}
}

// Renderer redraws the cart after a mutation.
type Renderer interface {
	Render(State)
}

// NopRenderer ignores renders. Use it when running headless.
type NopRenderer struct{}

// Render implements Renderer.
func (NopRenderer) Render(State) {}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(State)

// Render implements Renderer.
func (f RenderFunc) Render(s State) { f(s) }

// Controller mutates the persisted cart.
type Controller struct {
	items  *store.Items
	view   Renderer
	logger *zap.Logger
}

// NewController returns a controller over items. A nil view is replaced
// with NopRenderer and a nil logger with a no-op logger.
func NewController(items *store.Items, view Renderer, logger *zap.Logger) *Controller {
	if view == nil {
		view = NopRenderer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{items: items, view: view, logger: logger.Named("cart")}
}

// State reads the current cart without mutating it.
func (c *Controller) State(ctx context.Context) State {
	return NewState(c.items.Cart(ctx))
}

// Add merges quantity units of product into the cart. An existing line for
// the same id grows by quantity; otherwise a new line is appended. The
// resulting quantity is never below 1.
func (c *Controller) Add(ctx context.Context, product model.Product, quantity int) (State, error) {
	items, err := c.load(ctx)
	if err != nil {
		return State{}, err
	}

	idx := indexOf(items, product.ID)
	if idx >= 0 {
		items[idx].Quantity = clamp(items[idx].Quantity + quantity)
	} else {
		items = append(items, model.LineItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Quantity: clamp(quantity),
		})
	}

	c.logger.Debug("adding item", zap.String("product_id", product.ID), zap.Int("quantity", quantity))
	return c.commit(ctx, items)
}

// SetQuantity sets the quantity of id, clamped to at least 1.
func (c *Controller) SetQuantity(ctx context.Context, id string, quantity int) (State, error) {
	items, err := c.load(ctx)
	if err != nil {
		return State{}, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return NewState(items), fmt.Errorf("set quantity of %q: %w", id, ErrItemNotFound)
	}
	items[idx].Quantity = clamp(quantity)

	c.logger.Debug("setting quantity", zap.String("product_id", id), zap.Int("quantity", items[idx].Quantity))
	return c.commit(ctx, items)
}

// Increment adjusts the quantity of id by delta, clamped to at least 1.
func (c *Controller) Increment(ctx context.Context, id string, delta int) (State, error) {
	items, err := c.load(ctx)
	if err != nil {
		return State{}, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return NewState(items), fmt.Errorf("change quantity of %q: %w", id, ErrItemNotFound)
	}
	items[idx].Quantity = clamp(items[idx].Quantity + delta)

	c.logger.Debug("changing quantity", zap.String("product_id", id), zap.Int("delta", delta))
	return c.commit(ctx, items)
}

// Remove drops the line for id. Removing an id that is not present still
// re-renders.
func (c *Controller) Remove(ctx context.Context, id string) (State, error) {
	items, err := c.load(ctx)
	if err != nil {
		return State{}, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}

	c.logger.Debug("removing item", zap.String("product_id", id))
	return c.commit(ctx, kept)
}

// Clear empties the cart.
func (c *Controller) Clear(ctx context.Context) (State, error) {
	if err := c.items.ClearCart(ctx); err != nil {
		return c.State(ctx), err
	}
	s := NewState([]model.LineItem{})
	c.view.Render(s)
	return s, nil
}

// load reads the cart for a mutation. A storage error aborts the mutation
// so a failed read is never written back as an empty cart.
func (c *Controller) load(ctx context.Context) ([]model.LineItem, error) {
	items, err := c.items.LoadCart(ctx)
	if err != nil {
		c.logger.Error("reading cart", zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (c *Controller) commit(ctx context.Context, items []model.LineItem) (State, error) {
	if err := c.items.SaveCart(ctx, items); err != nil {
		c.logger.Error("saving cart", zap.Error(err))
		return c.State(ctx), err
	}
	s := NewState(items)
	c.view.Render(s)
	return s, nil
}

func indexOf(items []model.LineItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func clamp(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
