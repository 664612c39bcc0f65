package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/roach88/espr/internal/api"
	"github.com/roach88/espr/internal/cart"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/store"
)

// State is a step of the checkout state machine.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var (
	// ErrEmptyCart is returned when there is nothing to check out.
	ErrEmptyCart = errors.New("your cart is empty")

	// ErrSubmitInFlight is returned while another Submit is running.
	ErrSubmitInFlight = errors.New("a checkout is already being submitted")
)

// ValidationError reports field-level failures. No request was sent.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid shipping details: " + strings.Join(parts, "; ")
}

// Focus is the first invalid field.
func (e *ValidationError) Focus() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Field
}

// SubmitError reports a checkout the backend did not confirm. The cart and
// order log are unchanged.
type SubmitError struct {
	// Message is the server's explanation, or "" when it gave none.
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Message != "" {
		return "checkout failed: " + e.Message
	}
	return fmt.Sprintf("checkout failed: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the shopper.
func (e *SubmitError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "We couldn't place your order. Please try again."
}

// Result describes a placed order.
type Result struct {
	Order  model.Order `json:"order"`
	Totals cart.Totals `json:"totals"`
	State  State       `json:"state"`

	// ServerAssigned is true when the order id came from the backend rather
	// than the local tracking code.
	ServerAssigned bool `json:"serverAssigned"`

	// SavedLocally is false when the backend confirmed the order but it
	// could not be added to the order history on this device.
	SavedLocally bool `json:"savedLocally"`
}

// Client submits orders. *api.Client satisfies it.
type Client interface {
	Checkout(ctx context.Context, req api.CheckoutRequest, idempotencyKey string) (*api.CheckoutResponse, error)
}

// Options configures a Submitter. Items and Client are required.
type Options struct {
	Items  *store.Items
	Client Client

	// Codes generates local tracking codes. Defaults to RandomCodes with
	// prefix "ESPR-" and length 6.
	Codes CodeGenerator

	// Clock stamps order dates. Defaults to the wall clock.
	Clock clock.Clock

	// NewKey creates idempotency keys. Defaults to UUIDv7.
	NewKey func() string

	// OnTransition, if set, is called on every state change.
	OnTransition func(from, to State)

	Logger *zap.Logger
}

// Submitter places orders from the stored cart.
type Submitter struct {
	items        *store.Items
	client       Client
	codes        CodeGenerator
	clock        clock.Clock
	newKey       func() string
	onTransition func(from, to State)
	logger       *zap.Logger

	inFlight atomic.Bool

	mu    sync.Mutex
	state State
}

// NewSubmitter builds a Submitter in the Idle state.
func NewSubmitter(opts Options) (*Submitter, error) {
	if opts.Items == nil || opts.Client == nil {
		return nil, errors.New("checkout requires an item store and a client")
	}
	s := &Submitter{
		items:        opts.Items,
		client:       opts.Client,
		codes:        opts.Codes,
		clock:        opts.Clock,
		newKey:       opts.NewKey,
		onTransition: opts.OnTransition,
		logger:       opts.Logger,
		state:        StateIdle,
	}
	if s.codes == nil {
		s.codes = RandomCodes{Prefix: "ESPR-", Length: 6}
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.newKey == nil {
		s.newKey = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("checkout")
	return s, nil
}

// State returns the current state.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Submitter) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	s.logger.Debug("state", zap.String("from", string(from)), zap.String("to", string(to)))
	if s.onTransition != nil && from != to {
		s.onTransition(from, to)
	}
}

// Submit validates info and places an order for the stored cart.
//
// Errors are ErrSubmitInFlight, ErrEmptyCart, *ValidationError or
// *SubmitError. Only a nil error means the order log gained an entry and
// the cart was emptied.
func (s *Submitter) Submit(ctx context.Context, info model.ShippingInfo) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer s.inFlight.Store(false)

	items := s.items.Cart(ctx)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	s.transition(StateValidating)
	info = Normalize(info)
	if errs := ValidateShipping(info); len(errs) > 0 {
		s.transition(StateIdle)
		return nil, &ValidationError{Fields: errs}
	}

	s.transition(StateSubmitting)
	code := s.codes.Generate()
	req := buildRequest(info, items)
	key := s.checkoutKey(ctx, req)
	totals := cart.CalculateTotals(items)

	resp, err := s.client.Checkout(ctx, req, key)
	if err != nil {
		s.transition(StateFailed)
		s.logger.Warn("checkout rejected", zap.String("tracking_code", code), zap.Error(err))
		return nil, &SubmitError{Message: api.ServerMessage(err), Err: err}
	}

	order := model.Order{
		OrderID:  code,
		Cart:     model.CloneItems(items),
		Shipping: info,
		Status:   model.StatusPending,
		Date:     s.clock.Now().UTC().Format(time.RFC3339),
		Total:    totals.Total,
	}
	serverAssigned := resp.OrderCode != ""
	if serverAssigned {
		order.OrderID = resp.OrderCode
	}

	saved := true
	if err := s.items.AppendOrder(ctx, order); err != nil {
		saved = false
		s.logger.Error("order placed but not recorded locally", zap.String("order_id", order.OrderID), zap.Error(err))
	}
	if err := s.items.ClearCart(ctx); err != nil {
		s.logger.Error("clearing cart after checkout", zap.Error(err))
	}
	if err := s.items.ClearPendingCheckout(ctx); err != nil {
		s.logger.Warn("clearing checkout key", zap.Error(err))
	}

	s.transition(StateSucceeded)
	s.logger.Info("order placed", zap.String("order_id", order.OrderID), zap.Bool("server_assigned", serverAssigned))
	return &Result{
		Order:          order,
		Totals:         totals,
		State:          StateSucceeded,
		ServerAssigned: serverAssigned,
		SavedLocally:   saved,
	}, nil
}

// checkoutKey returns the idempotency key for req. A pending key is reused
// only while the request is unchanged; a different cart or shipping address
// starts a new checkout with a new key.
func (s *Submitter) checkoutKey(ctx context.Context, req api.CheckoutRequest) string {
	fp := fingerprint(req)
	pending := s.items.PendingCheckout(ctx)
	if pending.Key != "" && pending.Fingerprint == fp {
		return pending.Key
	}
	if pending.Key != "" {
		s.logger.Debug("checkout changed since the last attempt, using a new key")
	}
	key := s.newKey()
	if err := s.items.SetPendingCheckout(ctx, store.PendingCheckout{Key: key, Fingerprint: fp}); err != nil {
		s.logger.Warn("storing checkout key", zap.Error(err))
	}
	return key
}

// fingerprint identifies the content of a checkout request.
func fingerprint(req api.CheckoutRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func buildRequest(info model.ShippingInfo, items []model.LineItem) api.CheckoutRequest {
	req := api.CheckoutRequest{
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		ShippingAddress: info.Address,
		Items:           make([]api.CheckoutItem, len(items)),
	}
	for i, it := range items {
		req.Items[i] = api.CheckoutItem{ProductID: it.ID, Quantity: it.Quantity}
	}
	return req
}
