package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cucumber/godog"

	"github.com/roach88/espr/internal/api"
	"github.com/roach88/espr/internal/cart"
	"github.com/roach88/espr/internal/format"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/store"
	"github.com/roach88/espr/internal/testutil"
)

type checkoutTestContext struct {
	items     *store.Items
	backend   *testutil.Backend
	submitter *Submitter
	result    *Result
	err       error
}

func (c *checkoutTestContext) reset() error {
	if c.backend != nil {
		c.backend.Close()
	}
	c.items = store.NewItems(store.NewMemory(), nil)
	c.backend = testutil.StartBackend()
	c.result = nil
	c.err = nil

	client, err := api.New(api.Options{BaseURL: c.backend.URL})
	if err != nil {
		return err
	}
	c.submitter, err = NewSubmitter(Options{
		Items:  c.items,
		Client: client,
		Codes:  NewFixedCodes("ESPR-LOCAL1", "ESPR-LOCAL2"),
		Clock:  testutil.NewClock(),
	})
	return err
}

func (c *checkoutTestContext) theCartContains(qty int, name string, price float64, id string) error {
	return c.items.SaveCart(context.Background(), []model.LineItem{{ID: id, Name: name, Price: price, Quantity: qty}})
}

func (c *checkoutTestContext) checkAmount(label string, got float64, want string) error {
	if s := format.Currency(got); s != want {
		return fmt.Errorf("expected %s %s, got %s", label, want, s)
	}
	return nil
}

func (c *checkoutTestContext) totals() cart.Totals {
	return cart.CalculateTotals(c.items.Cart(context.Background()))
}

func (c *checkoutTestContext) theCartSubtotalIs(want string) error {
	return c.checkAmount("subtotal", c.totals().Subtotal, want)
}

func (c *checkoutTestContext) theCartTaxIs(want string) error {
	return c.checkAmount("tax", c.totals().Tax, want)
}

func (c *checkoutTestContext) theCartTotalIs(want string) error {
	return c.checkAmount("total", c.totals().Total, want)
}

func (c *checkoutTestContext) theBackendAcceptsWithCode(code string) error {
	c.backend.ReplyJSON(http.MethodPost, "/api/checkout", http.StatusOK, map[string]string{"orderCode": code})
	return nil
}

func (c *checkoutTestContext) theBackendAcceptsWithoutCode() error {
	c.backend.Reply(http.MethodPost, "/api/checkout", http.StatusOK, `{}`)
	return nil
}

func (c *checkoutTestContext) theBackendFailsWithStatus(status int) error {
	c.backend.Reply(http.MethodPost, "/api/checkout", status, `{"message":"Internal error"}`)
	return nil
}

func (c *checkoutTestContext) iCheckOutWithValidDetails() error {
	c.result, c.err = c.submitter.Submit(context.Background(), validInfo())
	return nil
}

func (c *checkoutTestContext) iCheckOutWithoutAnAddress() error {
	info := validInfo()
	info.Address = ""
	c.result, c.err = c.submitter.Submit(context.Background(), info)
	return nil
}

func (c *checkoutTestContext) theCheckoutSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.result == nil || c.result.State != StateSucceeded {
		return errors.New("expected a succeeded result")
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFails() error {
	var se *SubmitError
	if !errors.As(c.err, &se) {
		return fmt.Errorf("expected a submit error, got %v", c.err)
	}
	if c.submitter.State() != StateFailed {
		return fmt.Errorf("expected state failed, got %s", c.submitter.State())
	}
	return nil
}

func (c *checkoutTestContext) theLocalOrdersContain(id string) error {
	for _, o := range c.items.Orders(context.Background()) {
		if o.OrderID == id {
			return nil
		}
	}
	return fmt.Errorf("no local order %q", id)
}

func (c *checkoutTestContext) thereAreNoLocalOrders() error {
	if n := len(c.items.Orders(context.Background())); n != 0 {
		return fmt.Errorf("expected no local orders, got %d", n)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if n := len(c.items.Cart(context.Background())); n != 0 {
		return fmt.Errorf("expected an empty cart, got %d items", n)
	}
	return nil
}

func (c *checkoutTestContext) theCartStillContains(qty int, name string) error {
	items := c.items.Cart(context.Background())
	if len(items) != 1 || items[0].Name != name || items[0].Quantity != qty {
		return fmt.Errorf("expected %d %q in the cart, got %+v", qty, name, items)
	}
	return nil
}

func (c *checkoutTestContext) theSubmitControlIsEnabled() error {
	c.theBackendAcceptsWithoutCode()
	if _, err := c.submitter.Submit(context.Background(), validInfo()); err != nil {
		return fmt.Errorf("expected a retry to go through, got %v", err)
	}
	return nil
}

func (c *checkoutTestContext) theFieldShows(elementID, message string) error {
	var ve *ValidationError
	if !errors.As(c.err, &ve) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	for _, f := range ve.Fields {
		if f.ElementID() == elementID {
			if f.Message != message {
				return fmt.Errorf("%s: expected %q, got %q", elementID, message, f.Message)
			}
			return nil
		}
	}
	return fmt.Errorf("no message for %s", elementID)
}

func (c *checkoutTestContext) noRequestReachedTheBackend() error {
	if n := len(c.backend.Requests()); n != 0 {
		return fmt.Errorf("expected no requests, got %d", n)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc.backend != nil {
			tc.backend.Close()
			tc.backend = nil
		}
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the cart contains (\d+) "([^"]*)" at (\d+\.\d+) with id "([^"]*)"$`, tc.theCartContains)
	ctx.Step(`^the backend accepts checkouts with order code "([^"]*)"$`, tc.theBackendAcceptsWithCode)
	ctx.Step(`^the backend accepts checkouts without an order code$`, tc.theBackendAcceptsWithoutCode)
	ctx.Step(`^the backend fails checkouts with status (\d+)$`, tc.theBackendFailsWithStatus)

	// When steps
	ctx.Step(`^I check out with valid shipping details$`, tc.iCheckOutWithValidDetails)
	ctx.Step(`^I check out without an address$`, tc.iCheckOutWithoutAnAddress)

	// Then steps
	ctx.Step(`^the cart subtotal is "([^"]*)"$`, tc.theCartSubtotalIs)
	ctx.Step(`^the cart tax is "([^"]*)"$`, tc.theCartTaxIs)
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the checkout succeeds$`, tc.theCheckoutSucceeds)
	ctx.Step(`^the checkout fails$`, tc.theCheckoutFails)
	ctx.Step(`^the local orders contain "([^"]*)"$`, tc.theLocalOrdersContain)
	ctx.Step(`^there are no local orders$`, tc.thereAreNoLocalOrders)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart still contains (\d+) "([^"]*)"$`, tc.theCartStillContains)
	ctx.Step(`^the submit control is enabled$`, tc.theSubmitControlIsEnabled)
	ctx.Step(`^the field "([^"]*)" shows "([^"]*)"$`, tc.theFieldShows)
	ctx.Step(`^no request reached the backend$`, tc.noRequestReachedTheBackend)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
