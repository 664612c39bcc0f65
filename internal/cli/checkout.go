package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/espr/internal/checkout"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/view"
)

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var info model.ShippingInfo

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Validate shipping details and submit the cart to the backend.

The cart is emptied and the order saved to the local history only after
the backend confirms it. If submission fails the cart is kept and the same
command can be run again.

Example:
  espr checkout --name "Ana Cruz" --email ana@example.com \
    --phone 09171234567 --address "12 Rizal St, Makati"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runCheckout(ctx, a, info)
			})
		},
	}

	cmd.Flags().StringVar(&info.Name, "name", "", "full name")
	cmd.Flags().StringVar(&info.Email, "email", "", "email address")
	cmd.Flags().StringVar(&info.Phone, "phone", "", "phone number (digits only)")
	cmd.Flags().StringVar(&info.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&info.Note, "note", "", "delivery note")

	return cmd
}

func runCheckout(ctx context.Context, a *app, info model.ShippingInfo) error {
	submitter, err := checkout.NewSubmitter(checkout.Options{
		Items:  a.items,
		Client: a.client,
		Codes:  checkout.RandomCodes{Prefix: a.cfg.TrackingPrefix, Length: a.cfg.TrackingLength},
		OnTransition: func(_, to checkout.State) {
			if to == checkout.StateSubmitting {
				a.out.VerboseLog("Placing order...")
			}
		},
		Logger: a.logger,
	})
	if err != nil {
		return a.out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	res, err := submitter.Submit(ctx, info)
	if err != nil {
		return checkoutFailure(a, err)
	}
	return renderOrderPlaced(a.out, res)
}

// renderOrderPlaced prints the confirmation, warning when the order is
// missing from the local history.
func renderOrderPlaced(out *OutputFormatter, res *checkout.Result) error {
	if !res.SavedLocally {
		out.VerboseLog("order %s was not saved to the local history", res.Order.OrderID)
	}
	return out.Render(res, func(w io.Writer) error {
		if err := view.WriteOrderPlaced(w, res.Order); err != nil {
			return err
		}
		if !res.SavedLocally {
			return view.WriteNotSaved(w)
		}
		return nil
	})
}

func checkoutFailure(a *app, err error) error {
	var ve *checkout.ValidationError
	var se *checkout.SubmitError
	switch {
	case errors.As(err, &ve):
		if a.out.Format != "json" {
			_ = view.WriteValidation(a.out.Writer, ve.Fields)
			return NewExitError(ExitFailure, ErrCodeValidation+": "+ve.Error())
		}
		return a.out.Fail(ExitFailure, ErrCodeValidation, "shipping details are incomplete", map[string]interface{}{
			"focus":  ve.Focus(),
			"fields": ve.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		return a.out.Fail(ExitFailure, ErrCodeEmptyCart, err.Error(), nil)
	case errors.Is(err, checkout.ErrSubmitInFlight):
		return a.out.Fail(ExitFailure, ErrCodeInFlight, err.Error(), nil)
	case errors.As(err, &se):
		return a.out.Fail(ExitFailure, ErrCodeCheckout, se.UserMessage(), map[string]string{"cause": se.Err.Error()})
	default:
		return a.out.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
}
