package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/orders"
	"github.com/roach88/espr/internal/view"
)

// TrackedOrder is the JSON payload of the track command.
type TrackedOrder struct {
	Source orders.Source `json:"source"`
	Order  model.Order   `json:"order"`
}

// NewTrackCommand creates the track command.
func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track <tracking-code>",
		Short: "Look up an order by tracking code",
		Long: `Look up an order on the backend, falling back to the local order
history when the backend cannot answer.

Example:
  espr track ESPR-AB12CD`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				local := a.trackingFormat()
				code, ok := orders.MatchTrackingCode(args[0], local, orders.DefaultTrackingFormat)
				if !ok {
					return a.out.Fail(ExitFailure, ErrCodeBadTracking,
						fmt.Sprintf("Please enter a valid tracking code (e.g., %s)", local.Example()), nil)
				}

				order, src := orders.NewLookup(a.client, a.items, a.logger).Find(ctx, code)
				if order == nil {
					return a.out.Fail(ExitFailure, ErrCodeNotFound, "Order not found. Please check your tracking code.", map[string]string{"code": code})
				}
				return a.out.Render(TrackedOrder{Source: src, Order: *order}, func(w io.Writer) error {
					return view.WriteTrackedOrder(w, *order, src)
				})
			})
		},
	}
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders placed from this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				history := orders.NewLookup(nil, a.items, a.logger).History(ctx)
				return a.out.Render(history, func(w io.Writer) error {
					return view.WritePastOrders(w, history)
				})
			})
		},
	}
}
