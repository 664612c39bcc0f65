package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/espr/internal/cart"
	"github.com/roach88/espr/internal/view"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Long: `Show or change the cart kept in the local store.

Running "espr cart" with no subcommand shows the cart. Every change
prints the updated cart, or a one-line summary with --brief.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartShow(rootOpts, cmd)
		},
	}

	cmd.PersistentFlags().Bool("brief", false, "print a one-line summary instead of the full cart")

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(ctx context.Context, a *app, c *cart.Controller) (cart.State, error) {
				p, ok := a.catalog().Find(ctx, args[0])
				if !ok {
					return cart.State{}, a.out.Fail(ExitFailure, ErrCodeNotFound, "product "+args[0]+" not found", nil)
				}
				return c.Add(ctx, p, qty)
			})
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return newFormatter(rootOpts, cmd).Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("quantity %q is not a number", args[1]), nil)
			}
			return withCart(rootOpts, cmd, func(ctx context.Context, _ *app, c *cart.Controller) (cart.State, error) {
				return c.SetQuantity(ctx, args[0], n)
			})
		},
	}

	step := func(use, short string, delta int) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <product-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCart(rootOpts, cmd, func(ctx context.Context, _ *app, c *cart.Controller) (cart.State, error) {
					return c.Increment(ctx, args[0], delta)
				})
			},
		}
	}

	remove := &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(ctx context.Context, _ *app, c *cart.Controller) (cart.State, error) {
				return c.Remove(ctx, args[0])
			})
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(rootOpts, cmd, func(ctx context.Context, _ *app, c *cart.Controller) (cart.State, error) {
				return c.Clear(ctx)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartShow(rootOpts, cmd)
		},
	}

	cmd.AddCommand(show, add, set,
		step("inc", "Add one unit", 1),
		step("dec", "Remove one unit (never below 1)", -1),
		remove, clear)

	return cmd
}

func runCartShow(opts *RootOptions, cmd *cobra.Command) error {
	return withApp(opts, cmd, func(ctx context.Context, a *app) error {
		state := cart.NewController(a.items, nil, a.logger).State(ctx)
		brief, _ := cmd.Flags().GetBool("brief")
		return a.out.Render(state, func(w io.Writer) error {
			if brief {
				return view.WriteCartLine(w, state)
			}
			return view.WriteCart(w, state)
		})
	})
}

// withCart runs a cart mutation. In text mode the controller redraws the
// cart through view.Cart (or the summary line with --brief); in JSON mode
// the resulting state is encoded.
func withCart(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *app, *cart.Controller) (cart.State, error)) error {
	brief, _ := cmd.Flags().GetBool("brief")
	return withApp(opts, cmd, func(ctx context.Context, a *app) error {
		var renderer cart.Renderer = cart.NopRenderer{}
		switch {
		case a.out.Format == "json":
		case brief:
			w := a.out.Writer
			renderer = cart.RenderFunc(func(s cart.State) { _ = view.WriteCartLine(w, s) })
		default:
			renderer = view.Cart{W: a.out.Writer}
		}
		c := cart.NewController(a.items, renderer, a.logger)

		state, err := fn(ctx, a, c)
		switch {
		case err == nil:
		case isExitError(err):
			return err
		case errors.Is(err, cart.ErrItemNotFound):
			return a.out.Fail(ExitFailure, ErrCodeCartItem, err.Error(), nil)
		default:
			return a.out.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}

		if a.out.Format == "json" {
			return a.out.Success(state)
		}
		return nil
	})
}
