package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/roach88/espr/internal/api"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/view"
)

// Message is the JSON payload of commands that only confirm an action.
type Message struct {
	Message string `json:"message"`
}

func (m Message) String() string { return m.Message }

// NewAdminCommand creates the admin command group.
func NewAdminCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage products, orders and users on the backend",
		Long: `Console commands for store staff.

Log in first; the session cookie is saved to the configured cookie file
and reused until "espr admin logout".`,
	}

	cmd.AddCommand(
		newAdminLoginCommand(rootOpts),
		newAdminLogoutCommand(rootOpts),
		newAdminProductsCommand(rootOpts),
		newAdminProductSaveCommand(rootOpts),
		newAdminAction(rootOpts, "product-archive <id>", "Archive a product", func(ctx context.Context, ad *api.Admin, args []string) (string, error) {
			return "Product " + args[0] + " archived.", ad.ArchiveProduct(ctx, args[0])
		}, 1),
		newAdminOrdersCommand(rootOpts),
		newAdminAction(rootOpts, "order-status <id> <status>", "Set an order's status", func(ctx context.Context, ad *api.Admin, args []string) (string, error) {
			return fmt.Sprintf("Order %s is now %s.", args[0], args[1]), ad.UpdateOrderStatus(ctx, args[0], model.Status(args[1]))
		}, 2),
		newAdminAction(rootOpts, "order-archive <id>", "Archive an order", func(ctx context.Context, ad *api.Admin, args []string) (string, error) {
			return "Order " + args[0] + " archived.", ad.ArchiveOrder(ctx, args[0])
		}, 1),
		newAdminUsersCommand(rootOpts),
		newAdminUserSaveCommand(rootOpts),
		newAdminAction(rootOpts, "user-delete <id>", "Delete a console user", func(ctx context.Context, ad *api.Admin, args []string) (string, error) {
			return "User " + args[0] + " deleted.", ad.DeleteUser(ctx, args[0])
		}, 1),
	)

	return cmd
}

// withAdmin runs fn with a console client and maps its errors.
func withAdmin(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *app, *api.Admin) error) error {
	return withApp(opts, cmd, func(ctx context.Context, a *app) error {
		ad, err := a.admin()
		if err != nil {
			return a.out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		if err := fn(ctx, a, ad); err != nil {
			return adminFailure(a, err)
		}
		return nil
	})
}

func adminFailure(a *app, err error) error {
	if isExitError(err) {
		return err
	}
	var he *api.HTTPError
	switch {
	case errors.Is(err, api.ErrInvalidForm):
		return a.out.Fail(ExitFailure, ErrCodeInvalidForm, err.Error(), nil)
	case errors.Is(err, api.ErrLoginFailed):
		return a.out.Fail(ExitFailure, ErrCodeLoginFailed, err.Error(), nil)
	case errors.As(err, &he) && (he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden):
		return a.out.Fail(ExitFailure, ErrCodeUnauthorized, "not logged in; run espr admin login", nil)
	default:
		return a.out.Fail(ExitFailure, ErrCodeAdminRequest, err.Error(), nil)
	}
}

func newAdminAction(rootOpts *RootOptions, use, short string, fn func(context.Context, *api.Admin, []string) (string, error), nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				msg, err := fn(ctx, ad, args)
				if err != nil {
					return err
				}
				return a.out.Success(Message{Message: msg})
			})
		},
	}
}

func newAdminLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				if err := ad.Login(ctx, username, password); err != nil {
					return err
				}
				return a.out.Success(Message{Message: "Logged in as " + username + "."})
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "console username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "console password")
	return cmd
}

func newAdminLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the console session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				if err := ad.Logout(ctx); err != nil {
					return err
				}
				return a.out.Success(Message{Message: "Logged out."})
			})
		},
	}
}

func newAdminProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				products, err := ad.Products(ctx)
				if err != nil {
					return err
				}
				return a.out.Render(products, func(w io.Writer) error {
					return view.WriteAdminProducts(w, products)
				})
			})
		},
	}
}

func newAdminProductSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var form api.ProductForm
	cmd := &cobra.Command{
		Use:   "product-save",
		Short: "Create or update a product",
		Long: `Create a product, or update one when --id is given.

Example:
  espr admin product-save --name Cortado --price 135 --quantity 20 --category "Coffee & Tea"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				saved, err := ad.SaveProduct(ctx, form)
				if err != nil {
					return err
				}
				id := "N/A"
				if saved != nil && saved.ID != "" {
					id = saved.ID.String()
				}
				return a.out.Success(Message{Message: "Product saved (ID: " + id + ")."})
			})
		},
	}
	cmd.Flags().StringVar(&form.ID, "id", "", "product id to update")
	cmd.Flags().StringVar(&form.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&form.Price, "price", 0, "unit price")
	cmd.Flags().IntVar(&form.Quantity, "quantity", 0, "stock on hand")
	cmd.Flags().StringVar(&form.Category, "category", "", "menu category")
	cmd.Flags().StringVar(&form.Description, "description", "", "description")
	cmd.Flags().StringVar(&form.ImageURL, "image-url", "", "image URL")
	return cmd
}

func newAdminOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				list, err := ad.Orders(ctx)
				if err != nil {
					return err
				}
				return a.out.Render(list, func(w io.Writer) error {
					return view.WriteAdminOrders(w, list)
				})
			})
		},
	}
}

func newAdminUsersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List console users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				users, err := ad.Users(ctx)
				if err != nil {
					return err
				}
				return a.out.Render(users, func(w io.Writer) error {
					return view.WriteAdminUsers(w, users)
				})
			})
		},
	}
}

func newAdminUserSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var form api.UserForm
	cmd := &cobra.Command{
		Use:   "user-save",
		Short: "Create or update a console user",
		Long: `Create a console user, or update one when --id is given.

A password is required for new users. On update an empty password keeps
the current one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(rootOpts, cmd, func(ctx context.Context, a *app, ad *api.Admin) error {
				if err := ad.SaveUser(ctx, form); err != nil {
					return err
				}
				return a.out.Success(Message{Message: "User " + form.Username + " saved."})
			})
		},
	}
	cmd.Flags().StringVar(&form.ID, "id", "", "user id to update")
	cmd.Flags().StringVar(&form.Username, "username", "", "login name")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "repeat the password")
	return cmd
}
