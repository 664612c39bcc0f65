package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/espr/internal/catalog"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/view"
)

// ProductList is the JSON payload of the products command.
type ProductList struct {
	Category string          `json:"category,omitempty"`
	Origin   catalog.Origin  `json:"origin"`
	Products []model.Product `json:"products"`
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the menu",
		Long: `List products from the backend, optionally filtered by category.

When the backend cannot be reached the bundled catalog is shown instead.

Example:
  espr products
  espr products --category "Coffee & Tea"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				products, origin := a.catalog().List(ctx, category)
				data := ProductList{Category: category, Origin: origin, Products: products}
				return a.out.Render(data, func(w io.Writer) error {
					return view.WriteProducts(w, products, origin)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category to show (default all)")

	return cmd
}

// NewProductCommand creates the product command.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				p, ok := a.catalog().Find(ctx, args[0])
				if !ok {
					return a.out.Fail(ExitFailure, ErrCodeNotFound, "product "+args[0]+" not found", nil)
				}
				return a.out.Render(p, func(w io.Writer) error {
					return view.WriteProduct(w, p)
				})
			})
		},
	}
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List menu categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				categories := a.catalog().Categories(ctx)
				return a.out.Render(categories, func(w io.Writer) error {
					fmt.Fprintln(w, catalog.AllCategories)
					for _, c := range categories {
						fmt.Fprintln(w, c)
					}
					return nil
				})
			})
		},
	}
}
