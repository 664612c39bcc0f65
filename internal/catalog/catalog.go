package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"go.uber.org/zap"

	"github.com/roach88/espr/internal/model"
)

//go:embed catalog.cue
var bundledSource []byte

// AllCategories selects every product.
const AllCategories = "All Products"

// Origin says where a listing came from.
type Origin string

const (
	OriginLive    Origin = "live"
	OriginBundled Origin = "bundled"
)

// Source fetches the live product list. *api.Client satisfies it.
type Source interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// Catalog lists products from a live Source with the bundled list as
// fallback.
type Catalog struct {
	remote Source
	logger *zap.Logger

	bundledOnce sync.Once
	bundled     []model.Product
	bundledErr  error
}

// New returns a Catalog over remote. A nil remote serves only the bundled
// list.
func New(remote Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{remote: remote, logger: logger.Named("catalog")}
}

// Bundled decodes the embedded catalog.
func Bundled() ([]model.Product, error) {
	return decode(bundledSource)
}

func decode(src []byte) ([]model.Product, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog: %w", err)
	}

	list := v.LookupPath(cue.ParsePath("products"))
	if !list.Exists() {
		return nil, fmt.Errorf("catalog has no products field")
	}
	if err := list.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	var products []model.Product
	if err := list.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

// List returns the products in category. An empty category, "all" or
// "All Products" selects everything; otherwise categories match
// case-insensitively.
func (c *Catalog) List(ctx context.Context, category string) ([]model.Product, Origin) {
	products, origin := c.load(ctx)
	return Filter(products, category), origin
}

// Find returns the product with id.
func (c *Catalog) Find(ctx context.Context, id string) (model.Product, bool) {
	products, _ := c.load(ctx)
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories(ctx context.Context) []string {
	products, _ := c.load(ctx)
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// Filter applies the category rule of List to products.
func Filter(products []model.Product, category string) []model.Product {
	category = strings.TrimSpace(category)
	if isAll(category) {
		return products
	}
	out := []model.Product{}
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

func isAll(category string) bool {
	return category == "" || strings.EqualFold(category, "all") || strings.EqualFold(category, AllCategories)
}

func (c *Catalog) load(ctx context.Context) ([]model.Product, Origin) {
	if c.remote != nil {
		products, err := c.remote.Products(ctx)
		if err == nil {
			return products, OriginLive
		}
		c.logger.Warn("live catalog unavailable, serving bundled list", zap.Error(err))
	}

	c.bundledOnce.Do(func() {
		c.bundled, c.bundledErr = Bundled()
	})
	if c.bundledErr != nil {
		c.logger.Error("bundled catalog unreadable", zap.Error(c.bundledErr))
		return []model.Product{}, OriginBundled
	}
	return c.bundled, OriginBundled
}
