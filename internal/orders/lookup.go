package orders

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/espr/internal/format"
	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/store"
)

// TrackingPrefix starts every tracking code the backend issues.
const TrackingPrefix = "ESPR-"

// TrackingFormat is the shape of a tracking code: Prefix followed by at
// least Length code characters.
type TrackingFormat struct {
	Prefix string
	Length int
}

// DefaultTrackingFormat matches backend codes such as ESPR-AB12CD.
var DefaultTrackingFormat = TrackingFormat{Prefix: TrackingPrefix, Length: 6}

// Valid reports whether code has the format. It is a format check only.
func (f TrackingFormat) Valid(code string) bool {
	return strings.HasPrefix(code, f.Prefix) && len(code) >= len(f.Prefix)+f.Length
}

// Normalize trims code and upper-cases its code characters. A prefix typed
// in any case is rewritten to f.Prefix.
func (f TrackingFormat) Normalize(code string) string {
	code = strings.TrimSpace(code)
	n := len(f.Prefix)
	if len(code) >= n && strings.EqualFold(code[:n], f.Prefix) {
		return f.Prefix + strings.ToUpper(code[n:])
	}
	return strings.ToUpper(code)
}

// Example renders a placeholder code for error messages, e.g. ESPR-XXXXXX.
func (f TrackingFormat) Example() string {
	return f.Prefix + strings.Repeat("X", f.Length)
}

// MatchTrackingCode normalizes code against each format in turn and
// returns the first normalized form that is valid.
func MatchTrackingCode(code string, formats ...TrackingFormat) (string, bool) {
	for _, f := range formats {
		if n := f.Normalize(code); f.Valid(n) {
			return n, true
		}
	}
	return strings.TrimSpace(code), false
}

// Source says where a found order came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceNone   Source = "none"
)

// Remote fetches an order from the backend. *api.Client satisfies it.
type Remote interface {
	Order(ctx context.Context, id string) (*model.Order, error)
}

// ValidTrackingCode reports whether code has the backend's tracking code
// format.
func ValidTrackingCode(code string) bool {
	return DefaultTrackingFormat.Valid(code)
}

// Lookup resolves orders against the backend first and the local order log
// second.
type Lookup struct {
	remote Remote
	items  *store.Items
	logger *zap.Logger
}

// NewLookup returns a Lookup. A nil remote searches only local orders.
func NewLookup(remote Remote, items *store.Items, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lookup{remote: remote, items: items, logger: logger.Named("orders")}
}

// Find returns the order with id. Any remote failure falls through to the
// local log. Remote results are never written locally.
func (l *Lookup) Find(ctx context.Context, id string) (*model.Order, Source) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, SourceNone
	}

	if l.remote != nil {
		order, err := l.remote.Order(ctx, id)
		if err == nil && order != nil {
			return order, SourceRemote
		}
		l.logger.Debug("remote lookup failed, checking local orders", zap.String("order_id", id), zap.Error(err))
	}

	for _, o := range l.items.Orders(ctx) {
		if o.OrderID == id {
			found := o
			return &found, SourceLocal
		}
	}
	return nil, SourceNone
}

// History returns local orders, most recent first. Orders with unparsable
// dates sort after all dated ones; ties keep their stored order.
func (l *Lookup) History(ctx context.Context) []model.Order {
	orders := l.items.Orders(ctx)
	SortNewestFirst(orders)
	return orders
}

// SortNewestFirst orders by date descending in place.
func SortNewestFirst(orders []model.Order) {
	dates := make(map[int]time.Time, len(orders))
	idx := make([]int, len(orders))
	for i, o := range orders {
		idx[i] = i
		if t, ok := format.ParseDate(o.Date); ok {
			dates[i] = t
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ta, okA := dates[idx[a]]
		tb, okB := dates[idx[b]]
		switch {
		case okA && okB:
			return ta.After(tb)
		case okA != okB:
			return okA
		}
		return false
	})

	sorted := make([]model.Order, len(orders))
	for i, j := range idx {
		sorted[i] = orders[j]
	}
	copy(orders, sorted)
}
