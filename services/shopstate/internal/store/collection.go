package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/maysa/storefront/pkg/logger"
	"github.com/maysa/storefront/pkg/tracing"
)

// Store names, used in changes, logs and metrics.
const (
	NameCart           = "cart"
	NameWishlist       = "wishlist"
	NameComparison     = "comparison"
	NameRecentlyViewed = "recently_viewed"
)

// Actions reported in a Change.
const (
	ActionAdd            = "add"
	ActionRemove         = "remove"
	ActionUpdateQuantity = "update_quantity"
	ActionClear          = "clear"
)

// Slot is the durable home of one store's collection.
type Slot[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
	Clear(ctx context.Context) error
}

// Change describes an accepted mutation.
type Change struct {
	Store     string `json:"store"`
	Action    string `json:"action"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Count     int    `json:"count"`
}

// Subscriber is notified after every accepted mutation, outside the store lock.
type Subscriber func(ctx context.Context, change Change)

// Outcome is the result of a mutation that was not rejected. Changed is false
// for legitimate no-ops such as removing an absent product. Warning is set
// when the change applied in memory but could not be persisted.
type Outcome struct {
	Changed bool
	Warning error
}

// Option configures a store.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	subscribers []Subscriber
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSubscriber registers fn before hydration so it sees every mutation.
func WithSubscriber(fn Subscriber) Option {
	return func(o *options) { o.subscribers = append(o.subscribers, fn) }
}

type subscription struct {
	id int
	fn Subscriber
}

// edit is the result of applying a mutation to a copy of the collection.
type edit[T any] struct {
	items   []T
	change  Change
	changed bool
	clear   bool
}

// collection is the shared engine behind every store: an in-memory view
// synchronized to one slot.
type collection[T any] struct {
	name      string
	slot      Slot[T]
	normalize func([]T) []T
	logger    *slog.Logger

	mu     sync.Mutex
	items  []T
	subs   []subscription
	nextID int
}

func newCollection[T any](ctx context.Context, name string, slot Slot[T], normalize func([]T) []T, opts []Option) *collection[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &collection[T]{
		name:      name,
		slot:      slot,
		normalize: normalize,
		logger:    o.logger.With(slog.String("store", name)),
	}
	for _, fn := range o.subscribers {
		c.subscribe(fn)
	}

	if items, err := slot.Load(ctx); err != nil {
		c.warn(ctx, "load", err)
	} else {
		c.items = c.clean(items)
	}
	return c
}

func (c *collection[T]) clean(items []T) []T {
	if c.normalize != nil {
		return c.normalize(items)
	}
	return items
}

func (c *collection[T]) warn(ctx context.Context, op string, err error) {
	persistFailuresTotal.WithLabelValues(c.name, op).Inc()
	logger.WithContext(ctx, c.logger).WarnContext(ctx, "slot unavailable, using in-memory state",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

func (c *collection[T]) subscribe(fn Subscriber) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subs = slices.DeleteFunc(c.subs, func(s subscription) bool { return s.id == id })
	}
}

// snapshot returns a copy of the in-memory view.
func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// refresh replaces the in-memory view with the persisted snapshot.
func (c *collection[T]) refresh(ctx context.Context) error {
	items, err := c.slot.Load(ctx)
	if err != nil {
		c.warn(ctx, "load", err)
		return err
	}
	c.mu.Lock()
	c.items = c.clean(items)
	c.mu.Unlock()
	return nil
}

// mutate re-reads the slot, applies fn to a copy of the latest collection and,
// when fn accepts and changes it, persists the result and notifies
// subscribers. fn must not retain the slice it receives beyond the call.
func (c *collection[T]) mutate(ctx context.Context, action string, fn func([]T) (edit[T], error)) (out Outcome, err error) {
	ctx, span := tracing.Start(ctx, "store", c.name+"."+action)
	defer func() { tracing.End(span, err) }()

	c.mu.Lock()

	if latest, loadErr := c.slot.Load(ctx); loadErr != nil {
		c.warn(ctx, "load", loadErr)
	} else {
		c.items = c.clean(latest)
	}

	e, err := fn(slices.Clone(c.items))
	if err != nil || !e.changed {
		c.mu.Unlock()
		return Outcome{}, err
	}

	c.items = e.items
	var saveErr error
	if e.clear {
		saveErr = c.slot.Clear(ctx)
	} else {
		saveErr = c.slot.Save(ctx, e.items)
	}

	e.change.Store = c.name
	e.change.Action = action
	e.change.Count = len(e.items)
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	mutationsTotal.WithLabelValues(c.name, action).Inc()
	span.SetAttributes(attribute.Int("count", e.change.Count))

	out = Outcome{Changed: true}
	if saveErr != nil {
		c.warn(ctx, "save", saveErr)
		out.Warning = fmt.Errorf("%s changed in memory only: %w", c.name, saveErr)
	}

	for _, s := range subs {
		s.fn(ctx, e.change)
	}
	return out, nil
}

// indexOf returns the index of the first item whose id matches, or -1.
func indexOf[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
}

// dedupe keeps the first occurrence of each id and drops items without one.
func dedupe[T any](items []T, idOf func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		id := idOf(it)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, it)
	}
	return out
}
