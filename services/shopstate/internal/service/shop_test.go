package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
	"github.com/maysa/storefront/services/shopstate/internal/repository/memory"
	"github.com/maysa/storefront/services/shopstate/internal/store"
)

// ============================================================================
// Mocks
// ============================================================================

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Product(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []store.Change
}

func (n *recordingNotifier) Subscriber(string) store.Subscriber {
	return func(_ context.Context, c store.Change) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.changes = append(n.changes, c)
	}
}

func (n *recordingNotifier) recorded() []store.Change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]store.Change(nil), n.changes...)
}

// failingSaves accepts loads but rejects every write.
type failingSaves struct {
	*memory.SlotStore
}

func (f failingSaves) Save(context.Context, string, string, []byte) error {
	return errors.New("quota exceeded")
}

// ============================================================================
// Helpers
// ============================================================================

const sid = "sess-1"

func ptr[T any](v T) *T { return &v }

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:      id,
		Slug:    id,
		Name:    "product " + id,
		Price:   price,
		Images:  []string{"/images/" + id + ".jpg"},
		InStock: true,
	}
}

func newTestService(t *testing.T) (*ShopService, *mockCatalog, *recordingNotifier) {
	t.Helper()
	cat := new(mockCatalog)
	n := &recordingNotifier{}
	svc := NewShopService(memory.NewSlotStore(), cat, n, slog.New(slog.NewTextHandler(io.Discard, nil)),
		Options{ShareOrigin: "https://maysa.example"})
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000).UTC() }
	return svc, cat, n
}

func stock(cat *mockCatalog, products ...domain.Product) {
	for _, p := range products {
		cat.On("Product", mock.Anything, p.ID).Return(p, nil)
	}
}

func viewIDs(views []domain.ProductView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

// ============================================================================
// Cart
// ============================================================================

func TestAddToCart_Totals(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000), product("b", 500))

	_, _, err := svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "a", Quantity: 2})
	require.NoError(t, err)
	cart, r, err := svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "b", Quantity: 3})
	require.NoError(t, err)

	assert.True(t, r.Changed)
	assert.Empty(t, r.Warning)
	assert.Equal(t, 5, cart.TotalItems)
	assert.Equal(t, int64(3500), cart.TotalPrice)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(2000), cart.Items[0].LineTotal)
}

func TestAddToCart_OutOfStock(t *testing.T) {
	svc, cat, _ := newTestService(t)
	p := product("a", 1000)
	p.InStock = false
	stock(cat, p)

	_, _, err := svc.AddToCart(context.Background(), sid, AddToCartInput{ProductID: "a", Quantity: 1})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "OUT_OF_STOCK", appErr.Code)

	cart, err := svc.Cart(context.Background(), sid)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	svc, cat, _ := newTestService(t)
	cat.On("Product", mock.Anything, "ghost").Return(domain.Product{}, apperrors.NotFound("product", "ghost"))

	_, _, err := svc.AddToCart(context.Background(), sid, AddToCartInput{ProductID: "ghost", Quantity: 1})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestShopService_RequiresSession(t *testing.T) {
	svc, cat, _ := newTestService(t)

	_, err := svc.Cart(context.Background(), " ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, _, err = svc.AddToWishlist(context.Background(), "", "a")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	cat.AssertNotCalled(t, "Product", mock.Anything, mock.Anything)
}

func TestUpdateCartQuantity_ZeroRemoves(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000))
	_, _, err := svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "a", Quantity: 2})
	require.NoError(t, err)

	cart, r, err := svc.UpdateCartQuantity(ctx, sid, "a", 0)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Empty(t, cart.Items)

	_, r, err = svc.RemoveFromCart(ctx, sid, "a")
	require.NoError(t, err)
	assert.False(t, r.Changed)
}

func TestCheckoutSummary(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	discounted := product("a", 900_000)
	discounted.OriginalPrice = ptr(int64(1_000_000))
	stock(cat, discounted, product("b", 500))

	_, _, err := svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "a", Quantity: 2})
	require.NoError(t, err)
	_, _, err = svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "b", Quantity: 1})
	require.NoError(t, err)

	sum, err := svc.CheckoutSummary(ctx, sid)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.TotalItems)
	assert.Equal(t, int64(1_800_500), sum.Subtotal)
	assert.Equal(t, int64(200_000), sum.Savings)
	assert.Equal(t, int64(2_000_500), sum.OriginalTotal)
	require.NotNil(t, sum.Lines[0].Product.DiscountPercent)
	assert.Equal(t, 10, *sum.Lines[0].Product.DiscountPercent)
	assert.Nil(t, sum.Lines[1].Product.DiscountPercent)
}

func TestClearCart_EmptiesAndNotifies(t *testing.T) {
	svc, cat, n := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000))
	_, _, err := svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "a", Quantity: 1})
	require.NoError(t, err)

	cart, r, err := svc.ClearCart(ctx, sid)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Empty(t, cart.Items)

	changes := n.recorded()
	require.Len(t, changes, 2)
	assert.Equal(t, store.Change{Store: store.NameCart, Action: store.ActionAdd, ProductID: "a", Quantity: 1, Count: 1}, changes[0])
	assert.Equal(t, store.ActionClear, changes[1].Action)
	assert.Equal(t, 0, changes[1].Count)
}

func TestAddToCart_PersistenceFailureIsWarning(t *testing.T) {
	cat := new(mockCatalog)
	stock(cat, product("a", 1000))
	svc := NewShopService(failingSaves{memory.NewSlotStore()}, cat, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)), Options{})

	cart, r, err := svc.AddToCart(context.Background(), sid, AddToCartInput{ProductID: "a", Quantity: 1})

	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Contains(t, r.Warning, "quota exceeded")
	assert.Equal(t, 1, cart.TotalItems)
}

func TestShopService_StatePersistsAcrossRequests(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000))
	_, _, err := svc.AddToWishlist(ctx, sid, "a")
	require.NoError(t, err)

	in, err := svc.InWishlist(ctx, sid, "a")
	require.NoError(t, err)
	assert.True(t, in)

	other, err := svc.InWishlist(ctx, "sess-2", "a")
	require.NoError(t, err)
	assert.False(t, other)
}

func TestSummary(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000), product("b", 500))

	_, _, err := svc.AddToCart(ctx, sid, AddToCartInput{ProductID: "a", Quantity: 2})
	require.NoError(t, err)
	_, _, err = svc.AddToWishlist(ctx, sid, "b")
	require.NoError(t, err)
	_, _, err = svc.AddToComparison(ctx, sid, "a")
	require.NoError(t, err)
	_, _, err = svc.RecordView(ctx, sid, "b")
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, &Summary{CartItems: 2, CartTotal: 2000, WishlistItems: 1, ComparisonItems: 1, RecentlyViewed: 1}, sum)
}
