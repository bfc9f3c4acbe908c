package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

func TestAddToWishlist_Idempotent(t *testing.T) {
	svc, cat, n := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000))

	_, r, err := svc.AddToWishlist(ctx, sid, "a")
	require.NoError(t, err)
	assert.True(t, r.Changed)

	list, r, err := svc.AddToWishlist(ctx, sid, "a")
	require.NoError(t, err)
	assert.False(t, r.Changed)
	assert.Equal(t, 1, list.Count)
	assert.Len(t, n.recorded(), 1)
}

func TestMoveToCart(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000))
	_, _, err := svc.AddToWishlist(ctx, sid, "a")
	require.NoError(t, err)

	cart, r, err := svc.MoveToCart(ctx, sid, "a")
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, 1, cart.TotalItems)

	list, err := svc.Wishlist(ctx, sid)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestMoveToCart_NotWishlisted(t *testing.T) {
	svc, cat, _ := newTestService(t)

	_, _, err := svc.MoveToCart(context.Background(), sid, "a")

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	cat.AssertNotCalled(t, "Product", mock.Anything, mock.Anything)
}

func TestMoveToCart_OutOfStockKeepsWishlist(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	p := product("a", 1000)
	stock(cat, p)
	_, _, err := svc.AddToWishlist(ctx, sid, "a")
	require.NoError(t, err)

	sold := p
	sold.InStock = false
	cat.ExpectedCalls = nil
	stock(cat, sold)

	_, _, err = svc.MoveToCart(ctx, sid, "a")
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	in, err := svc.InWishlist(ctx, sid, "a")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestShareWishlist_RoundTrip(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000), product("b", 2000))
	for _, id := range []string{"a", "b"} {
		_, _, err := svc.AddToWishlist(ctx, sid, id)
		require.NoError(t, err)
	}

	link, err := svc.ShareWishlist(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, link.Count)
	assert.True(t, strings.HasPrefix(link.URL, "https://maysa.example/wishlist/shared/"))
	assert.True(t, strings.HasSuffix(link.URL, link.Token))

	shared, err := svc.ResolveSharedWishlist(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, viewIDs(shared.Items))
	assert.Empty(t, shared.Missing)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), shared.CreatedAt)
}

func TestShareWishlist_Empty(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ShareWishlist(context.Background(), sid)

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestResolveSharedWishlist_SkipsMissingProducts(t *testing.T) {
	svc, cat, _ := newTestService(t)
	stock(cat, product("a", 1000))
	cat.On("Product", mock.Anything, "gone").Return(domain.Product{}, apperrors.NotFound("product", "gone"))

	token, err := domain.EncodeShareToken([]string{"gone", "a", "a"}, time.Now())
	require.NoError(t, err)

	shared, err := svc.ResolveSharedWishlist(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, viewIDs(shared.Items))
	assert.Equal(t, []string{"gone"}, shared.Missing)
}

func TestResolveSharedWishlist_CatalogDown(t *testing.T) {
	svc, cat, _ := newTestService(t)
	cat.On("Product", mock.Anything, "a").Return(domain.Product{}, apperrors.Unavailable("catalog is unavailable", errors.New("dial tcp")))

	token, err := domain.EncodeShareToken([]string{"a"}, time.Now())
	require.NoError(t, err)

	_, err = svc.ResolveSharedWishlist(context.Background(), token)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestResolveSharedWishlist_InvalidToken(t *testing.T) {
	svc, cat, _ := newTestService(t)

	_, err := svc.ResolveSharedWishlist(context.Background(), "%%%not-a-token")

	assert.True(t, errors.Is(err, domain.ErrInvalidShareData))
	cat.AssertNotCalled(t, "Product", mock.Anything, mock.Anything)
}

func TestImportSharedWishlist(t *testing.T) {
	svc, cat, _ := newTestService(t)
	ctx := context.Background()
	stock(cat, product("a", 1000), product("b", 2000))
	_, _, err := svc.AddToWishlist(ctx, sid, "b")
	require.NoError(t, err)

	token, err := domain.EncodeShareToken([]string{"a", "b"}, time.Now())
	require.NoError(t, err)

	list, r, err := svc.ImportSharedWishlist(ctx, sid, token)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, []string{"b", "a"}, viewIDs(list.Items))

	_, r, err = svc.ImportSharedWishlist(ctx, sid, token)
	require.NoError(t, err)
	assert.False(t, r.Changed)
}
