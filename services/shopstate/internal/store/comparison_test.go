package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

func newComparison(t *testing.T) (*ComparisonStore, *fakeSlot[domain.Product]) {
	t.Helper()
	slot := &fakeSlot[domain.Product]{}
	return NewComparisonStore(context.Background(), slot, quietLogger()), slot
}

func TestComparisonStore_Bound(t *testing.T) {
	ctx := context.Background()
	cmp, slot := newComparison(t)

	for i, id := range []string{"p1", "p2", "p3"} {
		_, err := cmp.Add(ctx, product(id, 1))
		require.NoError(t, err)
		assert.True(t, cmp.CanAddMore(), "after %d items", i+1)
	}

	_, err := cmp.Add(ctx, product("p4", 1))
	require.NoError(t, err)
	assert.False(t, cmp.CanAddMore())

	out, err := cmp.Add(ctx, product("p5", 1))
	require.Error(t, err)
	assert.False(t, out.Changed)
	assert.True(t, errors.Is(err, ErrComparisonFull))
	assert.True(t, errors.Is(err, apperrors.ErrLimitExceeded))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "COMPARISON_FULL", appErr.Code)

	assert.Len(t, cmp.Items(), MaxComparison)
	assert.Len(t, slot.items, MaxComparison)
}

func TestComparisonStore_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	cmp, _ := newComparison(t)

	_, err := cmp.Add(ctx, product("p1", 1))
	require.NoError(t, err)

	_, err = cmp.Add(ctx, product("p1", 1))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Len(t, cmp.Items(), 1)
}

func TestComparisonStore_RemovePreservesOrder(t *testing.T) {
	ctx := context.Background()
	cmp, _ := newComparison(t)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		_, err := cmp.Add(ctx, product(id, 1))
		require.NoError(t, err)
	}

	_, err := cmp.Remove(ctx, "p2")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p3", "p4"}, ids(cmp.Items()))
	assert.True(t, cmp.CanAddMore())
	assert.False(t, cmp.Contains("p2"))
	assert.True(t, cmp.Contains("p3"))
}

func TestComparisonStore_Clear(t *testing.T) {
	ctx := context.Background()
	cmp, _ := newComparison(t)
	_, err := cmp.Add(ctx, product("p1", 1))
	require.NoError(t, err)

	_, err = cmp.Clear(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Items())
	assert.True(t, cmp.CanAddMore())
}

func TestComparisonStore_HydrationTruncatesOversizedSlot(t *testing.T) {
	slot := &fakeSlot[domain.Product]{}
	slot.set(product("a", 1), product("b", 1), product("c", 1), product("d", 1), product("e", 1))

	cmp := NewComparisonStore(context.Background(), slot, quietLogger())

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(cmp.Items()))
}
