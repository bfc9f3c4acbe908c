package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maysa/storefront/pkg/errors"
)

func TestSlotStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewSlotStore()

	_, err := s.Load(ctx, "sess-1", "cart")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	payload := []byte(`[{"quantity":1}]`)
	require.NoError(t, s.Save(ctx, "sess-1", "cart", payload))
	payload[0] = 'x'

	got, err := s.Load(ctx, "sess-1", "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":1}]`, string(got))

	_, err = s.Load(ctx, "sess-2", "cart")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.Load(ctx, "sess-1", "wishlist")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "sess-1", "cart"))
	require.NoError(t, s.Delete(ctx, "sess-1", "cart"))
	_, err = s.Load(ctx, "sess-1", "cart")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, s.Ping(ctx))
}
