package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/pkg/validator"
)

func ptr[T any](v T) *T { return &v }

func validProduct() Product {
	return Product{
		ID:       "p-1",
		Slug:     "silk-rug",
		Name:     "فرش ابریشم",
		Price:    900000,
		Images:   []string{"/images/rug.jpg"},
		InStock:  true,
		Category: "home",
	}
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Product)
		field  string
	}{
		{"valid", func(*Product) {}, ""},
		{"missing id", func(p *Product) { p.ID = "" }, "ID"},
		{"negative price", func(p *Product) { p.Price = -1 }, "Price"},
		{"no images", func(p *Product) { p.Images = nil }, "Images"},
		{"rating above five", func(p *Product) { p.Rating = ptr(5.5) }, "Rating"},
		{"negative reviews", func(p *Product) { p.ReviewCount = ptr(-2) }, "ReviewCount"},
		{"original below price", func(p *Product) { p.OriginalPrice = ptr(int64(100)) }, "OriginalPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)

			err := p.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *validator.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields(), tt.field)
		})
	}
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		original *int64
		want     int
		ok       bool
	}{
		{"ten percent", 900000, ptr(int64(1000000)), 10, true},
		{"rounds half up", 87500, ptr(int64(100000)), 13, true},
		{"rounds down", 666, ptr(int64(1000)), 33, true},
		{"no original", 900000, nil, 0, false},
		{"equal prices", 1000, ptr(int64(1000)), 0, false},
		{"original below price", 1000, ptr(int64(900)), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DiscountPercent(tt.price, tt.original)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscount_SameAcrossViews(t *testing.T) {
	p := validProduct()
	p.OriginalPrice = ptr(int64(1000000))

	direct, ok := p.Discount()
	require.True(t, ok)

	view := NewProductView(p)
	line := NewCartLineViews([]CartItem{{Product: p, Quantity: 2}})[0]

	require.NotNil(t, view.DiscountPercent)
	require.NotNil(t, line.Product.DiscountPercent)
	assert.Equal(t, 10, direct)
	assert.Equal(t, direct, *view.DiscountPercent)
	assert.Equal(t, direct, *line.Product.DiscountPercent)
	assert.Equal(t, int64(1800000), line.LineTotal)
}

func TestProductView_NoBadgeWithoutOriginal(t *testing.T) {
	raw, err := json.Marshal(NewProductView(validProduct()))
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "discount_percent")
	assert.Contains(t, string(raw), `"id":"p-1"`)
}

func TestCartItem_Totals(t *testing.T) {
	p := validProduct()
	p.Price = 1000
	p.OriginalPrice = ptr(int64(1250))
	item := CartItem{Product: p, Quantity: 3}

	assert.Equal(t, int64(3000), item.LineTotal())
	assert.Equal(t, int64(750), item.LineSavings())
}

func TestShareToken_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC)

	token, err := EncodeShareToken([]string{"p1", "p2", "p3"}, created)
	require.NoError(t, err)
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	data, err := DecodeShareToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, data.IDs)
	assert.True(t, created.Equal(data.CreatedAt))
}

func TestEncodeShareToken_Empty(t *testing.T) {
	_, err := EncodeShareToken(nil, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDecodeShareToken_Invalid(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := map[string]string{
		"empty":        "",
		"garbage":      "!!!not-base64!!!",
		"not json":     enc("hello"),
		"no ids":       enc(`{"ids":[],"created_at":1}`),
		"blank id":     enc(`{"ids":["p1"," "],"created_at":1}`),
		"wrong type":   enc(`{"ids":"p1"}`),
		"truncated":    enc(`{"ids":["p1","p2"]`),
		"too many ids": enc(`{"ids":[` + strings.Repeat(`"x",`, MaxShareIDs) + `"x"]}`),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := DecodeShareToken(token)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidShareData))
			assert.Empty(t, data.IDs)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "INVALID_SHARE_DATA", appErr.Code)
		})
	}
}

func TestDecodeShareToken_TamperedStillDecodesIfWellFormed(t *testing.T) {
	token, err := EncodeShareToken([]string{"p1"}, time.Now())
	require.NoError(t, err)

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"ids":["p9"],"created_at":0}`))
	data, err := DecodeShareToken(forged)
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, data.IDs)
	assert.NotEqual(t, token, forged)
}

func TestShareURL(t *testing.T) {
	assert.Equal(t, "https://maysa.ir/wishlist/shared/abc", ShareURL("https://maysa.ir/", "abc"))
	assert.Equal(t, "https://maysa.ir/wishlist/shared/abc", ShareURL("https://maysa.ir", "abc"))
}
