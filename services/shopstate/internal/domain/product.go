package domain

import (
	govalidator "github.com/go-playground/validator/v10"

	"github.com/maysa/storefront/pkg/validator"
)

// Product is the catalog read model the stores snapshot. Prices are integers
// in the smallest currency unit (rial).
type Product struct {
	ID            string   `json:"id" validate:"required"`
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Price         int64    `json:"price" validate:"gte=0"`
	OriginalPrice *int64   `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	Images        []string `json:"images" validate:"min=1,dive,required"`
	InStock       bool     `json:"in_stock"`
	Category      string   `json:"category"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount   *int     `json:"review_count,omitempty" validate:"omitempty,gte=0"`
}

func init() {
	validator.RegisterStructRule(productRule, Product{})
}

// productRule rejects an original price below the selling price.
func productRule(sl govalidator.StructLevel) {
	p := sl.Current().Interface().(Product)
	if p.OriginalPrice != nil && *p.OriginalPrice < p.Price {
		sl.ReportError(p.OriginalPrice, "OriginalPrice", "original_price", "gtefield", "Price")
	}
}

// Validate checks the product against the catalog invariants.
func (p Product) Validate() error {
	return validator.Validate(p)
}

// Discount returns the displayed discount percentage, if any.
func (p Product) Discount() (int, bool) {
	return DiscountPercent(p.Price, p.OriginalPrice)
}

// ProductView is the product as rendered to shoppers. Every response that
// shows a product goes through it so the discount badge is computed once.
type ProductView struct {
	Product
	DiscountPercent *int `json:"discount_percent,omitempty"`
}

// NewProductView builds the view for p.
func NewProductView(p Product) ProductView {
	v := ProductView{Product: p}
	if pct, ok := p.Discount(); ok {
		v.DiscountPercent = &pct
	}
	return v
}

// NewProductViews maps products to views, preserving order.
func NewProductViews(products []Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductView(p))
	}
	return views
}
