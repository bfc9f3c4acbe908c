package domain

// Cart bounds.
const (
	MaxQuantityPerItem = 100
	MaxItemsPerCart    = 50
)

// CartItem is one cart line: a product snapshot taken at add time and its quantity.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the snapshot price times quantity.
func (i CartItem) LineTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// LineSavings is the amount saved on the line against the original price.
func (i CartItem) LineSavings() int64 {
	return Savings(i.Product.Price, i.Product.OriginalPrice) * int64(i.Quantity)
}

// CartLineView is a cart line as rendered to shoppers.
type CartLineView struct {
	Product   ProductView `json:"product"`
	Quantity  int         `json:"quantity"`
	LineTotal int64       `json:"line_total"`
}

// NewCartLineViews maps cart items to views, preserving order.
func NewCartLineViews(items []CartItem) []CartLineView {
	lines := make([]CartLineView, 0, len(items))
	for _, it := range items {
		lines = append(lines, CartLineView{
			Product:   NewProductView(it.Product),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		})
	}
	return lines
}
