package domain

import "math"

// DiscountPercent returns round((original - price) / original * 100) when an
// original price is present and above price. ok is false when there is no
// discount to show.
func DiscountPercent(price int64, original *int64) (pct int, ok bool) {
	if original == nil || *original <= price || *original <= 0 {
		return 0, false
	}
	o := float64(*original)
	return int(math.Round((o - float64(price)) / o * 100)), true
}

// Savings is the per-unit amount saved against the original price.
func Savings(price int64, original *int64) int64 {
	if original == nil || *original <= price {
		return 0
	}
	return *original - price
}
