package pricing

import (
	"fmt"

	"hardshop/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultPolicy is a configurable surcharge policy: a flat sales-tax rate
// on the pre-tax total, and a percentage discount when a cart spans enough
// distinct hardware categories to count as a build bundle.
type DefaultPolicy struct {
	// TaxRate is the flat sales-tax fraction, e.g. 0.08 for 8%.
	TaxRate decimal.Decimal
	// BundleSize is the number of distinct categories that triggers the
	// bundle discount. Zero disables the discount.
	BundleSize int
	// BundleDiscountRate is the discount fraction applied to the
	// quantity-weighted base subtotal when the bundle triggers.
	BundleDiscountRate decimal.Decimal
}

// BundleSurcharges emits a single negative surcharge when the cart covers
// at least BundleSize distinct categories.
func (p DefaultPolicy) BundleSurcharges(items []domain.CartItem) []Surcharge {
	if p.BundleSize <= 0 || p.BundleDiscountRate.IsZero() {
		return nil
	}

	categories := make(map[domain.Category]struct{})
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		categories[item.Product.Category] = struct{}{}
		subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if len(categories) < p.BundleSize || subtotal.IsZero() {
		return nil
	}

	return []Surcharge{{
		Description: fmt.Sprintf("Build bundle discount (%d categories)", len(categories)),
		Cost:        subtotal.Mul(p.BundleDiscountRate).Neg(),
	}}
}

// TaxSurcharges emits a single flat sales-tax line on the pre-tax total.
// Nothing owed means no line: a zero total yields no surcharge.
func (p DefaultPolicy) TaxSurcharges(totalWithoutTaxes decimal.Decimal) []Surcharge {
	if p.TaxRate.IsZero() || totalWithoutTaxes.IsZero() {
		return nil
	}

	return []Surcharge{{
		Description: fmt.Sprintf("Sales tax (%s%%)", p.TaxRate.Mul(decimal.NewFromInt(100))),
		Cost:        totalWithoutTaxes.Mul(p.TaxRate),
	}}
}
