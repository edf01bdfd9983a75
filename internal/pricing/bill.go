// Package pricing renders a cart's contents into a Bill: per-unit base
// charges plus bundle and tax surcharge lines with deterministic rounding.
package pricing

import (
	"fmt"

	"hardshop/internal/domain"

	"github.com/shopspring/decimal"
)

// Surcharge is one named cost line contributing to a Bill's totals. Cost is
// always rounded to 2 decimal places before inclusion.
type Surcharge struct {
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
}

// Bill is the computed charge breakdown for a set of cart items. It is
// ephemeral and never persisted; totals are derived, not stored.
type Bill struct {
	BaseCharges      []Surcharge `json:"base_charges"`
	BundleSurcharges []Surcharge `json:"bundle_surcharges"`
	TaxSurcharges    []Surcharge `json:"tax_surcharges"`

	// quantities holds the quantity behind each base charge, in order.
	// Base charge costs are per-unit, so totals weight them by quantity.
	quantities []int
}

// TotalWithoutSurcharges sums the base charges weighted by quantity.
func (b Bill) TotalWithoutSurcharges() decimal.Decimal {
	total := decimal.Zero
	for i, c := range b.BaseCharges {
		qty := 1
		if i < len(b.quantities) {
			qty = b.quantities[i]
		}
		total = total.Add(c.Cost.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// TotalWithoutTaxes is the base total plus all bundle surcharges.
func (b Bill) TotalWithoutTaxes() decimal.Decimal {
	total := b.TotalWithoutSurcharges()
	for _, s := range b.BundleSurcharges {
		total = total.Add(s.Cost)
	}
	return total
}

// TotalWithTaxes is the pre-tax total plus all tax surcharges.
func (b Bill) TotalWithTaxes() decimal.Decimal {
	total := b.TotalWithoutTaxes()
	for _, s := range b.TaxSurcharges {
		total = total.Add(s.Cost)
	}
	return total
}

// Policy produces bundle and tax surcharges for a bill. Both are external
// concerns: the engine only rounds what a policy returns and folds it into
// the totals.
type Policy interface {
	// BundleSurcharges derives group adjustments from the cart's contents.
	BundleSurcharges(items []domain.CartItem) []Surcharge
	// TaxSurcharges derives tax lines from the pre-tax total.
	TaxSurcharges(totalWithoutTaxes decimal.Decimal) []Surcharge
}

// ComputeBill renders cart items into a Bill. It is pure: the same items
// and policy always yield the same bill. Each item emits one base charge
// "{quantity}X {name}" carrying the unit price; the quantity multiplier is
// conveyed only through the description so every base line stays auditable
// per unit. All costs round half away from zero to 2 decimal places; totals
// accumulate in fixed order base, then bundle, then tax.
func ComputeBill(items []domain.CartItem, policy Policy) Bill {
	bill := Bill{
		BaseCharges:      make([]Surcharge, 0, len(items)),
		BundleSurcharges: []Surcharge{},
		TaxSurcharges:    []Surcharge{},
		quantities:       make([]int, 0, len(items)),
	}

	for _, item := range items {
		name := ""
		price := decimal.Zero
		if item.Product != nil {
			name = item.Product.Name
			price = item.Product.Price
		}
		bill.BaseCharges = append(bill.BaseCharges, Surcharge{
			Description: fmt.Sprintf("%dX %s", item.Quantity, name),
			Cost:        price.Round(2),
		})
		bill.quantities = append(bill.quantities, item.Quantity)
	}

	if policy != nil {
		for _, s := range policy.BundleSurcharges(items) {
			s.Cost = s.Cost.Round(2)
			bill.BundleSurcharges = append(bill.BundleSurcharges, s)
		}
		for _, s := range policy.TaxSurcharges(bill.TotalWithoutTaxes()) {
			s.Cost = s.Cost.Round(2)
			bill.TaxSurcharges = append(bill.TaxSurcharges, s)
		}
	}

	return bill
}
