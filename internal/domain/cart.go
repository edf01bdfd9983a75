package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart represents a named shopping cart owning a collection of items.
type Cart struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Items []CartItem `json:"items"`
}

// CartItem tracks a product with an amount inside one cart. Its identity is
// the (CartID, ProductID) pair; a cart holds at most one item per product.
// The Product reference is used for reads and pricing only, never for
// product lifecycle.
type CartItem struct {
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
	Product   *Product  `json:"product,omitempty"`
}
