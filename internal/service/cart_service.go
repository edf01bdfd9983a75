package service

import (
	"context"
	"fmt"

	"hardshop/internal/domain"
	"hardshop/internal/pricing"
	"hardshop/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for cart business logic, including bill
// computation for display and the checkout stock sweep.
type CartService interface {
	CreateCart(ctx context.Context, name string) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	RemoveCart(ctx context.Context, cartID uuid.UUID) error
	Bill(ctx context.Context, cartID uuid.UUID) (pricing.Bill, error)
	ApplyPurchase(ctx context.Context, cartID uuid.UUID) error
}

type cartService struct {
	cartRepo repository.CartRepository
	policy   pricing.Policy
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, policy pricing.Policy) CartService {
	return &cartService{
		cartRepo: cartRepo,
		policy:   policy,
	}
}

// CreateCart creates a new cart with empty items.
func (s *cartService) CreateCart(ctx context.Context, name string) (*domain.Cart, error) {
	cart := &domain.Cart{
		ID:   uuid.New(),
		Name: name,
	}

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

// GetCart retrieves a cart with its items populated.
func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	return s.cartRepo.FindCart(ctx, cartID)
}

// AddItem adds quantity of a product to the cart, merging with an existing
// item for the same product. Negative quantity clamps to 0.
func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity < 0 {
		quantity = 0
	}

	return s.cartRepo.AddItem(ctx, cartID, productID, quantity)
}

// RemoveItem removes quantity of a product from the cart; removing at least
// the current quantity deletes the item row. Negative quantity is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return nil
	}

	return s.cartRepo.RemoveItem(ctx, cartID, productID, quantity)
}

// ListItems retrieves the cart's items in insertion order.
func (s *cartService) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	return s.cartRepo.ListItems(ctx, cartID)
}

// ClearCart removes all items from the cart. Idempotent.
func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return s.cartRepo.ClearCart(ctx, cartID)
}

// RemoveCart clears the cart and deletes the cart row. The two steps share
// one transaction; a failed clear leaves the cart intact.
func (s *cartService) RemoveCart(ctx context.Context, cartID uuid.UUID) error {
	return s.cartRepo.DeleteCart(ctx, cartID)
}

// Bill renders the cart's current contents into a bill for display.
func (s *cartService) Bill(ctx context.Context, cartID uuid.UUID) (pricing.Bill, error) {
	items, err := s.cartRepo.ListItems(ctx, cartID)
	if err != nil {
		return pricing.Bill{}, err
	}

	return pricing.ComputeBill(items, s.policy), nil
}

// ApplyPurchase commits the checkout stock changes: every item's product
// loses Quantity units of stock, atomically per cart. The cart is not
// cleared; that is a separate caller decision. Stock may go negative,
// which signals backorder rather than an error.
func (s *cartService) ApplyPurchase(ctx context.Context, cartID uuid.UUID) error {
	return s.cartRepo.ApplyPurchase(ctx, cartID)
}
