package service

import (
	"context"
	"fmt"
	"strings"

	"hardshop/internal/binder"
	"hardshop/internal/domain"
	"hardshop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput carries the structured fields of a new product. The
// category-specific fields come through the detail bag instead.
type CreateProductInput struct {
	Name         string
	Category     domain.Category
	Manufacturer string
	Price        decimal.Decimal
	Stock        int
}

// CatalogService defines the interface for catalog business logic.
type CatalogService interface {
	Search(ctx context.Context, category *domain.Category, keyword string) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput, details map[string]string) (*domain.Product, error)
	Remove(ctx context.Context, id uuid.UUID) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*domain.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	bindOptions binder.Options
}

// NewCatalogService creates a new instance of CatalogService. The bind
// options control how strictly attribute bags are matched against the
// category's schema.
func NewCatalogService(productRepo repository.ProductRepository, bindOptions binder.Options) CatalogService {
	return &catalogService{productRepo: productRepo, bindOptions: bindOptions}
}

// Search retrieves products matching an optional category and keyword.
func (s *catalogService) Search(ctx context.Context, category *domain.Category, keyword string) ([]*domain.Product, error) {
	products, err := s.productRepo.Search(ctx, category, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// Get retrieves a product by ID.
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Create builds the category's detail variant, binds the attribute bag onto
// it, rounds the price to 2 decimal places and persists base and subtype
// rows together. A coercion failure in the bag fails the whole create.
func (s *catalogService) Create(ctx context.Context, input CreateProductInput, details map[string]string) (*domain.Product, error) {
	if input.Price.IsNegative() {
		return nil, &domain.ValidationError{Field: "price", Message: "price must be 0 or greater"}
	}

	detail, err := domain.NewDetails(input.Category)
	if err != nil {
		return nil, err
	}

	if err := binder.Bind(detail, details, s.bindOptions); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:             uuid.New(),
		Name:           input.Name,
		NormalizedName: strings.ToLower(input.Name),
		Category:       input.Category,
		Manufacturer:   input.Manufacturer,
		Price:          input.Price.Round(2),
		Stock:          input.Stock,
		Details:        detail,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Remove deletes a product. Removing an absent product is a no-op.
func (s *catalogService) Remove(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// UpdatePrice sets a product's price, rejecting negative values.
func (s *catalogService) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*domain.Product, error) {
	if price.IsNegative() {
		return nil, &domain.ValidationError{Field: "price", Message: "price must be 0 or greater"}
	}

	if err := s.productRepo.UpdatePrice(ctx, id, price.Round(2)); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, id)
}

// UpdateStock sets a product's absolute stock level.
func (s *catalogService) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*domain.Product, error) {
	if err := s.productRepo.UpdateStock(ctx, id, stock); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, id)
}
