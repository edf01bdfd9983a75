package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hardshop/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

const productColumns = "id, name, normalized_name, category, manufacturer, price, stock"

// ProductRepository defines the interface for catalog data access. Products
// are stored table-per-type: a base row plus one subtype row per category,
// linked 1:1 by the same key.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Search(ctx context.Context, category *domain.Category, keyword string) ([]*domain.Product, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts the base product row and its subtype row in a single
// transaction, so the category/subtype pairing can never be half-written.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	table, ok := detailTables[product.Category]
	if !ok {
		return &domain.ValidationError{Field: "category", Message: "unknown category: " + string(product.Category)}
	}
	if product.Details == nil || product.Details.ProductCategory() != product.Category {
		return &domain.ValidationError{Field: "details", Message: "details do not match category " + string(product.Category)}
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, normalized_name, category, manufacturer, price, stock)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			product.ID,
			product.Name,
			product.NormalizedName,
			product.Category.String(),
			product.Manufacturer,
			product.Price,
			product.Stock,
		)
		if err != nil {
			return err
		}

		return table.insert(ctx, tx, product.ID, product.Details)
	})

	if err != nil {
		if isDomainErr(err) {
			return err
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Delete removes a product and its subtype row. Deleting an absent product
// is a no-op, not an error; the subtype row goes with the base row via
// ON DELETE CASCADE.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// FindByID retrieves a product with its subtype fields populated.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := hydrateDetails(ctx, r.db, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// Search retrieves products filtered by an optional category and a keyword.
// The keyword is lowered at query time and matched as an ordinal substring
// of normalized_name; an empty keyword matches everything.
func (r *productRepository) Search(ctx context.Context, category *domain.Category, keyword string) ([]*domain.Product, error) {
	args := []interface{}{strings.ToLower(keyword)}
	where := "position($1 in normalized_name) > 0"
	if category != nil {
		where += " AND category = $2"
		args = append(args, category.String())
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY name ASC`, productColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := hydrateDetails(ctx, r.db, products); err != nil {
		return nil, err
	}

	return products, nil
}

// UpdatePrice sets a product's price.
func (r *productRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return r.updateColumn(ctx, `UPDATE products SET price = $2 WHERE id = $1`, id, price)
}

// UpdateStock sets a product's absolute stock level.
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.updateColumn(ctx, `UPDATE products SET stock = $2 WHERE id = $1`, id, stock)
}

func (r *productRepository) updateColumn(ctx context.Context, query string, id uuid.UUID, value interface{}) error {
	result, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var category string
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.NormalizedName,
		&category,
		&product.Manufacturer,
		&product.Price,
		&product.Stock,
	)
	if err != nil {
		return nil, err
	}
	product.Category = domain.Category(category)
	return product, nil
}

func isDomainErr(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrCartItemNotFound)
}
