package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hardshop/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access. A cart owns at
// most one item row per product; concurrent adds for the same
// (cart, product) pair serialize to a summed quantity, never a duplicate
// row or a lost update.
type CartRepository interface {
	CreateCart(ctx context.Context, cart *domain.Cart) error
	FindCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	ApplyPurchase(ctx context.Context, cartID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// CreateCart inserts a new empty cart.
func (r *cartRepository) CreateCart(ctx context.Context, cart *domain.Cart) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO carts (id, name) VALUES ($1, $2)`,
		cart.ID, cart.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	cart.Items = []domain.CartItem{}
	return nil
}

// FindCart retrieves a cart with its items populated. This is the existence
// check itself: an absent cart returns ErrCartNotFound.
func (r *cartRepository) FindCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM carts WHERE id = $1`, id).
		Scan(&cart.ID, &cart.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	items, err := r.listItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

// AddItem merges quantity into the cart's item row for the product, or
// inserts a new row if none exists. The upsert runs inside the transaction
// that asserted cart and product existence, so two concurrent adds for the
// same (cart, product) pair sum their quantities.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	item := &domain.CartItem{CartID: cartID, ProductID: productID}
	var product *domain.Product

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := assertCartExists(ctx, tx, cartID); err != nil {
			return err
		}

		query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
		p, err := scanProduct(tx.QueryRowContext(ctx, query, productID))
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrProductNotFound
			}
			return err
		}
		product = p

		return tx.QueryRowContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (cart_id, product_id)
			 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			 RETURNING quantity, added_at`,
			cartID, productID, quantity,
		).Scan(&item.Quantity, &item.AddedAt)
	})

	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	if err := hydrateDetails(ctx, r.db, []*domain.Product{product}); err != nil {
		return nil, err
	}
	item.Product = product

	return item, nil
}

// RemoveItem decrements the item's quantity, deleting the row entirely when
// quantity covers all of it. The row is locked for the read-modify-write.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := assertCartExists(ctx, tx, cartID); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}

		var current int
		err := tx.QueryRowContext(ctx,
			`SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2 FOR UPDATE`,
			cartID, productID,
		).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrCartItemNotFound
			}
			return err
		}

		if quantity >= current {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
				cartID, productID,
			)
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = quantity - $3 WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID, quantity,
		)
		return err
	})

	if err != nil {
		if isDomainErr(err) {
			return err
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// ListItems retrieves the cart's items in insertion order with their
// products populated.
func (r *cartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	if err := assertCartExists(ctx, r.db, cartID); err != nil {
		return nil, err
	}
	return r.listItems(ctx, r.db, cartID)
}

func (r *cartRepository) listItems(ctx context.Context, q querier, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := fmt.Sprintf(`
		SELECT ci.cart_id, ci.product_id, ci.quantity, ci.added_at, %s
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC, ci.product_id ASC
	`, prefixColumns("p", productColumns))

	rows, err := q.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	products := []*domain.Product{}
	for rows.Next() {
		item := domain.CartItem{}
		product := &domain.Product{}
		var category string
		err := rows.Scan(
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.AddedAt,
			&product.ID,
			&product.Name,
			&product.NormalizedName,
			&category,
			&product.Manufacturer,
			&product.Price,
			&product.Stock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		product.Category = domain.Category(category)
		item.Product = product
		items = append(items, item)
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	if err := hydrateDetails(ctx, q, products); err != nil {
		return nil, err
	}

	return items, nil
}

// ClearCart deletes all items of the cart. Clearing an empty cart is a
// no-op; the cart itself must exist.
func (r *cartRepository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if err := assertCartExists(ctx, r.db, cartID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// DeleteCart clears the cart and removes the cart row in one transaction.
// If the clear step fails the whole transaction rolls back and the cart
// remains intact.
func (r *cartRepository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := assertCartExists(ctx, tx, cartID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
		return err
	})

	if err != nil {
		if isDomainErr(err) {
			return err
		}
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

// ApplyPurchase decrements each referenced product's stock by the item's
// quantity, all in one transaction: either every line commits or none does.
// Rows update in product-id order so concurrent sweeps cannot deadlock. A
// product deleted since it was added to the cart aborts the whole sweep.
// Stock is allowed to go negative; a negative value signals backorder.
func (r *cartRepository) ApplyPurchase(ctx context.Context, cartID uuid.UUID) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := assertCartExists(ctx, tx, cartID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY product_id ASC`,
			cartID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		type line struct {
			productID uuid.UUID
			quantity  int
		}
		lines := []line{}
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.productID, &l.quantity); err != nil {
				return err
			}
			lines = append(lines, l)
		}
		if err = rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			result, err := tx.ExecContext(ctx,
				`UPDATE products SET stock = stock - $2 WHERE id = $1`,
				l.productID, l.quantity,
			)
			if err != nil {
				return err
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if rowsAffected == 0 {
				return ErrProductNotFound
			}
		}

		return nil
	})

	if err != nil {
		if isDomainErr(err) {
			return err
		}
		return fmt.Errorf("failed to apply purchase: %w", err)
	}

	return nil
}

func assertCartExists(ctx context.Context, q querier, cartID uuid.UUID) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, cartID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check cart existence: %w", err)
	}
	if !exists {
		return ErrCartNotFound
	}
	return nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}
