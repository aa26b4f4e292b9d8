package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ashab-Asir/order-management/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT id, name, description, price, unit_weight_grams, is_enabled
		FROM products WHERE is_enabled = TRUE ORDER BY id`

	getProductByIDSQL = `SELECT id, name, description, price, unit_weight_grams, is_enabled
		FROM products WHERE id = $1`
)

var _ catalog.Store = (*ProductStore)(nil)

// ProductStore implements catalog.Store backed by PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore returns a ProductStore that uses the given pool.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// List returns all enabled products ordered by ID.
func (s *ProductStore) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier, disabled ones included.
// Returns catalog.ErrNotFound when no such product exists.
func (s *ProductStore) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := s.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.UnitWeightGrams, &p.Enabled,
	)
	return p, err
}
