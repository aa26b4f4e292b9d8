package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for ordering.
type Product struct {
	ID              int64
	Name            string
	Description     string
	Price           decimal.Decimal
	UnitWeightGrams int64
	Enabled         bool
}

// Store defines read operations for the product catalog.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}
