package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Ashab-Asir/order-management/internal/domain/pricing"
)

// ErrNotFound is returned when no order exists under the requested ID.
var ErrNotFound = errors.New("order not found")

// Order is the persisted header of a committed cart. It is created exactly
// once per successful commit and never mutated afterwards.
type Order struct {
	ID            string
	UserID        int64
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	GrandTotal    decimal.Decimal
	CreatedAt     time.Time
}

// Placed is the result of a successful commit: the persisted header plus the
// exact pricing the caller was charged.
type Placed struct {
	Order   Order
	Summary *pricing.Summary
}

// PersistenceError indicates the atomic order write did not complete. The
// transaction has been rolled back; the caller may retry the whole commit.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order not persisted: %s", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Ledger durably persists orders. Insert must write the header and all line
// items in a single transaction: on error nothing is visible afterwards.
type Ledger interface {
	Insert(ctx context.Context, o Order, lines []pricing.PricedLine) error
	// Get returns one order header, or ErrNotFound.
	Get(ctx context.Context, id string) (*Order, error)
	// Items returns the persisted line items of one order in insertion order.
	Items(ctx context.Context, orderID string) ([]pricing.PricedLine, error)
	ListForUser(ctx context.Context, userID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}
