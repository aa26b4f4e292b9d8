package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ashab-Asir/order-management/internal/domain/order"
	"github.com/Ashab-Asir/order-management/internal/domain/pricing"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, subtotal, total_discount, grand_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, discount_amount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getOrderSQL = `SELECT id, user_id, subtotal, total_discount, grand_total, created_at
		FROM orders WHERE id = $1`

	listOrdersForUserSQL = `SELECT id, user_id, subtotal, total_discount, grand_total, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT id, user_id, subtotal, total_discount, grand_total, created_at
		FROM orders ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT product_id, name, quantity, unit_price, discount_amount, line_total
		FROM order_items WHERE order_id = $1 ORDER BY id`
)

var _ order.Ledger = (*OrderLedger)(nil)

// OrderLedger implements order.Ledger backed by PostgreSQL.
type OrderLedger struct {
	pool *pgxpool.Pool
}

// NewOrderLedger returns an OrderLedger that uses the given pool.
func NewOrderLedger(pool *pgxpool.Pool) *OrderLedger {
	return &OrderLedger{pool: pool}
}

// Insert writes the order header and all line items in one transaction.
// Any failure rolls the whole write back; no partial order is ever visible.
func (l *OrderLedger) Insert(ctx context.Context, o order.Order, lines []pricing.PricedLine) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, o.Subtotal, o.TotalDiscount, o.GrandTotal, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(insertOrderItemSQL,
			o.ID, line.ProductID, line.Name, line.Quantity,
			line.UnitPrice, line.Discount, line.LineTotal,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting items for order %q: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// Get returns one order header, or order.ErrNotFound.
func (l *OrderLedger) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := l.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("querying order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("scanning order %q: %w", id, err)
	}
	return &o, nil
}

// ListForUser returns one user's orders, newest first.
func (l *OrderLedger) ListForUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := l.pool.Query(ctx, listOrdersForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order, newest first.
func (l *OrderLedger) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := l.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Items returns the persisted line items of one order in insertion order.
func (l *OrderLedger) Items(ctx context.Context, orderID string) ([]pricing.PricedLine, error) {
	rows, err := l.pool.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items for order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanOrderItem)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.TotalDiscount, &o.GrandTotal, &o.CreatedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (pricing.PricedLine, error) {
	var line pricing.PricedLine
	err := row.Scan(
		&line.ProductID, &line.Name, &line.Quantity,
		&line.UnitPrice, &line.Discount, &line.LineTotal,
	)
	return line, err
}
