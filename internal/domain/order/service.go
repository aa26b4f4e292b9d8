package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ashab-Asir/order-management/internal/domain/pricing"
)

// Service coordinates order preview and commit. Both paths run the same
// pricing engine against a fresh snapshot, so a preview shows exactly what a
// commit at the same instant would charge.
type Service struct {
	engine *pricing.Engine
	ledger Ledger
	now    func() time.Time
}

// NewService creates an order Service around the pricing engine and ledger.
func NewService(engine *pricing.Engine, ledger Ledger) *Service {
	return &Service{
		engine: engine,
		ledger: ledger,
		now:    time.Now,
	}
}

// Preview prices the cart without persisting anything. It fails with
// *pricing.InvalidProductError or *pricing.InvalidQuantityError on bad input.
func (s *Service) Preview(ctx context.Context, lines []pricing.CartLine) (*pricing.Summary, error) {
	return s.engine.Price(ctx, lines, s.now())
}

// Create prices the cart and persists the resulting order atomically. On any
// persistence failure the transaction is rolled back and a *PersistenceError
// is returned; the caller may retry the whole commit.
func (s *Service) Create(ctx context.Context, userID int64, lines []pricing.CartLine) (*Placed, error) {
	now := s.now()

	summary, err := s.engine.Price(ctx, lines, now)
	if err != nil {
		return nil, err
	}

	o := Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Subtotal:      summary.Subtotal,
		TotalDiscount: summary.TotalDiscount,
		GrandTotal:    summary.GrandTotal,
		CreatedAt:     now,
	}
	if err := s.ledger.Insert(ctx, o, summary.Lines); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return &Placed{Order: o, Summary: summary}, nil
}

// Get returns one order header with its persisted line items. It fails with
// ErrNotFound when the order does not exist.
func (s *Service) Get(ctx context.Context, id string) (*Order, []pricing.PricedLine, error) {
	o, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.ledger.Items(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, lines, nil
}

// ListForUser returns the caller's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Order, error) {
	return s.ledger.ListForUser(ctx, userID)
}

// ListAll returns every order, newest first. Callers must have already
// checked the admin role.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.ledger.ListAll(ctx)
}
