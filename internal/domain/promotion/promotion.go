package promotion

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the supported promotion discount strategies.
type Kind string

const (
	// KindPercentage discounts a percentage of the line subtotal.
	KindPercentage Kind = "PERCENTAGE"
	// KindFixed discounts a flat amount per ordered unit.
	KindFixed Kind = "FIXED"
	// KindWeighted discounts per unit based on the weight band the line falls into.
	KindWeighted Kind = "WEIGHTED"
)

// Promotion defines a time-windowed discount rule. Value carries the
// percentage or per-unit amount for PERCENTAGE and FIXED promotions and is
// ignored for WEIGHTED ones, where the bands carry the amounts instead.
type Promotion struct {
	ID       int64
	Title    string
	Kind     Kind
	Value    decimal.Decimal
	StartsAt time.Time
	EndsAt   time.Time
	Enabled  bool
}

// ActiveAt reports whether the promotion applies at the given instant.
// The window is inclusive on both ends.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.Enabled {
		return false
	}
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// WeightSlab is one weight band of a WEIGHTED promotion. MaxWeightKg is nil
// for the open-ended top band.
type WeightSlab struct {
	ID              int64
	PromotionID     int64
	MinWeightKg     decimal.Decimal
	MaxWeightKg     *decimal.Decimal
	DiscountPerUnit decimal.Decimal
}

// Store defines read operations for promotions and their weight bands.
type Store interface {
	// Active returns promotions that are enabled and whose window covers now.
	Active(ctx context.Context, now time.Time) ([]Promotion, error)
	// Slabs returns the weight bands of one promotion, ordered by ascending
	// minimum weight.
	Slabs(ctx context.Context, promotionID int64) ([]WeightSlab, error)
}
