package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ashab-Asir/order-management/internal/domain/promotion"
)

const (
	activePromotionsSQL = `SELECT id, title, kind, COALESCE(value, 0), starts_at, ends_at, is_enabled
		FROM promotions
		WHERE is_enabled = TRUE AND starts_at <= $1 AND ends_at >= $1
		ORDER BY id`

	slabsByPromotionSQL = `SELECT id, promotion_id, min_weight_kg, max_weight_kg, discount_per_unit
		FROM promotion_slabs
		WHERE promotion_id = $1
		ORDER BY min_weight_kg ASC`
)

var _ promotion.Store = (*PromotionStore)(nil)

// PromotionStore implements promotion.Store backed by PostgreSQL.
type PromotionStore struct {
	pool *pgxpool.Pool
}

// NewPromotionStore returns a PromotionStore that uses the given pool.
func NewPromotionStore(pool *pgxpool.Pool) *PromotionStore {
	return &PromotionStore{pool: pool}
}

// Active returns promotions that are enabled and whose inclusive window
// covers now, ordered by ID.
func (s *PromotionStore) Active(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	rows, err := s.pool.Query(ctx, activePromotionsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing active promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// Slabs returns the weight bands of one promotion, ordered by ascending
// minimum weight as the slab resolver requires.
func (s *PromotionStore) Slabs(ctx context.Context, promotionID int64) ([]promotion.WeightSlab, error) {
	rows, err := s.pool.Query(ctx, slabsByPromotionSQL, promotionID)
	if err != nil {
		return nil, fmt.Errorf("listing slabs for promotion %d: %w", promotionID, err)
	}
	return pgx.CollectRows(rows, scanSlab)
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var p promotion.Promotion
	err := row.Scan(
		&p.ID, &p.Title, &p.Kind, &p.Value, &p.StartsAt, &p.EndsAt, &p.Enabled,
	)
	return p, err
}

func scanSlab(row pgx.CollectableRow) (promotion.WeightSlab, error) {
	var s promotion.WeightSlab
	err := row.Scan(
		&s.ID, &s.PromotionID, &s.MinWeightKg, &s.MaxWeightKg, &s.DiscountPerUnit,
	)
	return s, err
}
