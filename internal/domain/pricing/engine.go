package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Ashab-Asir/order-management/internal/domain/catalog"
	"github.com/Ashab-Asir/order-management/internal/domain/promotion"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Engine computes a Summary for a cart against the catalog and the promotions
// active at an explicit instant. It is read-only and safe for concurrent use.
type Engine struct {
	catalog catalog.Store
	promos  promotion.Store

	// ClampDiscountToSubtotal caps each line's stacked discount at the line's
	// pre-discount subtotal. Off by default: stacked promotions may push a
	// line total negative, matching the historical behaviour.
	ClampDiscountToSubtotal bool
}

// NewEngine creates an Engine reading from the given stores.
func NewEngine(catalog catalog.Store, promos promotion.Store) *Engine {
	return &Engine{catalog: catalog, promos: promos}
}

// Price evaluates the cart lines in caller order against the promotions
// active at now and returns the full breakdown. Quantities are validated
// before any store access; the first invalid product fails the whole cart.
func (e *Engine) Price(ctx context.Context, lines []CartLine, now time.Time) (*Summary, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
	}

	promos, err := e.promos.Active(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "load active promotions")
	}
	// The store already filters by window, but now is the caller's instant,
	// so re-check before any money math depends on it.
	active := promos[:0:0]
	for _, pr := range promos {
		if pr.ActiveAt(now) {
			active = append(active, pr)
		}
	}

	slabs, err := e.fetchSlabs(ctx, active)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		Lines:         make([]PricedLine, 0, len(lines)),
	}
	appliedIdx := make(map[int64]int)

	for _, line := range lines {
		p, err := e.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &InvalidProductError{ProductID: line.ProductID}
			}
			return nil, errors.Wrapf(err, "load product %d", line.ProductID)
		}
		if !p.Enabled {
			return nil, &InvalidProductError{ProductID: line.ProductID}
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		lineSub := p.Price.Mul(qty)

		contribs, err := evaluateLine(*p, line.Quantity, active, slabs)
		if err != nil {
			return nil, err
		}

		lineDiscount := decimal.Zero
		for _, c := range contribs {
			amount := c.amount
			if e.ClampDiscountToSubtotal {
				if headroom := lineSub.Sub(lineDiscount); amount.GreaterThan(headroom) {
					amount = headroom
				}
				if !amount.IsPositive() {
					continue
				}
			}
			lineDiscount = lineDiscount.Add(amount)

			idx, seen := appliedIdx[c.promo.ID]
			if !seen {
				idx = len(summary.Promotions)
				appliedIdx[c.promo.ID] = idx
				summary.Promotions = append(summary.Promotions, AppliedPromotion{
					PromotionID: c.promo.ID,
					Title:       c.promo.Title,
					Kind:        c.promo.Kind,
					Discount:    decimal.Zero,
				})
			}
			summary.Promotions[idx].Discount = summary.Promotions[idx].Discount.Add(amount)
		}

		summary.Subtotal = summary.Subtotal.Add(lineSub)
		summary.TotalDiscount = summary.TotalDiscount.Add(lineDiscount)
		summary.Lines = append(summary.Lines, PricedLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			Discount:  lineDiscount,
			LineTotal: lineSub.Sub(lineDiscount),
		})
	}

	summary.GrandTotal = summary.Subtotal.Sub(summary.TotalDiscount)
	return summary, nil
}

// fetchSlabs loads the weight bands of every WEIGHTED promotion up front so
// the line loop stays free of store reads for promotions.
func (e *Engine) fetchSlabs(ctx context.Context, promos []promotion.Promotion) (map[int64][]promotion.WeightSlab, error) {
	slabs := make(map[int64][]promotion.WeightSlab)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, pr := range promos {
		if pr.Kind != promotion.KindWeighted {
			continue
		}
		g.Go(func() error {
			s, err := e.promos.Slabs(ctx, pr.ID)
			if err != nil {
				return errors.Wrapf(err, "load slabs for promotion %d", pr.ID)
			}
			mu.Lock()
			slabs[pr.ID] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slabs, nil
}

// contribution is one promotion's raw discount for a single line.
type contribution struct {
	promo  promotion.Promotion
	amount decimal.Decimal
}

// evaluateLine computes each active promotion's discount for one resolved
// line. Promotions stack, so every contribution is independent of the others;
// non-positive contributions are dropped. Order follows the promotions slice.
func evaluateLine(p catalog.Product, quantity int, promos []promotion.Promotion, slabs map[int64][]promotion.WeightSlab) ([]contribution, error) {
	qty := decimal.NewFromInt(int64(quantity))
	lineSub := p.Price.Mul(qty)
	totalWeightKg := decimal.NewFromInt(p.UnitWeightGrams).Mul(qty).Div(thousand)

	var out []contribution
	for _, pr := range promos {
		amount, err := lineContribution(pr, lineSub, qty, totalWeightKg, slabs[pr.ID])
		if err != nil {
			return nil, err
		}
		if amount.IsPositive() {
			out = append(out, contribution{promo: pr, amount: amount})
		}
	}
	return out, nil
}

// lineContribution computes a single promotion's discount for one line.
// The switch is exhaustive over Kind; a new kind must be handled here.
func lineContribution(pr promotion.Promotion, lineSub, qty, totalWeightKg decimal.Decimal, slabs []promotion.WeightSlab) (decimal.Decimal, error) {
	switch pr.Kind {
	case promotion.KindPercentage:
		return lineSub.Mul(pr.Value).Div(hundred).Round(2), nil
	case promotion.KindFixed:
		return pr.Value.Mul(qty), nil
	case promotion.KindWeighted:
		slab := promotion.ResolveSlab(slabs, totalWeightKg)
		if slab == nil {
			return decimal.Zero, nil
		}
		return slab.DiscountPerUnit.Mul(qty), nil
	default:
		return decimal.Zero, errors.Errorf("unsupported promotion kind: %q", pr.Kind)
	}
}
