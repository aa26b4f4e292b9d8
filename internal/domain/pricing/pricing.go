// Package pricing turns a cart into a priced order summary by applying every
// active promotion to every line. Promotions stack: each one contributes its
// full discount independently of the others.
package pricing

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Ashab-Asir/order-management/internal/domain/promotion"
)

// ErrEmptyCart is returned when pricing is requested for a cart with no lines.
var ErrEmptyCart = errors.New("cart has no lines")

// InvalidProductError indicates a cart line references a product that does
// not exist or is disabled.
type InvalidProductError struct {
	ProductID int64
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("product %d does not exist or is disabled", e.ProductID)
}

// InvalidQuantityError indicates a cart line has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// CartLine is one requested product and quantity pair.
type CartLine struct {
	ProductID int64
	Quantity  int
}

// PricedLine is a cart line after discount evaluation.
type PricedLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// Subtotal returns the pre-discount amount of the line.
func (l PricedLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AppliedPromotion aggregates one promotion's contribution across all lines.
// Only promotions that contributed a positive discount appear in a Summary,
// ordered by first contribution.
type AppliedPromotion struct {
	PromotionID int64
	Title       string
	Kind        promotion.Kind
	Discount    decimal.Decimal
}

// Summary is the engine's output: the full price breakdown of a cart at one
// evaluation instant. GrandTotal is always Subtotal minus TotalDiscount, and
// both totals are exact sums over Lines.
type Summary struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	GrandTotal    decimal.Decimal
	Lines         []PricedLine
	Promotions    []AppliedPromotion
}
