package promotion

import "github.com/shopspring/decimal"

// ResolveSlab picks the weight band covering totalWeightKg. Slabs must be
// ordered by ascending minimum weight; when bands overlap the lowest-starting
// one wins because the scan stops at the first match. Returns nil when no
// band covers the weight, which callers treat as zero discount.
func ResolveSlab(slabs []WeightSlab, totalWeightKg decimal.Decimal) *WeightSlab {
	for i := range slabs {
		s := &slabs[i]
		if totalWeightKg.LessThan(s.MinWeightKg) {
			continue
		}
		if s.MaxWeightKg != nil && totalWeightKg.GreaterThan(*s.MaxWeightKg) {
			continue
		}
		return s
	}
	return nil
}
