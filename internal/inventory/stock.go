package inventory

import "time"

// DefaultMinimumStockLevel applies to products created without a threshold
// and to rows that predate the column.
const DefaultMinimumStockLevel = 10

func IsLow(quantity, minimum int) bool { return quantity <= minimum }

// Transition is the low-stock flag before and after one mutation.
type Transition struct {
	Before bool
	After  bool
}

// EnteredLow reports the false->true edge. Staying low or recovering is not an event.
func (t Transition) EnteredLow() bool { return !t.Before && t.After }

// Recompute derives IsLowStock from the current fields and stamps LastUpdated.
// It must run on every mutation, before the product is persisted.
func Recompute(p *Product, now time.Time) Transition {
	before := p.IsLowStock
	p.IsLowStock = IsLow(p.Quantity, p.MinimumStockLevel)
	p.LastUpdated = now
	return Transition{Before: before, After: p.IsLowStock}
}
