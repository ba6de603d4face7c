// Package cost derives the monetary cost of a purchase request from its
// category and quantity.
package cost

import (
	"procurement/pkg/api"

	"github.com/shopspring/decimal"
)

// Derive looks categoryID up in the catalog snapshot and returns
// unitCost * quantity. An unknown category or one without a unit cost yields zero.
func Derive(categoryID string, quantity int, categories []api.Category) decimal.Decimal {
	for _, c := range categories {
		if c.ID == categoryID {
			return Of(c.UnitCost, quantity)
		}
	}
	return decimal.Zero
}

// Of multiplies an optional unit cost by quantity.
func Of(unitCost decimal.NullDecimal, quantity int) decimal.Decimal {
	if !unitCost.Valid {
		return decimal.Zero
	}
	return unitCost.Decimal.Mul(decimal.NewFromInt(int64(quantity)))
}
