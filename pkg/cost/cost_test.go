package cost

import (
	"testing"

	"procurement/pkg/api"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func unit(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestDerive(t *testing.T) {
	catalog := []api.Category{
		{ID: "c1", Description: "Laptop", UnitCost: unit("1000")},
		{ID: "c2", Description: "Cable", UnitCost: unit("2.35")},
		{ID: "c3", Description: "Consulting"},
	}

	cases := []struct {
		name     string
		category string
		quantity int
		want     string
	}{
		{"laptop for new hires", "c1", 2, "2000"},
		{"fractional unit cost", "c2", 3, "7.05"},
		{"single unit", "c1", 1, "1000"},
		{"no unit cost", "c3", 5, "0"},
		{"unknown category", "missing", 4, "0"},
		{"empty selection", "", 1, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Derive(tc.category, tc.quantity, catalog)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestDeriveIsLinearInQuantity(t *testing.T) {
	catalog := []api.Category{{ID: "c1", UnitCost: unit("19.99")}}
	for q := 1; q <= 50; q++ {
		want := decimal.RequireFromString("19.99").Mul(decimal.NewFromInt(int64(q)))
		assert.True(t, Derive("c1", q, catalog).Equal(want), "quantity %d", q)
	}
}

func TestOfWithoutUnitCost(t *testing.T) {
	assert.True(t, Of(decimal.NullDecimal{}, 10).IsZero())
}
