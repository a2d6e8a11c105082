package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductUnitDiscount(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    float64
	}{
		{"sans remise", Product{Price: 20}, 0},
		{"pourcentage", Product{Price: 20, Discount: &Discount{Type: DiscountPercentage, Value: 10}}, 2},
		{"fixe", Product{Price: 20, Discount: &Discount{Type: DiscountFixed, Value: 5}}, 5},
		{"fixe plafonné au prix", Product{Price: 20, Discount: &Discount{Type: DiscountFixed, Value: 30}}, 20},
		{"valeur nulle", Product{Price: 20, Discount: &Discount{Type: DiscountFixed, Value: 0}}, 0},
		{"type inconnu", Product{Price: 20, Discount: &Discount{Type: "autre", Value: 5}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.product.UnitDiscount(), 1e-9)
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleSeller))
	assert.True(t, ValidRole(RoleBuyer))
	assert.False(t, ValidRole("superadmin"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("Buyer"))
}
