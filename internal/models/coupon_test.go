package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponDiscountOn(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal float64
		want     float64
	}{
		{"pourcentage", Coupon{Type: DiscountPercentage, Value: 10}, 60, 6},
		{"fixe", Coupon{Type: DiscountFixed, Value: 15}, 100, 15},
		{"fixe plafonné au sous-total", Coupon{Type: DiscountFixed, Value: 50}, 30, 30},
		{"pourcentage à 100", Coupon{Type: DiscountPercentage, Value: 100}, 80, 80},
		{"type inconnu", Coupon{Type: "autre", Value: 10}, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.coupon.DiscountOn(tt.subtotal), 1e-9)
		})
	}
}

func TestCouponUsable(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	base := Coupon{
		Type:      DiscountPercentage,
		Value:     10,
		Status:    CouponActive,
		ExpiresAt: future,
	}

	t.Run("valide", func(t *testing.T) {
		ok, reason := base.Usable(100, now)
		assert.True(t, ok)
		assert.Empty(t, reason)
	})

	t.Run("inactif", func(t *testing.T) {
		cp := base
		cp.Status = CouponInactive
		ok, _ := cp.Usable(100, now)
		assert.False(t, ok)
	})

	t.Run("expiré", func(t *testing.T) {
		cp := base
		cp.ExpiresAt = past
		ok, _ := cp.Usable(100, now)
		assert.False(t, ok)
	})

	t.Run("minimum de commande non atteint", func(t *testing.T) {
		cp := base
		cp.MinOrderValue = 50
		ok, _ := cp.Usable(49.99, now)
		assert.False(t, ok)

		ok, _ = cp.Usable(50, now)
		assert.True(t, ok)
	})

	t.Run("limite d'utilisation atteinte", func(t *testing.T) {
		cp := base
		cp.UsageLimit = 3
		cp.UsageCount = 3
		ok, _ := cp.Usable(100, now)
		assert.False(t, ok)
	})

	t.Run("limite zéro = illimité", func(t *testing.T) {
		cp := base
		cp.UsageCount = 1000
		ok, _ := cp.Usable(100, now)
		assert.True(t, ok)
	})
}
