package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

func TestCanManage(t *testing.T) {
	owner := primitive.NewObjectID()
	p := &models.Product{SellerID: owner}

	tests := []struct {
		name string
		user middleware.AuthUser
		want bool
	}{
		{"vendeur propriétaire", middleware.AuthUser{ID: owner.Hex(), Role: models.RoleSeller}, true},
		{"autre vendeur", middleware.AuthUser{ID: primitive.NewObjectID().Hex(), Role: models.RoleSeller}, false},
		{"admin sur n'importe quel produit", middleware.AuthUser{ID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}, true},
		{"acheteur propriétaire d'aucun produit", middleware.AuthUser{ID: primitive.NewObjectID().Hex(), Role: models.RoleBuyer}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canManage(tt.user, p))
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"moyenne périodique", 14.0 / 3.0, 4.67}, // (5+5+4)/3
		{"troncature basse", 3.14159, 3.14},
		{"arrondi supérieur", 2.675000001, 2.68},
		{"déjà à 2 décimales", 4.25, 4.25},
		{"entier", 5, 5},
		{"zéro avis", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, round2(tt.in), 1e-9)
		})
	}
}
