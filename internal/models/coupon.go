package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de coupon
const (
	CouponActive   = "active"
	CouponInactive = "inactive"
)

type Coupon struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code"` // unique, stocké en majuscules
	Type          string             `json:"type" bson:"type"` // "percentage" ou "fixed"
	Value         float64            `json:"value" bson:"value"`
	MinOrderValue float64            `json:"min_order_value" bson:"min_order_value"`
	UsageLimit    int                `json:"usage_limit" bson:"usage_limit"` // 0 = illimité
	UsageCount    int                `json:"usage_count" bson:"usage_count"`
	ExpiresAt     time.Time          `json:"expires_at" bson:"expires_at"`
	Status        string             `json:"status" bson:"status"`

	// SellerID nul → coupon émis par un admin, valable partout
	SellerID         *primitive.ObjectID  `json:"seller_id,omitempty" bson:"seller_id,omitempty"`
	ProductSpecific  bool                 `json:"product_specific" bson:"product_specific"`
	ProductIDs       []primitive.ObjectID `json:"product_ids,omitempty" bson:"product_ids,omitempty"`
	CategorySpecific bool                 `json:"category_specific" bson:"category_specific"`
	Categories       []string             `json:"categories,omitempty" bson:"categories,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// DiscountOn calcule la réduction apportée par le coupon sur un sous-total.
// La réduction est plafonnée au sous-total.
func (cp *Coupon) DiscountOn(subtotal float64) float64 {
	var discount float64
	switch cp.Type {
	case DiscountPercentage:
		discount = subtotal * cp.Value / 100
	case DiscountFixed:
		discount = cp.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// Usable vérifie les conditions d'application du coupon à un sous-total donné
func (cp *Coupon) Usable(subtotal float64, now time.Time) (bool, string) {
	if cp.Status != CouponActive {
		return false, "coupon inactif"
	}
	if now.After(cp.ExpiresAt) {
		return false, "coupon expiré"
	}
	if subtotal < cp.MinOrderValue {
		return false, "montant minimum de commande non atteint"
	}
	if cp.UsageLimit > 0 && cp.UsageCount >= cp.UsageLimit {
		return false, "limite d'utilisation atteinte"
	}
	return true, ""
}
