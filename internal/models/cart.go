package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Cart : un seul panier par acheteur (index unique sur user_id)
type Cart struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items           []CartItem         `json:"items" bson:"items"`
	ShippingAddress string             `json:"shipping_address,omitempty" bson:"shipping_address,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// CartLine : ligne de panier enrichie avec le produit, pour l'affichage.
// Le sous-total est quantité × prix catalogue ; la remise produit est
// affichée à part et ne s'applique qu'au moment de la commande.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
}

// BuildCartLine fige une ligne de panier enrichie
func BuildCartLine(p Product, quantity int) CartLine {
	return CartLine{
		Product:  p,
		Quantity: quantity,
		Subtotal: p.Price * float64(quantity),
		Discount: p.UnitDiscount() * float64(quantity),
	}
}

type CartView struct {
	Items           []CartLine `json:"items"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
	Total           float64    `json:"total"`
}
