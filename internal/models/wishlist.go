package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wishlist : une seule liste d'envies par acheteur (index unique sur user_id)
type Wishlist struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID   `json:"user_id" bson:"user_id"`
	ProductIDs []primitive.ObjectID `json:"product_ids" bson:"product_ids"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updated_at"`
}

type WishlistView struct {
	UserID primitive.ObjectID `json:"user_id"`
	Items  []Product          `json:"items"`
}
