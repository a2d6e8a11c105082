package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review : un seul avis par utilisateur et par produit
// (index unique product_id + user_id)
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	UserName  string             `json:"user_name" bson:"user_name"`
	Rating    int                `json:"rating" bson:"rating"` // 1-5
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
