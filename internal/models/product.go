package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Types de remise produit
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Discount struct {
	Type  string  `json:"type" bson:"type"` // "percentage" ou "fixed"
	Value float64 `json:"value" bson:"value"`
}

// Question posée par un acheteur sur la fiche produit
type Question struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id"`
	UserID     primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Question   string              `json:"question" bson:"question"`
	Answer     string              `json:"answer,omitempty" bson:"answer,omitempty"`
	AnsweredBy *primitive.ObjectID `json:"answered_by,omitempty" bson:"answered_by,omitempty"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	AnsweredAt *time.Time          `json:"answered_at,omitempty" bson:"answered_at,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    string             `json:"category" bson:"category"`
	Stock       int                `json:"stock" bson:"stock"`
	Images      []string           `json:"images" bson:"images"`
	SellerID    primitive.ObjectID `json:"seller_id" bson:"seller_id"`
	Discount    *Discount          `json:"discount,omitempty" bson:"discount,omitempty"`

	AverageRating   float64 `json:"average_rating" bson:"average_rating"`
	NumberOfReviews int     `json:"number_of_reviews" bson:"number_of_reviews"`

	Questions []Question `json:"questions" bson:"questions"`

	// Soft delete : le produit disparaît des listings mais reste référencé
	// par les commandes passées
	IsDeleted bool      `json:"is_deleted" bson:"is_deleted"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// UnitDiscount retourne la remise par unité appliquée à ce produit.
// Une remise fixe ne dépasse jamais le prix unitaire.
func (p *Product) UnitDiscount() float64 {
	if p.Discount == nil || p.Discount.Value <= 0 {
		return 0
	}
	switch p.Discount.Type {
	case DiscountPercentage:
		return p.Price * p.Discount.Value / 100
	case DiscountFixed:
		if p.Discount.Value > p.Price {
			return p.Price
		}
		return p.Discount.Value
	}
	return 0
}
