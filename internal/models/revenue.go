package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RevenueBucket : chiffre d'affaires agrégé par période calendaire
type RevenueBucket struct {
	Period  string  `json:"period" bson:"_id"`
	Revenue float64 `json:"revenue" bson:"revenue"`
	Orders  int     `json:"orders" bson:"orders"`
}

// SellerRevenue : chiffre d'affaires par vendeur (items de commande dépliés)
type SellerRevenue struct {
	SellerID  primitive.ObjectID `json:"seller_id" bson:"_id"`
	Revenue   float64            `json:"revenue" bson:"revenue"`
	ItemsSold int                `json:"items_sold" bson:"items_sold"`
}
