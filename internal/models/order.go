package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de commande
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Méthodes et statuts de paiement
const (
	PaymentCOD    = "cod"
	PaymentStripe = "stripe"
	PaymentPayPal = "paypal"

	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// OrderItem est un instantané figé au moment de la commande : les
// changements ultérieurs de prix ou de remise produit ne le modifient pas.
type OrderItem struct {
	ProductID    primitive.ObjectID `json:"product_id" bson:"product_id"`
	SellerID     primitive.ObjectID `json:"seller_id" bson:"seller_id"`
	Name         string             `json:"name" bson:"name"`
	Quantity     int                `json:"quantity" bson:"quantity"`
	UnitPrice    float64            `json:"unit_price" bson:"unit_price"`
	UnitDiscount float64            `json:"unit_discount" bson:"unit_discount"`
	FromCart     bool               `json:"-" bson:"from_cart"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items           []OrderItem        `json:"items" bson:"items"`
	ShippingAddress string             `json:"shipping_address" bson:"shipping_address"`

	TotalBeforeDiscount float64 `json:"total_before_discount" bson:"total_before_discount"`
	CouponCode          string  `json:"coupon_code,omitempty" bson:"coupon_code,omitempty"`
	CouponDiscount      float64 `json:"coupon_discount" bson:"coupon_discount"`
	ProductDiscount     float64 `json:"product_discount" bson:"product_discount"`
	FinalPrice          float64 `json:"final_price" bson:"final_price"`

	PaymentMethod string `json:"payment_method" bson:"payment_method"`
	PaymentStatus string `json:"payment_status" bson:"payment_status"`
	PaymentRef    string `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`

	Status       string     `json:"status" bson:"status"`
	RefundStatus string     `json:"refund_status,omitempty" bson:"refund_status,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}

// orderTransitions : pending → {processing, cancelled} → shipped → delivered.
// cancelled est terminal et atteignable uniquement depuis pending.
var orderTransitions = map[string][]string{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped},
	OrderShipped:    {OrderDelivered},
}

// CanTransitionOrder indique si le passage from → to est autorisé
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
