package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de remboursement
const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
	RefundRefunded = "refunded"
)

type Refund struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderID     primitive.ObjectID  `json:"order_id" bson:"order_id"`
	UserID      primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Reason      string              `json:"reason" bson:"reason"`
	Status      string              `json:"status" bson:"status"`
	Amount      float64             `json:"amount" bson:"amount"`
	ProcessedBy *primitive.ObjectID `json:"processed_by,omitempty" bson:"processed_by,omitempty"`
	ProcessedAt *time.Time          `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
}

// refundTransitions : pending → {approved, rejected}, approved → refunded.
// refunded est terminal.
var refundTransitions = map[string][]string{
	RefundPending:  {RefundApproved, RefundRejected},
	RefundApproved: {RefundRefunded},
}

// CanTransitionRefund indique si le passage from → to est autorisé
func CanTransitionRefund(from, to string) bool {
	for _, next := range refundTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
