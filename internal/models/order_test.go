package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},

		{OrderPending, OrderShipped, false},
		{OrderPending, OrderDelivered, false},
		{OrderProcessing, OrderCancelled, false},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderShipped, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderProcessing, false},
		{OrderDelivered, OrderPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"→"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionOrder(tt.from, tt.to))
		})
	}
}

func TestCanTransitionRefund(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{RefundPending, RefundApproved, true},
		{RefundPending, RefundRejected, true},
		{RefundApproved, RefundRefunded, true},

		{RefundPending, RefundRefunded, false},
		{RefundRejected, RefundRefunded, false},
		{RefundRefunded, RefundApproved, false},
		{RefundRefunded, RefundPending, false},
		{RefundApproved, RefundRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"→"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionRefund(tt.from, tt.to))
		})
	}
}
