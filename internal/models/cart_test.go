package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCartLine(t *testing.T) {
	tests := []struct {
		name         string
		product      Product
		quantity     int
		wantSubtotal float64
		wantDiscount float64
	}{
		{
			"sans remise",
			Product{Price: 20},
			2, 40, 0,
		},
		{
			// Le sous-total reste au prix catalogue, la remise est à part
			"remise fixe affichée à part",
			Product{Price: 20, Discount: &Discount{Type: DiscountFixed, Value: 5}},
			2, 40, 10,
		},
		{
			"remise en pourcentage",
			Product{Price: 100, Discount: &Discount{Type: DiscountPercentage, Value: 10}},
			3, 300, 30,
		},
		{
			"quantité unitaire",
			Product{Price: 9.99},
			1, 9.99, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := BuildCartLine(tt.product, tt.quantity)
			assert.Equal(t, tt.quantity, line.Quantity)
			assert.InDelta(t, tt.wantSubtotal, line.Subtotal, 1e-9)
			assert.InDelta(t, tt.wantDiscount, line.Discount, 1e-9)
		})
	}
}

func TestCartViewTotal_SumsLineSubtotals(t *testing.T) {
	discounted := Product{Price: 20, Discount: &Discount{Type: DiscountFixed, Value: 5}}
	plain := Product{Price: 10}

	view := CartView{}
	for _, line := range []CartLine{
		BuildCartLine(discounted, 2),
		BuildCartLine(plain, 3),
	} {
		view.Items = append(view.Items, line)
		view.Total += line.Subtotal
	}

	require.Len(t, view.Items, 2)
	assert.InDelta(t, 70.0, view.Total, 1e-9)
}
