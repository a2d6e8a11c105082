package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vendora_back_end/internal/models"
)

func TestMergeLines_NoDuplicates(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	lines := []ResolvedLine{
		{ProductID: a, Quantity: 2, UnitPrice: 10},
		{ProductID: b, Quantity: 1, UnitPrice: 5},
	}

	merged := MergeLines(lines)
	require.Len(t, merged, 2)
	assert.Equal(t, a, merged[0].ProductID)
	assert.Equal(t, b, merged[1].ProductID)
}

func TestMergeLines_WeightedAverage(t *testing.T) {
	p := primitive.NewObjectID()

	// 2 unités du panier à 10€ (remise 1€) + 3 unités directes à 20€
	lines := []ResolvedLine{
		{ProductID: p, Quantity: 2, UnitPrice: 10, UnitDiscount: 1, CartQuantity: 2},
		{ProductID: p, Quantity: 3, UnitPrice: 20, UnitDiscount: 0},
	}

	merged := MergeLines(lines)
	require.Len(t, merged, 1)

	assert.Equal(t, 5, merged[0].Quantity)
	assert.InDelta(t, 16.0, merged[0].UnitPrice, 1e-9)   // (2*10 + 3*20) / 5
	assert.InDelta(t, 0.4, merged[0].UnitDiscount, 1e-9) // (2*1 + 3*0) / 5
	assert.Equal(t, 2, merged[0].CartQuantity)
}

func TestMergeLines_PreservesFirstAppearanceOrder(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	lines := []ResolvedLine{
		{ProductID: a, Quantity: 1, UnitPrice: 10},
		{ProductID: b, Quantity: 1, UnitPrice: 20},
		{ProductID: a, Quantity: 1, UnitPrice: 10},
	}

	merged := MergeLines(lines)
	require.Len(t, merged, 2)
	assert.Equal(t, a, merged[0].ProductID)
	assert.Equal(t, 2, merged[0].Quantity)
}

func TestTotals(t *testing.T) {
	lines := []ResolvedLine{
		{Quantity: 2, UnitPrice: 10, UnitDiscount: 1},
		{Quantity: 3, UnitPrice: 20, UnitDiscount: 0.5},
	}

	totalBefore, productDiscount := Totals(lines)
	assert.InDelta(t, 80.0, totalBefore, 1e-9)
	assert.InDelta(t, 3.5, productDiscount, 1e-9)
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		name            string
		totalBefore     float64
		couponDiscount  float64
		productDiscount float64
		want            float64
	}{
		{"sans remise", 100, 0, 0, 100},
		{"coupon seul", 60, 6, 0, 54},
		{"remises cumulées", 100, 10, 15, 75},
		{"plancher à zéro", 10, 20, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalPrice(tt.totalBefore, tt.couponDiscount, tt.productDiscount)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// Scénario complet : 3 × 20€, coupon 10% avec minimum de commande 50€
func TestPricing_PercentCouponScenario(t *testing.T) {
	lines := []ResolvedLine{{Quantity: 3, UnitPrice: 20}}

	totalBefore, productDiscount := Totals(lines)
	require.InDelta(t, 60.0, totalBefore, 1e-9)
	require.Zero(t, productDiscount)

	coupon := models.Coupon{
		Code:          "SAVE10",
		Type:          models.DiscountPercentage,
		Value:         10,
		MinOrderValue: 50,
		Status:        models.CouponActive,
		ExpiresAt:     time.Now().Add(time.Hour),
	}

	usable, reason := coupon.Usable(totalBefore, time.Now())
	require.True(t, usable, reason)

	couponDiscount := coupon.DiscountOn(totalBefore)
	assert.InDelta(t, 6.0, couponDiscount, 1e-9)
	assert.InDelta(t, 54.0, FinalPrice(totalBefore, couponDiscount, productDiscount), 1e-9)
}

// Scénario remise produit fixe : 2 × 20€ avec remise fixe de 5€ par unité
func TestPricing_FixedProductDiscountScenario(t *testing.T) {
	p := models.Product{
		Price:    20,
		Discount: &models.Discount{Type: models.DiscountFixed, Value: 5},
	}

	lines := []ResolvedLine{{Quantity: 2, UnitPrice: p.Price, UnitDiscount: p.UnitDiscount()}}
	totalBefore, productDiscount := Totals(lines)

	assert.InDelta(t, 40.0, totalBefore, 1e-9)
	assert.InDelta(t, 10.0, productDiscount, 1e-9)
	assert.InDelta(t, 30.0, FinalPrice(totalBefore, 0, productDiscount), 1e-9)
}

func TestOrderItems_Snapshot(t *testing.T) {
	p := primitive.NewObjectID()
	s := primitive.NewObjectID()

	items := OrderItems([]ResolvedLine{
		{ProductID: p, SellerID: s, Name: "Clavier", Quantity: 2, UnitPrice: 50, UnitDiscount: 5, CartQuantity: 2},
		{ProductID: primitive.NewObjectID(), Quantity: 1, UnitPrice: 10},
	})

	require.Len(t, items, 2)
	assert.True(t, items[0].FromCart)
	assert.False(t, items[1].FromCart)
	assert.Equal(t, "Clavier", items[0].Name)
	assert.InDelta(t, 50.0, items[0].UnitPrice, 1e-9)
}

func TestCouponClaimFilter(t *testing.T) {
	id := primitive.NewObjectID()
	filter := couponClaimFilter(id)

	assert.Equal(t, id, filter["_id"])

	// La limite est revérifiée à l'écriture : un coupon illimité passe
	// toujours, un coupon limité ne matche que sous sa limite
	branches, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, branches, 2)

	assert.Equal(t, bson.M{"usage_limit": 0}, branches[0])
	assert.Equal(t, bson.M{
		"$expr": bson.M{"$lt": bson.A{"$usage_count", "$usage_limit"}},
	}, branches[1])
}

func TestCouponEligible(t *testing.T) {
	seller := primitive.NewObjectID()
	otherSeller := primitive.NewObjectID()
	prod := primitive.NewObjectID()
	otherProd := primitive.NewObjectID()

	lines := []ResolvedLine{{ProductID: prod, SellerID: seller}}
	categories := map[primitive.ObjectID]string{prod: "informatique"}

	tests := []struct {
		name   string
		coupon models.Coupon
		want   bool
	}{
		{"sans restriction", models.Coupon{}, true},
		{"vendeur présent", models.Coupon{SellerID: &seller}, true},
		{"vendeur absent", models.Coupon{SellerID: &otherSeller}, false},
		{"produit couvert", models.Coupon{ProductSpecific: true, ProductIDs: []primitive.ObjectID{prod}}, true},
		{"produit hors liste", models.Coupon{ProductSpecific: true, ProductIDs: []primitive.ObjectID{otherProd}}, false},
		{"catégorie couverte", models.Coupon{CategorySpecific: true, Categories: []string{"informatique"}}, true},
		{"catégorie hors liste", models.Coupon{CategorySpecific: true, Categories: []string{"jardin"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CouponEligible(&tt.coupon, lines, categories))
		})
	}
}
