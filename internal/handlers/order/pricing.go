// Package order porte le pipeline de commande : résolution des lignes,
// calcul des prix, application du coupon, paiement et persistance.
package order

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vendora_back_end/internal/models"
)

// ResolvedLine : ligne de commande résolue avant persistance.
// CartQuantity trace la part de la quantité issue du panier, pour le
// nettoyage incrémental des lignes de panier après la commande.
type ResolvedLine struct {
	ProductID    primitive.ObjectID
	SellerID     primitive.ObjectID
	Name         string
	Quantity     int
	UnitPrice    float64
	UnitDiscount float64
	CartQuantity int
}

// MergeLines fusionne les lignes dupliquées sur le même produit : les
// quantités s'additionnent, le prix unitaire et la remise unitaire sont
// moyennés au prorata des quantités. L'ordre de première apparition est
// conservé.
func MergeLines(lines []ResolvedLine) []ResolvedLine {
	merged := make([]ResolvedLine, 0, len(lines))
	index := make(map[primitive.ObjectID]int, len(lines))

	for _, line := range lines {
		i, seen := index[line.ProductID]
		if !seen {
			index[line.ProductID] = len(merged)
			merged = append(merged, line)
			continue
		}

		existing := &merged[i]
		totalQty := existing.Quantity + line.Quantity
		if totalQty > 0 {
			existing.UnitPrice = (existing.UnitPrice*float64(existing.Quantity) +
				line.UnitPrice*float64(line.Quantity)) / float64(totalQty)
			existing.UnitDiscount = (existing.UnitDiscount*float64(existing.Quantity) +
				line.UnitDiscount*float64(line.Quantity)) / float64(totalQty)
		}
		existing.Quantity = totalQty
		existing.CartQuantity += line.CartQuantity
	}

	return merged
}

// Totals calcule le sous-total brut et la somme des remises produit
func Totals(lines []ResolvedLine) (totalBefore, productDiscount float64) {
	for _, line := range lines {
		totalBefore += line.UnitPrice * float64(line.Quantity)
		productDiscount += line.UnitDiscount * float64(line.Quantity)
	}
	return totalBefore, productDiscount
}

// FinalPrice applique les remises au sous-total, plancher à zéro
func FinalPrice(totalBefore, couponDiscount, productDiscount float64) float64 {
	final := totalBefore - couponDiscount - productDiscount
	if final < 0 {
		final = 0
	}
	return final
}

// OrderItems fige les lignes résolues en items de commande immuables
func OrderItems(lines []ResolvedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			SellerID:     line.SellerID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			UnitDiscount: line.UnitDiscount,
			FromCart:     line.CartQuantity > 0,
		})
	}
	return items
}

// couponClaimFilter restreint l'incrément du compteur d'utilisation aux
// coupons encore sous leur limite : le même document peut être lu sous la
// limite par deux checkouts concurrents, seule l'écriture conditionnelle
// tranche. usage_limit à 0 signifie illimité.
func couponClaimFilter(id primitive.ObjectID) bson.M {
	return bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"usage_limit": 0},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usage_count", "$usage_limit"}}},
		},
	}
}

// CouponEligible vérifie les restrictions de périmètre d'un coupon
// (vendeur, produits, catégories) contre les lignes résolues. Un coupon
// sans restriction est toujours éligible.
func CouponEligible(cp *models.Coupon, lines []ResolvedLine, categoryOf map[primitive.ObjectID]string) bool {
	if cp.SellerID != nil {
		match := false
		for _, line := range lines {
			if line.SellerID == *cp.SellerID {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	if cp.ProductSpecific {
		match := false
		for _, line := range lines {
			for _, pid := range cp.ProductIDs {
				if line.ProductID == pid {
					match = true
					break
				}
			}
		}
		if !match {
			return false
		}
	}

	if cp.CategorySpecific {
		match := false
		for _, line := range lines {
			cat := categoryOf[line.ProductID]
			for _, allowed := range cp.Categories {
				if cat == allowed {
					match = true
					break
				}
			}
		}
		if !match {
			return false
		}
	}

	return true
}
