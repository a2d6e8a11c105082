package order

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

// Formats $dateToString par granularité. Le bucket weekly est aligné sur
// les semaines ISO (année-semaine).
var bucketFormats = map[string]string{
	"daily":   "%Y-%m-%d",
	"weekly":  "%G-W%V",
	"monthly": "%Y-%m",
	"yearly":  "%Y",
}

// paidFilter : seules les commandes encaissées comptent dans le CA
func paidFilter() bson.M {
	return bson.M{"payment_status": models.PaymentPaid}
}

func (h *OrderHandler) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := h.DB.Orders().Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// TotalRevenue : chiffre d'affaires global et nombre de commandes payées
func (h *OrderHandler) TotalRevenue(c *gin.Context) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: paidFilter()}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$final_price"},
			"orders":  bson.M{"$sum": 1},
		}}},
	}

	var results []struct {
		Revenue float64 `bson:"revenue"`
		Orders  int     `bson:"orders"`
	}
	if err := h.aggregate(c.Request.Context(), pipeline, &results); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	var revenue float64
	var orders int
	if len(results) > 0 {
		revenue = results[0].Revenue
		orders = results[0].Orders
	}

	apperr.OK(c, http.StatusOK, "", gin.H{"revenue": revenue, "orders": orders})
}

// BucketRevenue : CA par période calendaire (daily, weekly, monthly, yearly)
func (h *OrderHandler) BucketRevenue(c *gin.Context) {
	granularity := c.Param("granularity")
	format, ok := bucketFormats[granularity]
	if !ok {
		apperr.Respond(c, apperr.BadRequest("Granularité inconnue (daily, weekly, monthly, yearly)"))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: paidFilter()}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": format,
				"date":   "$created_at",
			}},
			"revenue": bson.M{"$sum": "$final_price"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	buckets := []models.RevenueBucket{}
	if err := h.aggregate(c.Request.Context(), pipeline, &buckets); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"granularity": granularity,
		"buckets":     buckets,
	})
}

// RangeRevenue : CA sur une plage de dates arbitraire
func (h *OrderHandler) RangeRevenue(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("start invalide (format YYYY-MM-DD)"))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("end invalide (format YYYY-MM-DD)"))
		return
	}
	if end.Before(start) {
		apperr.Respond(c, apperr.BadRequest("end antérieur à start"))
		return
	}

	match := paidFilter()
	// Borne de fin inclusive sur la journée
	match["created_at"] = bson.M{"$gte": start, "$lt": end.AddDate(0, 0, 1)}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$final_price"},
			"orders":  bson.M{"$sum": 1},
		}}},
	}

	var results []struct {
		Revenue float64 `bson:"revenue"`
		Orders  int     `bson:"orders"`
	}
	if err := h.aggregate(c.Request.Context(), pipeline, &results); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	var revenue float64
	var orders int
	if len(results) > 0 {
		revenue = results[0].Revenue
		orders = results[0].Orders
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"start":   c.Query("start"),
		"end":     c.Query("end"),
		"revenue": revenue,
		"orders":  orders,
	})
}

// sellerPipeline déplie les items et agrège le CA net par vendeur.
// Le CA d'un item = quantité × (prix unitaire − remise unitaire).
func sellerPipeline(extraMatch bson.M) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: paidFilter()}},
		{{Key: "$unwind", Value: "$items"}},
	}
	if len(extraMatch) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: extraMatch}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id": "$items.seller_id",
		"revenue": bson.M{"$sum": bson.M{"$multiply": bson.A{
			"$items.quantity",
			bson.M{"$subtract": bson.A{"$items.unit_price", "$items.unit_discount"}},
		}}},
		"items_sold": bson.M{"$sum": "$items.quantity"},
	}}})
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.M{"revenue": -1}}})
	return pipeline
}

// SellerBreakdown : CA ventilé par vendeur (admin)
func (h *OrderHandler) SellerBreakdown(c *gin.Context) {
	results := []models.SellerRevenue{}
	if err := h.aggregate(c.Request.Context(), sellerPipeline(nil), &results); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	apperr.OK(c, http.StatusOK, "", results)
}

// MyRevenue : CA du vendeur connecté, limité à ses propres items
func (h *OrderHandler) MyRevenue(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	sellerID, _ := primitive.ObjectIDFromHex(user.ID)

	results := []models.SellerRevenue{}
	pipeline := sellerPipeline(bson.M{"items.seller_id": sellerID})
	if err := h.aggregate(c.Request.Context(), pipeline, &results); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	var revenue float64
	var itemsSold int
	if len(results) > 0 {
		revenue = results[0].Revenue
		itemsSold = results[0].ItemsSold
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"revenue":    revenue,
		"items_sold": itemsSold,
	})
}

// DashboardStats : compteurs globaux pour le tableau de bord admin
func (h *OrderHandler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.DB.Users().CountDocuments(ctx, bson.M{})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	products, err := h.DB.Products().CountDocuments(ctx, bson.M{"is_deleted": false})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	orders, err := h.DB.Orders().CountDocuments(ctx, bson.M{})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	pendingRefunds, err := h.DB.Refunds().CountDocuments(ctx, bson.M{"status": models.RefundPending})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: paidFilter()}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$final_price"},
		}}},
	}
	var rev []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := h.aggregate(ctx, pipeline, &rev); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	var revenue float64
	if len(rev) > 0 {
		revenue = rev[0].Revenue
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"users":           users,
		"products":        products,
		"orders":          orders,
		"pending_refunds": pendingRefunds,
		"revenue":         revenue,
	})
}
