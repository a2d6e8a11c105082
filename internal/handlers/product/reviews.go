package product

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
	"vendora_back_end/internal/validation"
)

// round2 arrondit à 2 décimales, l'arrondi exposé sur average_rating
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// recomputeRating recalcule la note moyenne (arrondie à 2 décimales) et le
// nombre d'avis d'un produit. Zéro avis remet les deux compteurs à 0.
func (h *ProductHandler) recomputeRating(ctx context.Context, productID primitive.ObjectID) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$product_id",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cursor, err := h.DB.Reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var average float64
	var count int
	if cursor.Next(ctx) {
		var result struct {
			Average float64 `bson:"average"`
			Count   int     `bson:"count"`
		}
		if err := cursor.Decode(&result); err != nil {
			return err
		}
		average = round2(result.Average)
		count = result.Count
	}

	_, err = h.DB.Products().UpdateByID(ctx, productID, bson.M{
		"$set": bson.M{
			"average_rating":    average,
			"number_of_reviews": count,
		},
	})
	if err == nil {
		h.Cache.Delete(ctx, cache.ProductKey(productID.Hex()))
	}
	return err
}

// CreateReview : un avis par utilisateur et par produit, note 1-5
func (h *ProductHandler) CreateReview(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	if errs := validation.ValidateReview(validation.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	}); len(errs) > 0 {
		apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
		return
	}

	userID, _ := primitive.ObjectIDFromHex(user.ID)
	now := time.Now()

	// Le nom affiché est figé au moment de la publication
	userName := user.Email
	var author models.User
	if err := h.DB.Users().FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&author); err == nil {
		userName = author.Name
	}

	review := models.Review{
		ProductID: p.ID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx := c.Request.Context()
	res, err := h.DB.Reviews().InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			apperr.Respond(c, apperr.Conflict("Vous avez déjà laissé un avis sur ce produit"))
			return
		}
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	if err := h.recomputeRating(ctx, p.ID); err != nil {
		log.Printf("⚠️ Erreur recalcul note produit: %v", err)
	}

	log.Printf("⭐ Avis %d/5 sur %s par %s", req.Rating, p.Name, user.Email)
	apperr.OK(c, http.StatusCreated, "Avis publié", review)
}

// UpdateReview : seul l'auteur modifie son avis
func (h *ProductHandler) UpdateReview(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant d'avis invalide"))
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}
	if errs := validation.ValidateReview(validation.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	}); len(errs) > 0 {
		apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
		return
	}

	ctx := c.Request.Context()
	var review models.Review
	if err := h.DB.Reviews().FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		apperr.Respond(c, apperr.NotFound("Avis introuvable"))
		return
	}
	if review.UserID.Hex() != user.ID {
		apperr.Respond(c, apperr.Forbidden("Cet avis ne vous appartient pas"))
		return
	}

	if _, err := h.DB.Reviews().UpdateByID(ctx, reviewID, bson.M{
		"$set": bson.M{"rating": req.Rating, "comment": req.Comment, "updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if err := h.recomputeRating(ctx, review.ProductID); err != nil {
		log.Printf("⚠️ Erreur recalcul note produit: %v", err)
	}

	apperr.OK(c, http.StatusOK, "Avis mis à jour", nil)
}

// DeleteReview : l'auteur ou un admin
func (h *ProductHandler) DeleteReview(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant d'avis invalide"))
		return
	}

	ctx := c.Request.Context()
	var review models.Review
	if err := h.DB.Reviews().FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review); err != nil {
		apperr.Respond(c, apperr.NotFound("Avis introuvable"))
		return
	}
	if review.UserID.Hex() != user.ID && user.Role != models.RoleAdmin {
		apperr.Respond(c, apperr.Forbidden("Cet avis ne vous appartient pas"))
		return
	}

	if _, err := h.DB.Reviews().DeleteOne(ctx, bson.M{"_id": reviewID}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if err := h.recomputeRating(ctx, review.ProductID); err != nil {
		log.Printf("⚠️ Erreur recalcul note produit: %v", err)
	}

	apperr.OK(c, http.StatusOK, "Avis supprimé", nil)
}

// ListReviews : avis d'un produit, paginés, plus récents d'abord
func (h *ProductHandler) ListReviews(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx := c.Request.Context()
	filter := bson.M{"product_id": productID}

	total, err := h.DB.Reviews().CountDocuments(ctx, filter)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.DB.Reviews().Find(ctx, filter, opts)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
