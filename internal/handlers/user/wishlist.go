package user

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/database"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

type WishlistHandler struct {
	DB    *database.DB
	Cache *cache.Cache
}

// AddToWishlist ajoute un produit à la liste d'envies (sans doublon)
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
		return
	}

	ctx := c.Request.Context()
	count, err := h.DB.Products().CountDocuments(ctx, bson.M{"_id": productID, "is_deleted": false})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if count == 0 {
		apperr.Respond(c, apperr.NotFound("Produit introuvable"))
		return
	}

	userID, _ := primitive.ObjectIDFromHex(user.ID)

	// $addToSet évite les doublons, upsert crée la liste au premier ajout
	_, err = h.DB.Wishlists().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$addToSet": bson.M{"product_ids": productID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.WishlistKey(user.ID))
	apperr.OK(c, http.StatusOK, "Produit ajouté à la wishlist", nil)
}

// GetWishlist : liste d'envies enrichie des fiches produits
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)
	ctx := c.Request.Context()

	var wl models.Wishlist
	err := h.DB.Wishlists().FindOne(ctx, bson.M{"user_id": userID}).Decode(&wl)
	if err == mongo.ErrNoDocuments {
		apperr.OK(c, http.StatusOK, "", models.WishlistView{UserID: userID, Items: []models.Product{}})
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	view := models.WishlistView{UserID: userID, Items: []models.Product{}}
	if len(wl.ProductIDs) > 0 {
		cursor, err := h.DB.Products().Find(ctx, bson.M{
			"_id":        bson.M{"$in": wl.ProductIDs},
			"is_deleted": false,
		})
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &view.Items); err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
	}

	apperr.OK(c, http.StatusOK, "", view)
}

// RemoveFromWishlist retire un produit de la liste
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	productID, err := primitive.ObjectIDFromHex(c.Param("product_id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
		return
	}

	ctx := c.Request.Context()
	res, err := h.DB.Wishlists().UpdateOne(ctx,
		bson.M{"user_id": userID, "product_ids": productID},
		bson.M{
			"$pull": bson.M{"product_ids": productID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Produit absent de la wishlist"))
		return
	}

	h.Cache.Delete(ctx, cache.WishlistKey(user.ID))
	apperr.OK(c, http.StatusOK, "Produit retiré de la wishlist", nil)
}
