// Package admin regroupe les opérations réservées aux administrateurs.
package admin

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/database"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

type UserHandler struct {
	DB    *database.DB
	Cache *cache.Cache
}

// ListUsers retourne les utilisateurs, paginés, filtrables par rôle
func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		if !models.ValidRole(role) {
			apperr.Respond(c, apperr.BadRequest("Rôle inconnu"))
			return
		}
		filter["role"] = role
	}
	if banned := c.Query("banned"); banned != "" {
		filter["is_banned"] = banned == "true"
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
	total, err := h.DB.Users().CountDocuments(ctx, filter)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.DB.Users().Find(ctx, filter, opts)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// BanUser bannit un utilisateur : drapeau en base + drapeau Redis pour
// couper immédiatement les tokens encore valides
func (h *UserHandler) BanUser(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant invalide"))
		return
	}
	if oid.Hex() == admin.ID {
		apperr.Respond(c, apperr.BadRequest("Impossible de se bannir soi-même"))
		return
	}

	ctx := c.Request.Context()
	var target models.User
	if err := h.DB.Users().FindOne(ctx, bson.M{"_id": oid}).Decode(&target); err != nil {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}
	if target.Role == models.RoleAdmin {
		apperr.Respond(c, apperr.Forbidden("Impossible de bannir un administrateur"))
		return
	}

	if _, err := h.DB.Users().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"is_banned": true, "updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if err := h.Cache.BanUser(ctx, oid.Hex()); err != nil {
		log.Printf("⚠️ Erreur drapeau ban Redis: %v", err)
	}
	if err := h.Cache.DeleteRefreshToken(ctx, oid.Hex()); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}

	log.Printf("🚫 Utilisateur banni: %s (par %s)", target.Email, admin.Email)
	apperr.OK(c, http.StatusOK, "Utilisateur banni", nil)
}

// UnbanUser lève le bannissement
func (h *UserHandler) UnbanUser(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant invalide"))
		return
	}

	ctx := c.Request.Context()
	res, err := h.DB.Users().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"is_banned": false, "updated_at": time.Now()},
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	if err := h.Cache.UnbanUser(ctx, oid.Hex()); err != nil {
		log.Printf("⚠️ Erreur levée ban Redis: %v", err)
	}

	log.Printf("✅ Bannissement levé: %s", oid.Hex())
	apperr.OK(c, http.StatusOK, "Bannissement levé", nil)
}
