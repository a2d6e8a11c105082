package product

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

// AskQuestion ajoute une question d'acheteur à la fiche produit
func (h *ProductHandler) AskQuestion(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		apperr.Respond(c, apperr.BadRequest("Question requise"))
		return
	}

	userID, _ := primitive.ObjectIDFromHex(user.ID)
	q := models.Question{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Question:  strings.TrimSpace(req.Question),
		CreatedAt: time.Now(),
	}

	ctx := c.Request.Context()
	if _, err := h.DB.Products().UpdateByID(ctx, p.ID, bson.M{
		"$push": bson.M{"questions": q},
		"$set":  bson.M{"updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.ProductKey(p.ID.Hex()))
	log.Printf("❓ Question posée sur %s par %s", p.Name, user.Email)
	apperr.OK(c, http.StatusCreated, "Question posée", q)
}

// AnswerQuestion : réponse du vendeur propriétaire (ou d'un admin)
func (h *ProductHandler) AnswerQuestion(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}
	if !canManage(user, p) {
		apperr.Respond(c, apperr.Forbidden("Ce produit ne vous appartient pas"))
		return
	}

	questionID, err := primitive.ObjectIDFromHex(c.Param("question_id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de question invalide"))
		return
	}

	var req struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Answer) == "" {
		apperr.Respond(c, apperr.BadRequest("Réponse requise"))
		return
	}

	answeredBy, _ := primitive.ObjectIDFromHex(user.ID)
	now := time.Now()

	ctx := c.Request.Context()
	res, err := h.DB.Products().UpdateOne(ctx,
		bson.M{"_id": p.ID, "questions._id": questionID},
		bson.M{"$set": bson.M{
			"questions.$.answer":      strings.TrimSpace(req.Answer),
			"questions.$.answered_by": answeredBy,
			"questions.$.answered_at": now,
			"updated_at":              now,
		}},
	)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Question introuvable"))
		return
	}

	h.Cache.Delete(ctx, cache.ProductKey(p.ID.Hex()))
	log.Printf("💬 Question répondue sur %s", p.Name)
	apperr.OK(c, http.StatusOK, "Réponse enregistrée", nil)
}
