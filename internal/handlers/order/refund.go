package order

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

// pendingRefundGuard refuse une seconde demande tant qu'une demande
// pending existe déjà sur la commande
func pendingRefundGuard(pendingCount int64) *apperr.Error {
	if pendingCount > 0 {
		return apperr.BadRequest("Une demande de remboursement est déjà en cours")
	}
	return nil
}

// RequestRefund : demande de remboursement par l'acheteur.
// Une seule demande pending par commande à la fois ; le montant par défaut
// est le total payé de la commande.
func (h *OrderHandler) RequestRefund(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	var req struct {
		OrderID string   `json:"order_id" binding:"required"`
		Reason  string   `json:"reason" binding:"required"`
		Amount  *float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		apperr.Respond(c, apperr.BadRequest("Motif requis"))
		return
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de commande invalide"))
		return
	}

	ctx := c.Request.Context()
	var order models.Order
	if err := h.DB.Orders().FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		apperr.Respond(c, apperr.NotFound("Commande introuvable"))
		return
	}
	if order.UserID != userID {
		apperr.Respond(c, apperr.Forbidden("Cette commande ne vous appartient pas"))
		return
	}

	// Invariant : pas de double demande pending sur la même commande
	pending, err := h.DB.Refunds().CountDocuments(ctx, bson.M{
		"order_id": orderID,
		"status":   models.RefundPending,
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if guardErr := pendingRefundGuard(pending); guardErr != nil {
		apperr.Respond(c, guardErr)
		return
	}

	amount := order.FinalPrice
	if req.Amount != nil {
		if *req.Amount <= 0 || *req.Amount > order.FinalPrice {
			apperr.Respond(c, apperr.BadRequest("Montant de remboursement invalide"))
			return
		}
		amount = *req.Amount
	}

	refund := models.Refund{
		OrderID:   orderID,
		UserID:    userID,
		Reason:    strings.TrimSpace(req.Reason),
		Status:    models.RefundPending,
		Amount:    amount,
		CreatedAt: time.Now(),
	}

	res, err := h.DB.Refunds().InsertOne(ctx, refund)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	refund.ID = res.InsertedID.(primitive.ObjectID)

	// Miroir sur la commande pour l'affichage
	if _, err := h.DB.Orders().UpdateByID(ctx, orderID, bson.M{
		"$set": bson.M{"refund_status": models.RefundPending},
	}); err != nil {
		log.Printf("⚠️ Erreur miroir refund_status: %v", err)
	}

	log.Printf("💸 Demande de remboursement %s sur commande %s (%.2f€)",
		refund.ID.Hex(), orderID.Hex(), amount)
	apperr.OK(c, http.StatusCreated, "Demande de remboursement enregistrée", refund)
}

// ListRefunds : admin tout, vendeur les demandes touchant ses commandes,
// acheteur les siennes
func (h *OrderHandler) ListRefunds(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	uid, _ := primitive.ObjectIDFromHex(user.ID)
	ctx := c.Request.Context()

	filter := bson.M{}
	switch user.Role {
	case models.RoleAdmin:
	case models.RoleSeller:
		// Les commandes contenant au moins un produit du vendeur
		cursor, err := h.DB.Orders().Find(ctx, bson.M{"items.seller_id": uid},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		var ids []primitive.ObjectID
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		for cursor.Next(ctx) {
			if cursor.Decode(&doc) == nil {
				ids = append(ids, doc.ID)
			}
		}
		cursor.Close(ctx)
		filter["order_id"] = bson.M{"$in": ids}
	default:
		filter["user_id"] = uid
	}

	cursor, err := h.DB.Refunds().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	refunds := []models.Refund{}
	if err := cursor.All(ctx, &refunds); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", refunds)
}

// GetRefund : lecture d'une demande, périmètre selon le rôle
func (h *OrderHandler) GetRefund(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant invalide"))
		return
	}

	ctx := c.Request.Context()
	var refund models.Refund
	if err := h.DB.Refunds().FindOne(ctx, bson.M{"_id": oid}).Decode(&refund); err != nil {
		apperr.Respond(c, apperr.NotFound("Demande introuvable"))
		return
	}

	if user.Role != models.RoleAdmin && refund.UserID.Hex() != user.ID {
		var order models.Order
		if err := h.DB.Orders().FindOne(ctx, bson.M{"_id": refund.OrderID}).Decode(&order); err != nil ||
			!canSeeOrder(user, order) {
			apperr.Respond(c, apperr.Forbidden("Accès refusé à cette demande"))
			return
		}
	}

	apperr.OK(c, http.StatusOK, "", refund)
}

// UpdateRefundStatus fait avancer la machine à états du remboursement.
// Le passage à refunded déclenche le remboursement Stripe quand la
// commande a été payée par carte.
func (h *OrderHandler) UpdateRefundStatus(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant invalide"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Statut requis"))
		return
	}

	ctx := c.Request.Context()
	var refund models.Refund
	if err := h.DB.Refunds().FindOne(ctx, bson.M{"_id": oid}).Decode(&refund); err != nil {
		apperr.Respond(c, apperr.NotFound("Demande introuvable"))
		return
	}

	var order models.Order
	if err := h.DB.Orders().FindOne(ctx, bson.M{"_id": refund.OrderID}).Decode(&order); err != nil {
		apperr.Respond(c, apperr.NotFound("Commande introuvable"))
		return
	}

	if user.Role != models.RoleAdmin && !canSeeOrder(user, order) {
		apperr.Respond(c, apperr.Forbidden("Accès refusé à cette demande"))
		return
	}

	if !models.CanTransitionRefund(refund.Status, req.Status) {
		apperr.Respond(c, apperr.BadRequest(
			"Transition interdite: "+refund.Status+" → "+req.Status))
		return
	}

	// Remboursement effectif côté gateway avant de figer l'état
	if req.Status == models.RefundRefunded &&
		order.PaymentMethod == models.PaymentStripe &&
		order.PaymentStatus == models.PaymentPaid {
		if _, err := h.Stripe.Refund(ctx, order.PaymentRef, refund.Amount); err != nil {
			apperr.Respond(c, apperr.New(apperr.KindInternal, "Le remboursement Stripe a échoué"))
			return
		}
	}

	processedBy, _ := primitive.ObjectIDFromHex(user.ID)
	now := time.Now()

	if _, err := h.DB.Refunds().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":       req.Status,
			"processed_by": processedBy,
			"processed_at": now,
		},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if _, err := h.DB.Orders().UpdateByID(ctx, refund.OrderID, bson.M{
		"$set": bson.M{"refund_status": req.Status},
	}); err != nil {
		log.Printf("⚠️ Erreur miroir refund_status: %v", err)
	}

	log.Printf("💰 Remboursement %s: %s → %s (par %s)",
		oid.Hex(), refund.Status, req.Status, user.Email)
	apperr.OK(c, http.StatusOK, "Statut de remboursement mis à jour", nil)
}
