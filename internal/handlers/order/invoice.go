package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
	"vendora_back_end/internal/utils"
)

// DownloadInvoice régénère la facture PDF d'une commande à la demande
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de commande invalide"))
		return
	}

	var order models.Order
	if err := h.DB.Orders().FindOne(c.Request.Context(), bson.M{"_id": oid}).Decode(&order); err != nil {
		apperr.Respond(c, apperr.NotFound("Commande introuvable"))
		return
	}

	if !canSeeOrder(user, order) {
		apperr.Respond(c, apperr.Forbidden("Accès refusé à cette commande"))
		return
	}

	pdf, err := utils.GenerateInvoicePDF(h.Cfg, order)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="facture_`+oid.Hex()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
