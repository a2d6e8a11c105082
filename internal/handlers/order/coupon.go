package order

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
	"vendora_back_end/internal/validation"
)

// CreateCoupon : un admin crée des coupons globaux, un vendeur des coupons
// rattachés à lui-même et restreints à ses propres produits
func (h *OrderHandler) CreateCoupon(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		Code             string   `json:"code"`
		Type             string   `json:"type"`
		Value            float64  `json:"value"`
		MinOrderValue    float64  `json:"min_order_value"`
		UsageLimit       int      `json:"usage_limit"`
		ExpiresAt        string   `json:"expires_at"`
		ProductSpecific  bool     `json:"product_specific"`
		ProductIDs       []string `json:"product_ids"`
		CategorySpecific bool     `json:"category_specific"`
		Categories       []string `json:"categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	if errs := validation.ValidateCoupon(validation.CouponInput{
		Code:             req.Code,
		Type:             req.Type,
		Value:            req.Value,
		MinOrderValue:    req.MinOrderValue,
		UsageLimit:       req.UsageLimit,
		ProductSpecific:  req.ProductSpecific,
		ProductCount:     len(req.ProductIDs),
		CategorySpecific: req.CategorySpecific,
		CategoryCount:    len(req.Categories),
	}); len(errs) > 0 {
		apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
		return
	}

	expires, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("expires_at invalide (format RFC3339)"))
		return
	}
	if expires.Before(time.Now()) {
		apperr.Respond(c, apperr.BadRequest("expires_at déjà passé"))
		return
	}

	productIDs := make([]primitive.ObjectID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("product_ids invalide"))
			return
		}
		productIDs = append(productIDs, oid)
	}

	ctx := c.Request.Context()
	coupon := models.Coupon{
		Code:             strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:             req.Type,
		Value:            req.Value,
		MinOrderValue:    req.MinOrderValue,
		UsageLimit:       req.UsageLimit,
		ExpiresAt:        expires,
		Status:           models.CouponActive,
		ProductSpecific:  req.ProductSpecific,
		ProductIDs:       productIDs,
		CategorySpecific: req.CategorySpecific,
		Categories:       req.Categories,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	// Un vendeur est propriétaire forcé et limité à ses produits
	if user.Role == models.RoleSeller {
		sellerID, _ := primitive.ObjectIDFromHex(user.ID)
		coupon.SellerID = &sellerID

		if len(productIDs) > 0 {
			owned, err := h.DB.Products().CountDocuments(ctx, bson.M{
				"_id":       bson.M{"$in": productIDs},
				"seller_id": sellerID,
			})
			if err != nil {
				apperr.Respond(c, apperr.Internal(err))
				return
			}
			if int(owned) != len(productIDs) {
				apperr.Respond(c, apperr.Forbidden("Un coupon vendeur ne couvre que vos propres produits"))
				return
			}
		}
	}

	res, err := h.DB.Coupons().InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			apperr.Respond(c, apperr.Conflict("Ce code coupon existe déjà"))
			return
		}
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	coupon.ID = res.InsertedID.(primitive.ObjectID)

	log.Printf("🎟️ Coupon créé: %s par %s", coupon.Code, user.Email)
	apperr.OK(c, http.StatusCreated, "Coupon créé", coupon)
}

// loadCoupon charge un coupon par code et vérifie le périmètre du vendeur
func (h *OrderHandler) loadCoupon(c *gin.Context) (*models.Coupon, bool) {
	user, _ := middleware.CurrentUser(c)
	code := strings.ToUpper(c.Param("code"))

	var coupon models.Coupon
	if err := h.DB.Coupons().FindOne(c.Request.Context(), bson.M{"code": code}).Decode(&coupon); err != nil {
		apperr.Respond(c, apperr.NotFound("Coupon introuvable"))
		return nil, false
	}

	if user.Role == models.RoleSeller {
		if coupon.SellerID == nil || coupon.SellerID.Hex() != user.ID {
			apperr.Respond(c, apperr.Forbidden("Ce coupon ne vous appartient pas"))
			return nil, false
		}
	}

	return &coupon, true
}

// GetCoupon : lecture par code, périmètre vendeur respecté
func (h *OrderHandler) GetCoupon(c *gin.Context) {
	coupon, ok := h.loadCoupon(c)
	if !ok {
		return
	}
	apperr.OK(c, http.StatusOK, "", coupon)
}

// ListCoupons : l'admin voit les coupons globaux et vendeurs séparément,
// un vendeur ne voit que les siens
func (h *OrderHandler) ListCoupons(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	find := func(filter bson.M) ([]models.Coupon, error) {
		cursor, err := h.DB.Coupons().Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		coupons := []models.Coupon{}
		if err := cursor.All(ctx, &coupons); err != nil {
			return nil, err
		}
		return coupons, nil
	}

	if user.Role == models.RoleSeller {
		sellerID, _ := primitive.ObjectIDFromHex(user.ID)
		coupons, err := find(bson.M{"seller_id": sellerID})
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		apperr.OK(c, http.StatusOK, "", coupons)
		return
	}

	adminCoupons, err := find(bson.M{"seller_id": nil})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	sellerCoupons, err := find(bson.M{"seller_id": bson.M{"$ne": nil}})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"admin_coupons":  adminCoupons,
		"seller_coupons": sellerCoupons,
	})
}

// UpdateCoupon : champs mutables uniquement. Pour un vendeur, le code,
// le propriétaire et le compteur d'utilisation sont immuables.
func (h *OrderHandler) UpdateCoupon(c *gin.Context) {
	coupon, ok := h.loadCoupon(c)
	if !ok {
		return
	}

	var req struct {
		Value         *float64 `json:"value"`
		MinOrderValue *float64 `json:"min_order_value"`
		UsageLimit    *int     `json:"usage_limit"`
		ExpiresAt     *string  `json:"expires_at"`
		Status        *string  `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	update := bson.M{}
	if req.Value != nil {
		if *req.Value <= 0 || (coupon.Type == models.DiscountPercentage && *req.Value > 100) {
			apperr.Respond(c, apperr.BadRequest("Valeur de coupon invalide"))
			return
		}
		update["value"] = *req.Value
	}
	if req.MinOrderValue != nil {
		if *req.MinOrderValue < 0 {
			apperr.Respond(c, apperr.BadRequest("min_order_value négatif interdit"))
			return
		}
		update["min_order_value"] = *req.MinOrderValue
	}
	if req.UsageLimit != nil {
		if *req.UsageLimit < 0 {
			apperr.Respond(c, apperr.BadRequest("usage_limit négatif interdit"))
			return
		}
		update["usage_limit"] = *req.UsageLimit
	}
	if req.ExpiresAt != nil {
		expires, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("expires_at invalide (format RFC3339)"))
			return
		}
		update["expires_at"] = expires
	}
	if req.Status != nil {
		if *req.Status != models.CouponActive && *req.Status != models.CouponInactive {
			apperr.Respond(c, apperr.BadRequest("Statut de coupon invalide"))
			return
		}
		update["status"] = *req.Status
	}
	if len(update) == 0 {
		apperr.Respond(c, apperr.BadRequest("Aucune mise à jour fournie"))
		return
	}
	update["updated_at"] = time.Now()

	if _, err := h.DB.Coupons().UpdateByID(c.Request.Context(), coupon.ID, bson.M{"$set": update}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "Coupon mis à jour", nil)
}

// DeleteCoupon supprime un coupon (propriétaire ou admin)
func (h *OrderHandler) DeleteCoupon(c *gin.Context) {
	coupon, ok := h.loadCoupon(c)
	if !ok {
		return
	}

	if _, err := h.DB.Coupons().DeleteOne(c.Request.Context(), bson.M{"_id": coupon.ID}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	log.Printf("🗑️ Coupon supprimé: %s", coupon.Code)
	apperr.OK(c, http.StatusOK, "Coupon supprimé", nil)
}
