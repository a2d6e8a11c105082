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
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/config"
	"vendora_back_end/internal/database"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
	"vendora_back_end/internal/payment"
	"vendora_back_end/internal/utils"
)

type OrderHandler struct {
	DB     *database.DB
	Cache  *cache.Cache
	Cfg    *config.Config
	Mailer *utils.Mailer
	Stripe *payment.StripeGateway
	PayPal *payment.PayPalGateway
}

// gateway sélectionne le collaborateur de paiement selon la méthode
func (h *OrderHandler) gateway(method string) payment.Gateway {
	switch method {
	case models.PaymentStripe:
		return h.Stripe
	case models.PaymentPayPal:
		return h.PayPal
	}
	return nil
}

type checkoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Checkout : pipeline complet de commande.
// Résolution des lignes (panier et/ou items directs) → contrôle de stock →
// calcul des prix → coupon → paiement → persistance transactionnelle avec
// décrément conditionnel du stock et nettoyage du panier.
func (h *OrderHandler) Checkout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	var req struct {
		FromCart        bool           `json:"from_cart"`
		ProductID       string         `json:"product_id"` // restreint le panier à un seul produit
		Items           []checkoutItem `json:"items"`
		PaymentMethod   string         `json:"payment_method"`
		PaymentToken    string         `json:"payment_token"`
		CouponCode      string         `json:"coupon_code"`
		ShippingAddress string         `json:"shipping_address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	switch req.PaymentMethod {
	case models.PaymentCOD, models.PaymentStripe, models.PaymentPayPal:
	default:
		apperr.Respond(c, apperr.BadRequest("Méthode de paiement non supportée"))
		return
	}
	if !req.FromCart && len(req.Items) == 0 {
		apperr.Respond(c, apperr.BadRequest("Aucun article à commander"))
		return
	}

	ctx := c.Request.Context()

	var buyer models.User
	if err := h.DB.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&buyer); err != nil {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	// --- 1. Résolution des lignes ---
	var lines []ResolvedLine
	var cart models.Cart
	cartLoaded := false
	categoryOf := map[primitive.ObjectID]string{}

	resolve := func(productID primitive.ObjectID, qty, cartQty int) (ResolvedLine, *apperr.Error) {
		var p models.Product
		if err := h.DB.Products().FindOne(ctx, bson.M{"_id": productID, "is_deleted": false}).Decode(&p); err != nil {
			return ResolvedLine{}, apperr.NotFound("Produit introuvable: " + productID.Hex())
		}
		if qty < 1 {
			return ResolvedLine{}, apperr.BadRequest("Quantité minimale : 1")
		}
		categoryOf[p.ID] = p.Category
		return ResolvedLine{
			ProductID:    p.ID,
			SellerID:     p.SellerID,
			Name:         p.Name,
			Quantity:     qty,
			UnitPrice:    p.Price,
			UnitDiscount: p.UnitDiscount(),
			CartQuantity: cartQty,
		}, nil
	}

	if req.FromCart {
		if err := h.DB.Carts().FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart); err != nil {
			apperr.Respond(c, apperr.NotFound("Panier vide"))
			return
		}
		cartLoaded = true

		var scope *primitive.ObjectID
		if req.ProductID != "" {
			oid, err := primitive.ObjectIDFromHex(req.ProductID)
			if err != nil {
				apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
				return
			}
			scope = &oid
		}

		for _, item := range cart.Items {
			if scope != nil && item.ProductID != *scope {
				continue
			}
			line, appErr := resolve(item.ProductID, item.Quantity, item.Quantity)
			if appErr != nil {
				apperr.Respond(c, appErr)
				return
			}
			lines = append(lines, line)
		}
	}

	for _, item := range req.Items {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
			return
		}
		line, appErr := resolve(oid, item.Quantity, 0)
		if appErr != nil {
			apperr.Respond(c, appErr)
			return
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		apperr.Respond(c, apperr.BadRequest("Aucun article à commander"))
		return
	}

	// Fusion des doublons panier/direct : quantités cumulées, prix et
	// remise moyennés au prorata
	lines = MergeLines(lines)

	// --- 2. Contrôle de stock sur les quantités fusionnées ---
	for _, line := range lines {
		var p models.Product
		if err := h.DB.Products().FindOne(ctx, bson.M{"_id": line.ProductID}).Decode(&p); err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		if line.Quantity > p.Stock {
			apperr.Respond(c, apperr.BadRequest("Stock insuffisant pour "+line.Name))
			return
		}
	}

	// --- 3. Totaux ---
	totalBefore, productDiscount := Totals(lines)

	// --- 4. Adresse de livraison : requête → panier → profil ---
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" && cartLoaded {
		address = strings.TrimSpace(cart.ShippingAddress)
	}
	if address == "" {
		address = strings.TrimSpace(buyer.Address)
	}
	if address == "" || strings.EqualFold(address, "n/a") {
		apperr.Respond(c, apperr.BadRequest("Adresse de livraison requise"))
		return
	}

	// --- 5. Coupon : politique permissive, un code invalide est ignoré ---
	var couponDiscount float64
	couponCode := ""
	var coupon *models.Coupon
	if req.CouponCode != "" {
		code := strings.ToUpper(strings.TrimSpace(req.CouponCode))
		var cp models.Coupon
		err := h.DB.Coupons().FindOne(ctx, bson.M{"code": code}).Decode(&cp)
		switch {
		case err != nil:
			log.Printf("⚠️ Coupon %s introuvable, ignoré", code)
		default:
			usable, reason := cp.Usable(totalBefore, time.Now())
			if !usable {
				log.Printf("⚠️ Coupon %s non applicable (%s), ignoré", code, reason)
			} else if !CouponEligible(&cp, lines, categoryOf) {
				log.Printf("⚠️ Coupon %s hors périmètre, ignoré", code)
			} else {
				couponDiscount = cp.DiscountOn(totalBefore)
				couponCode = code
				coupon = &cp
			}
		}
	}

	finalPrice := FinalPrice(totalBefore, couponDiscount, productDiscount)

	// --- 6. Paiement avant persistance : aucun ordre sans encaissement ---
	paymentStatus := models.PaymentUnpaid
	paymentRef := ""
	if req.PaymentMethod != models.PaymentCOD {
		gw := h.gateway(req.PaymentMethod)
		ref, err := gw.Collect(ctx, finalPrice, req.PaymentToken)
		if err != nil {
			log.Printf("❌ Paiement refusé (%s): %v", req.PaymentMethod, err)
			apperr.Respond(c, apperr.BadRequest("Paiement refusé"))
			return
		}
		paymentStatus = models.PaymentPaid
		paymentRef = ref
	}

	order := models.Order{
		UserID:              userID,
		Items:               OrderItems(lines),
		ShippingAddress:     address,
		TotalBeforeDiscount: totalBefore,
		CouponCode:          couponCode,
		CouponDiscount:      couponDiscount,
		ProductDiscount:     productDiscount,
		FinalPrice:          finalPrice,
		PaymentMethod:       req.PaymentMethod,
		PaymentStatus:       paymentStatus,
		PaymentRef:          paymentRef,
		Status:              models.OrderPending,
		CreatedAt:           time.Now(),
	}

	// --- 7. Persistance transactionnelle : commande + stock + coupon +
	// panier basculent ensemble ou pas du tout ---
	session, err := h.DB.Client.StartSession()
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := h.DB.Orders().InsertOne(sc, order)
		if err != nil {
			return nil, err
		}

		// Décrément conditionnel : échoue si le stock a bougé entre-temps
		for _, line := range lines {
			upd, err := h.DB.Products().UpdateOne(sc,
				bson.M{"_id": line.ProductID, "stock": bson.M{"$gte": line.Quantity}},
				bson.M{"$inc": bson.M{"stock": -line.Quantity}},
			)
			if err != nil {
				return nil, err
			}
			if upd.MatchedCount == 0 {
				return nil, apperr.BadRequest("Stock insuffisant pour " + line.Name)
			}
		}

		// Incrément conditionnel : la limite d'utilisation est revérifiée
		// à l'écriture, une commande concurrente ne peut pas la dépasser
		if coupon != nil {
			upd, err := h.DB.Coupons().UpdateOne(sc, couponClaimFilter(coupon.ID), bson.M{
				"$inc": bson.M{"usage_count": 1},
				"$set": bson.M{"updated_at": time.Now()},
			})
			if err != nil {
				return nil, err
			}
			if upd.MatchedCount == 0 {
				return nil, apperr.BadRequest("Limite d'utilisation du coupon atteinte")
			}
		}

		// Nettoyage incrémental du panier pour les quantités qui en viennent
		if cartLoaded {
			remaining := cart.Items[:0]
			for _, item := range cart.Items {
				consumed := 0
				for _, line := range lines {
					if line.ProductID == item.ProductID {
						consumed = line.CartQuantity
						break
					}
				}
				if item.Quantity-consumed > 0 {
					item.Quantity -= consumed
					remaining = append(remaining, item)
				}
			}
			if _, err := h.DB.Carts().UpdateOne(sc,
				bson.M{"user_id": userID},
				bson.M{"$set": bson.M{"items": remaining, "updated_at": time.Now()}},
			); err != nil {
				return nil, err
			}
		}

		return res.InsertedID, nil
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	order.ID = result.(primitive.ObjectID)

	// Invalidation des caches touchés
	keys := []string{cache.CartKey(user.ID)}
	for _, line := range lines {
		keys = append(keys, cache.ProductKey(line.ProductID.Hex()))
	}
	h.Cache.Delete(ctx, keys...)

	log.Printf("✅ Commande %s créée pour %s (%.2f€, %s)",
		order.ID.Hex(), user.Email, order.FinalPrice, order.PaymentMethod)

	h.sendConfirmation(buyer.Email, order)

	apperr.OK(c, http.StatusCreated, "Commande créée", order)
}

// sendConfirmation envoie l'e-mail de confirmation avec la facture PDF
// en pièce jointe, sans bloquer la réponse
func (h *OrderHandler) sendConfirmation(email string, order models.Order) {
	go func() {
		pdf, err := utils.GenerateInvoicePDF(h.Cfg, order)
		if err != nil {
			log.Printf("⚠️ Erreur génération facture: %v", err)
			pdf = nil
		}
		if err := h.Mailer.Send(email, "Confirmation de votre commande",
			utils.OrderConfirmationHTML(order), pdf); err != nil {
			log.Printf("⚠️ Erreur envoi confirmation: %v", err)
		}
	}()
}

// GetOrder : une commande, visible par son acheteur, un vendeur concerné
// ou un admin
func (h *OrderHandler) GetOrder(c *gin.Context) {
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

	apperr.OK(c, http.StatusOK, "", order)
}

// canSeeOrder : acheteur propriétaire, vendeur d'au moins un item, ou admin
func canSeeOrder(user middleware.AuthUser, order models.Order) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	if order.UserID.Hex() == user.ID {
		return true
	}
	if user.Role == models.RoleSeller {
		for _, item := range order.Items {
			if item.SellerID.Hex() == user.ID {
				return true
			}
		}
	}
	return false
}

// ListOrders : périmètre selon le rôle — acheteur ses commandes, vendeur
// les commandes contenant ses produits, admin tout
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	uid, _ := primitive.ObjectIDFromHex(user.ID)

	filter := bson.M{}
	switch user.Role {
	case models.RoleAdmin:
	case models.RoleSeller:
		filter["items.seller_id"] = uid
	default:
		filter["user_id"] = uid
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	ctx := c.Request.Context()
	cursor, err := h.DB.Orders().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", orders)
}

// UpdateStatus : progression par le vendeur/admin selon la machine à états
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de commande invalide"))
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
	var order models.Order
	if err := h.DB.Orders().FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		apperr.Respond(c, apperr.NotFound("Commande introuvable"))
		return
	}

	if !canSeeOrder(user, order) || user.Role == models.RoleBuyer {
		apperr.Respond(c, apperr.Forbidden("Accès refusé à cette commande"))
		return
	}

	// L'annulation passe par l'opération dédiée de l'acheteur
	if req.Status == models.OrderCancelled {
		apperr.Respond(c, apperr.BadRequest("Utiliser l'opération d'annulation"))
		return
	}
	if !models.CanTransitionOrder(order.Status, req.Status) {
		apperr.Respond(c, apperr.BadRequest(
			"Transition interdite: "+order.Status+" → "+req.Status))
		return
	}

	if _, err := h.DB.Orders().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"status": req.Status},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	log.Printf("📦 Commande %s: %s → %s", oid.Hex(), order.Status, req.Status)
	apperr.OK(c, http.StatusOK, "Statut mis à jour", nil)
}

// CancelOrder : annulation par l'acheteur, uniquement depuis pending.
// Le stock des articles est restitué dans la même transaction.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de commande invalide"))
		return
	}

	ctx := c.Request.Context()
	var order models.Order
	if err := h.DB.Orders().FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		apperr.Respond(c, apperr.NotFound("Commande introuvable"))
		return
	}
	if order.UserID != userID {
		apperr.Respond(c, apperr.Forbidden("Cette commande ne vous appartient pas"))
		return
	}
	if order.Status != models.OrderPending {
		apperr.Respond(c, apperr.BadRequest("Seule une commande en attente peut être annulée"))
		return
	}

	session, err := h.DB.Client.StartSession()
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer session.EndSession(ctx)

	now := time.Now()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := h.DB.Orders().UpdateOne(sc,
			bson.M{"_id": oid, "status": models.OrderPending},
			bson.M{"$set": bson.M{"status": models.OrderCancelled, "cancelled_at": now}},
		)
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount == 0 {
			return nil, apperr.BadRequest("Seule une commande en attente peut être annulée")
		}

		for _, item := range order.Items {
			if _, err := h.DB.Products().UpdateByID(sc, item.ProductID,
				bson.M{"$inc": bson.M{"stock": item.Quantity}}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	keys := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		keys = append(keys, cache.ProductKey(item.ProductID.Hex()))
	}
	h.Cache.Delete(ctx, keys...)

	log.Printf("🚫 Commande annulée: %s par %s", oid.Hex(), user.Email)
	apperr.OK(c, http.StatusOK, "Commande annulée", nil)
}
