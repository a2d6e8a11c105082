package user

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/database"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

type CartHandler struct {
	DB    *database.DB
	Cache *cache.Cache
}

// AddToCart ajoute un produit au panier. Crée le panier au premier ajout,
// fusionne la quantité si le produit y est déjà, en revérifiant le cumul
// contre le stock disponible.
func (h *CartHandler) AddToCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}
	if req.Quantity < 1 {
		apperr.Respond(c, apperr.BadRequest("Quantité minimale : 1"))
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
		return
	}

	ctx := c.Request.Context()
	var p models.Product
	if err := h.DB.Products().FindOne(ctx, bson.M{"_id": productID, "is_deleted": false}).Decode(&p); err != nil {
		apperr.Respond(c, apperr.NotFound("Produit introuvable"))
		return
	}

	userID, _ := primitive.ObjectIDFromHex(user.ID)

	var cart models.Cart
	err = h.DB.Carts().FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	switch {
	case err == mongo.ErrNoDocuments:
		if req.Quantity > p.Stock {
			apperr.Respond(c, apperr.BadRequest("Stock insuffisant"))
			return
		}
		cart = models.Cart{
			UserID:    userID,
			Items:     []models.CartItem{{ProductID: productID, Quantity: req.Quantity}},
			UpdatedAt: time.Now(),
		}
		if _, err := h.DB.Carts().InsertOne(ctx, cart); err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}

	case err != nil:
		apperr.Respond(c, apperr.Internal(err))
		return

	default:
		merged := false
		for i, item := range cart.Items {
			if item.ProductID == productID {
				// Cumul de la ligne existante, revalidé contre le stock
				if item.Quantity+req.Quantity > p.Stock {
					apperr.Respond(c, apperr.BadRequest("Stock insuffisant pour cette quantité cumulée"))
					return
				}
				cart.Items[i].Quantity += req.Quantity
				merged = true
				break
			}
		}
		if !merged {
			if req.Quantity > p.Stock {
				apperr.Respond(c, apperr.BadRequest("Stock insuffisant"))
				return
			}
			cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: req.Quantity})
		}

		if _, err := h.DB.Carts().UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
			"$set": bson.M{"items": cart.Items, "updated_at": time.Now()},
		}); err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
	}

	h.Cache.Delete(ctx, cache.CartKey(user.ID))
	log.Printf("🛒 %s ajouté au panier de %s (x%d)", p.Name, user.Email, req.Quantity)
	apperr.OK(c, http.StatusOK, "Produit ajouté au panier", nil)
}

// GetCart : panier courant enrichi des fiches produits, avec sous-totaux
// par ligne et total. NotFound si le panier est vide ou absent.
func (h *CartHandler) GetCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)
	ctx := c.Request.Context()

	var cart models.Cart
	err := h.DB.Carts().FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
		apperr.Respond(c, apperr.NotFound("Panier vide"))
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	view := models.CartView{
		Items:           []models.CartLine{},
		ShippingAddress: cart.ShippingAddress,
	}

	for _, item := range cart.Items {
		var p models.Product
		if err := h.DB.Products().FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&p); err != nil {
			// Produit disparu : la ligne est ignorée à l'affichage
			continue
		}
		line := models.BuildCartLine(p, item.Quantity)
		view.Items = append(view.Items, line)
		view.Total += line.Subtotal
	}

	if len(view.Items) == 0 {
		apperr.Respond(c, apperr.NotFound("Panier vide"))
		return
	}

	apperr.OK(c, http.StatusOK, "", view)
}

// RemoveFromCart retire une ligne ; NotFound si le produit n'y est pas
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	productID, err := primitive.ObjectIDFromHex(c.Param("product_id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
		return
	}

	ctx := c.Request.Context()
	res, err := h.DB.Carts().UpdateOne(ctx,
		bson.M{"user_id": userID, "items.product_id": productID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Produit absent du panier"))
		return
	}

	h.Cache.Delete(ctx, cache.CartKey(user.ID))
	apperr.OK(c, http.StatusOK, "Produit retiré du panier", nil)
}

// ClearCart vide entièrement le panier
func (h *CartHandler) ClearCart(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	ctx := c.Request.Context()
	if _, err := h.DB.Carts().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updated_at": time.Now()}},
	); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.CartKey(user.ID))
	apperr.OK(c, http.StatusOK, "Panier vidé", nil)
}

// SetShippingAddress fixe l'adresse de livraison par défaut du panier
func (h *CartHandler) SetShippingAddress(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	userID, _ := primitive.ObjectIDFromHex(user.ID)

	var req struct {
		ShippingAddress string `json:"shipping_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Adresse requise"))
		return
	}

	ctx := c.Request.Context()
	res, err := h.DB.Carts().UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"shipping_address": req.ShippingAddress, "updated_at": time.Now()}},
	)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Panier introuvable"))
		return
	}

	h.Cache.Delete(ctx, cache.CartKey(user.ID))
	apperr.OK(c, http.StatusOK, "Adresse de livraison enregistrée", nil)
}
