// Package product : catalogue multi-vendeurs — CRUD produits, remises,
// questions/réponses, avis et recherche.
package product

import (
	"encoding/json"
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
	"vendora_back_end/internal/search"
	"vendora_back_end/internal/services"
	"vendora_back_end/internal/validation"
)

const productCacheTTL = 10 * time.Minute

type ProductHandler struct {
	DB     *database.DB
	Cache  *cache.Cache
	Index  *search.ProductIndex
	Images *services.ImageStore
}

// loadProduct charge un produit non supprimé ou renvoie une erreur métier
func (h *ProductHandler) loadProduct(c *gin.Context, includeDeleted bool) (*models.Product, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Identifiant de produit invalide"))
		return nil, false
	}

	filter := bson.M{"_id": oid}
	if !includeDeleted {
		filter["is_deleted"] = false
	}

	var p models.Product
	if err := h.DB.Products().FindOne(c.Request.Context(), filter).Decode(&p); err != nil {
		apperr.Respond(c, apperr.NotFound("Produit introuvable"))
		return nil, false
	}
	return &p, true
}

// canManage : le vendeur ne touche qu'à ses produits, l'admin à tout
func canManage(user middleware.AuthUser, p *models.Product) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return p.SellerID.Hex() == user.ID
}

// ListProducts : listing public paginé, filtrable par nom, catégorie et
// fourchette de prix. Les produits soft-deleted n'apparaissent jamais.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := bson.M{"is_deleted": false}

	if name := c.Query("name"); name != "" {
		filter["name"] = primitive.Regex{Pattern: name, Options: "i"}
	}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if seller := c.Query("seller_id"); seller != "" {
		oid, err := primitive.ObjectIDFromHex(seller)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("seller_id invalide"))
			return
		}
		filter["seller_id"] = oid
	}

	price := bson.M{}
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("min_price invalide"))
			return
		}
		price["$gte"] = v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("max_price invalide"))
			return
		}
		price["$lte"] = v
	}
	if len(price) > 0 {
		filter["price"] = price
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
	total, err := h.DB.Products().CountDocuments(ctx, filter)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.DB.Products().Find(ctx, filter, opts)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GetProduct : fiche produit, servie depuis Redis quand elle y est
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if cached, err := h.Cache.Get(ctx, cache.ProductKey(id)); err == nil {
		var p models.Product
		if json.Unmarshal([]byte(cached), &p) == nil && !p.IsDeleted {
			apperr.OK(c, http.StatusOK, "", p)
			return
		}
	}

	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}

	if data, err := json.Marshal(p); err == nil {
		if err := h.Cache.Set(ctx, cache.ProductKey(id), data, productCacheTTL); err != nil {
			log.Printf("⚠️ Erreur cache produit: %v", err)
		}
	}

	apperr.OK(c, http.StatusOK, "", p)
}

// CreateProduct : création par un vendeur (ou un admin)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Price       float64          `json:"price"`
		Category    string           `json:"category"`
		Stock       int              `json:"stock"`
		Images      []string         `json:"images"`
		Discount    *models.Discount `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	if errs := validation.ValidateProduct(validation.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}); len(errs) > 0 {
		apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
		return
	}
	if req.Discount != nil {
		if errs := validation.ValidateDiscount(*req.Discount); len(errs) > 0 {
			apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
			return
		}
	}

	sellerID, _ := primitive.ObjectIDFromHex(user.ID)
	now := time.Now()

	p := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Images:      req.Images,
		SellerID:    sellerID,
		Discount:    req.Discount,
		Questions:   []models.Question{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := h.DB.Products().InsertOne(c.Request.Context(), p)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	p.ID = res.InsertedID.(primitive.ObjectID)

	h.Index.IndexProduct(c.Request.Context(), p)
	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID.Hex())

	apperr.OK(c, http.StatusCreated, "Produit créé", p)
}

// UpdateProduct : mise à jour partielle des champs de base
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}
	if !canManage(user, p) {
		apperr.Respond(c, apperr.Forbidden("Ce produit ne vous appartient pas"))
		return
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Category    *string   `json:"category"`
		Stock       *int      `json:"stock"`
		Images      *[]string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	update := bson.M{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			apperr.Respond(c, apperr.BadRequest("Prix strictement positif requis"))
			return
		}
		update["price"] = *req.Price
	}
	if req.Category != nil {
		update["category"] = *req.Category
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			apperr.Respond(c, apperr.BadRequest("Stock négatif interdit"))
			return
		}
		update["stock"] = *req.Stock
	}
	if req.Images != nil {
		update["images"] = *req.Images
	}
	if len(update) == 0 {
		apperr.Respond(c, apperr.BadRequest("Aucune mise à jour fournie"))
		return
	}
	update["updated_at"] = time.Now()

	ctx := c.Request.Context()
	if _, err := h.DB.Products().UpdateByID(ctx, p.ID, bson.M{"$set": update}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.ProductKey(p.ID.Hex()))

	var updated models.Product
	if err := h.DB.Products().FindOne(ctx, bson.M{"_id": p.ID}).Decode(&updated); err == nil {
		h.Index.IndexProduct(ctx, updated)
	}

	apperr.OK(c, http.StatusOK, "Produit mis à jour", nil)
}

// UpdateDiscount pose ou retire la remise d'un produit.
// Un corps {"discount": null} efface la remise.
func (h *ProductHandler) UpdateDiscount(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}
	if !canManage(user, p) {
		apperr.Respond(c, apperr.Forbidden("Ce produit ne vous appartient pas"))
		return
	}

	var req struct {
		Discount *models.Discount `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	ctx := c.Request.Context()
	var update bson.M
	if req.Discount == nil {
		update = bson.M{
			"$unset": bson.M{"discount": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		}
	} else {
		if errs := validation.ValidateDiscount(*req.Discount); len(errs) > 0 {
			apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
			return
		}
		update = bson.M{
			"$set": bson.M{"discount": req.Discount, "updated_at": time.Now()},
		}
	}

	if _, err := h.DB.Products().UpdateByID(ctx, p.ID, update); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.ProductKey(p.ID.Hex()))
	log.Printf("💰 Remise mise à jour sur %s", p.Name)
	apperr.OK(c, http.StatusOK, "Remise mise à jour", nil)
}

// DeleteProduct : soft delete. Le produit sort des listings et de l'index
// de recherche mais reste lisible par les commandes passées.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}
	if !canManage(user, p) {
		apperr.Respond(c, apperr.Forbidden("Ce produit ne vous appartient pas"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.DB.Products().UpdateByID(ctx, p.ID, bson.M{
		"$set": bson.M{"is_deleted": true, "updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.ProductKey(p.ID.Hex()))
	h.Index.RemoveProduct(ctx, p.ID.Hex())

	log.Printf("🗑️ Produit supprimé (soft): %s", p.Name)
	apperr.OK(c, http.StatusOK, "Produit supprimé", nil)
}

// RestoreProduct réactive un produit soft-deleted (propriétaire ou admin)
func (h *ProductHandler) RestoreProduct(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, true)
	if !ok {
		return
	}
	if !canManage(user, p) {
		apperr.Respond(c, apperr.Forbidden("Ce produit ne vous appartient pas"))
		return
	}
	if !p.IsDeleted {
		apperr.Respond(c, apperr.BadRequest("Ce produit n'est pas supprimé"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.DB.Products().UpdateByID(ctx, p.ID, bson.M{
		"$set": bson.M{"is_deleted": false, "updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	p.IsDeleted = false
	h.Index.IndexProduct(ctx, *p)

	log.Printf("♻️ Produit restauré: %s", p.Name)
	apperr.OK(c, http.StatusOK, "Produit restauré", nil)
}

// MyProducts : les produits du vendeur connecté, supprimés compris
func (h *ProductHandler) MyProducts(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	sellerID, _ := primitive.ObjectIDFromHex(user.ID)

	ctx := c.Request.Context()
	cursor, err := h.DB.Products().Find(ctx, bson.M{"seller_id": sellerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", products)
}

// DeletedProducts : produits soft-deleted (admin)
func (h *ProductHandler) DeletedProducts(c *gin.Context) {
	ctx := c.Request.Context()
	cursor, err := h.DB.Products().Find(ctx, bson.M{"is_deleted": true},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", products)
}

// SearchProducts : recherche full-text Elasticsearch avec fuzzy matching.
// Retombe sur le filtre Mongo par nom si Elastic est désactivé.
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		apperr.Respond(c, apperr.BadRequest("Paramètre q requis"))
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

	if !h.Index.Enabled() {
		c.Request.URL.RawQuery = "name=" + query + "&page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
		h.ListProducts(c)
		return
	}

	products, err := h.Index.Search(c.Request.Context(), query, (page-1)*limit, limit)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"products": products,
		"page":     page,
		"limit":    limit,
	})
}

// UploadImage pousse une image dans MinIO et l'ajoute au produit
func (h *ProductHandler) UploadImage(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p, ok := h.loadProduct(c, false)
	if !ok {
		return
	}
	if !canManage(user, p) {
		apperr.Respond(c, apperr.Forbidden("Ce produit ne vous appartient pas"))
		return
	}

	if !h.Images.Enabled() {
		apperr.Respond(c, apperr.New(apperr.KindInternal, "Stockage d'images non configuré"))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		apperr.Respond(c, apperr.BadRequest("Fichier image manquant"))
		return
	}

	ctx := c.Request.Context()
	url, err := h.Images.Upload(ctx, file)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if _, err := h.DB.Products().UpdateByID(ctx, p.ID, bson.M{
		"$push": bson.M{"images": url},
		"$set":  bson.M{"updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Cache.Delete(ctx, cache.ProductKey(p.ID.Hex()))
	log.Printf("📤 Image ajoutée à %s: %s", p.Name, url)
	apperr.OK(c, http.StatusOK, "Image ajoutée", gin.H{"url": url})
}
