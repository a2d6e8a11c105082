package user

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/config"
	"vendora_back_end/internal/database"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
	"vendora_back_end/internal/utils"
	"vendora_back_end/internal/validation"
)

type AuthHandler struct {
	DB     *database.DB
	Cache  *cache.Cache
	Mailer *utils.Mailer
	Cfg    *config.Config
}

// Register crée un compte non vérifié et envoie le code de vérification
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if errs := validation.ValidateRegister(validation.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}); len(errs) > 0 {
		apperr.Respond(c, apperr.BadRequest(validation.Message(errs)))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleBuyer
	}

	code := uuid.NewString()
	expires := time.Now().Add(24 * time.Hour)
	now := time.Now()

	u := models.User{
		Name:                  req.Name,
		Email:                 req.Email,
		Password:              hash,
		Role:                  role,
		IsVerified:            false,
		VerificationCode:      code,
		VerificationExpiresAt: &expires,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	res, err := h.DB.Users().InsertOne(c.Request.Context(), u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			apperr.Respond(c, apperr.Conflict("Cette adresse e-mail est déjà utilisée"))
			return
		}
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Mailer.SendVerificationEmail(req.Email, code)
	log.Printf("✅ Utilisateur créé: %s (%s)", req.Email, role)

	apperr.OK(c, http.StatusCreated, "Compte créé, vérifiez votre e-mail", gin.H{
		"id":    res.InsertedID,
		"email": req.Email,
	})
}

// VerifyEmail valide le code envoyé à l'inscription
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	ctx := c.Request.Context()
	var u models.User
	err := h.DB.Users().FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&u)
	if err != nil {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	if u.IsVerified {
		apperr.OK(c, http.StatusOK, "Compte déjà vérifié", nil)
		return
	}

	if u.VerificationCode == "" || u.VerificationCode != req.Code {
		apperr.Respond(c, apperr.BadRequest("Code de vérification invalide"))
		return
	}
	if u.VerificationExpiresAt == nil || time.Now().After(*u.VerificationExpiresAt) {
		apperr.Respond(c, apperr.BadRequest("Code de vérification expiré"))
		return
	}

	_, err = h.DB.Users().UpdateByID(ctx, u.ID, bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now()},
		"$unset": bson.M{"verification_code": "", "verification_expires_at": ""},
	})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	log.Printf("✅ E-mail vérifié: %s", u.Email)
	apperr.OK(c, http.StatusOK, "Adresse e-mail vérifiée", nil)
}

// Login vérifie les identifiants et délivre les tokens d'accès et de refresh
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	ctx := c.Request.Context()
	var u models.User
	err := h.DB.Users().FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&u)
	if err != nil {
		apperr.Respond(c, apperr.Unauthorized("Identifiants invalides"))
		return
	}

	if !u.IsVerified {
		apperr.Respond(c, apperr.Forbidden("Adresse e-mail non vérifiée"))
		return
	}
	if u.IsBanned {
		apperr.Respond(c, apperr.Forbidden("Compte banni"))
		return
	}

	ok, err := utils.VerifyPassword(req.Password, u.Password)
	if err != nil || !ok {
		apperr.Respond(c, apperr.Unauthorized("Identifiants invalides"))
		return
	}

	access, _, err := utils.GenerateAccessToken(h.Cfg.JWTSecret, h.Cfg.AccessTokenTTL, u)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	refresh, err := utils.GenerateRefreshToken(h.Cfg.JWTSecret, h.Cfg.RefreshTokenTTL, u.ID.Hex())
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if err := h.Cache.StoreRefreshToken(ctx, u.ID.Hex(), refresh, h.Cfg.RefreshTokenTTL); err != nil {
		log.Printf("⚠️ Erreur stockage refresh token: %v", err)
	}

	log.Printf("🔑 Connexion: %s", u.Email)
	apperr.OK(c, http.StatusOK, "", gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          u,
	})
}

// Refresh échange un refresh token valide contre une nouvelle paire de tokens
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	claims, err := utils.ParseToken(h.Cfg.JWTSecret, req.RefreshToken)
	if err != nil {
		apperr.Respond(c, apperr.Unauthorized("Refresh token invalide ou expiré"))
		return
	}

	ctx := c.Request.Context()
	stored, err := h.Cache.GetRefreshToken(ctx, claims.UserID)
	if err != nil || stored != req.RefreshToken {
		apperr.Respond(c, apperr.Unauthorized("Refresh token révoqué"))
		return
	}

	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		apperr.Respond(c, apperr.Unauthorized("Refresh token invalide"))
		return
	}

	var u models.User
	if err := h.DB.Users().FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}
	if u.IsBanned {
		apperr.Respond(c, apperr.Forbidden("Compte banni"))
		return
	}

	access, _, err := utils.GenerateAccessToken(h.Cfg.JWTSecret, h.Cfg.AccessTokenTTL, u)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	// Rotation du refresh token
	refresh, err := utils.GenerateRefreshToken(h.Cfg.JWTSecret, h.Cfg.RefreshTokenTTL, u.ID.Hex())
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if err := h.Cache.StoreRefreshToken(ctx, u.ID.Hex(), refresh, h.Cfg.RefreshTokenTTL); err != nil {
		log.Printf("⚠️ Erreur rotation refresh token: %v", err)
	}

	apperr.OK(c, http.StatusOK, "", gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Logout révoque le token d'accès courant (blacklist) et le refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	// Blacklister le jti du token porté par la requête, pour sa durée restante
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 {
		if claims, err := utils.ParseToken(h.Cfg.JWTSecret, parts[1]); err == nil && claims.ID != "" {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				if err := h.Cache.BlacklistToken(ctx, claims.ID, ttl); err != nil {
					log.Printf("⚠️ Erreur blacklist token: %v", err)
				}
			}
		}
	}

	if err := h.Cache.DeleteRefreshToken(ctx, user.ID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}

	apperr.OK(c, http.StatusOK, "Déconnexion réussie", nil)
}

// ChangePassword change le mot de passe d'un utilisateur connecté
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}
	if len(req.NewPassword) < 8 {
		apperr.Respond(c, apperr.BadRequest("Le nouveau mot de passe doit faire 8 caractères minimum"))
		return
	}

	ctx := c.Request.Context()
	oid, _ := primitive.ObjectIDFromHex(user.ID)

	var u models.User
	if err := h.DB.Users().FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	ok, err := utils.VerifyPassword(req.CurrentPassword, u.Password)
	if err != nil || !ok {
		apperr.Respond(c, apperr.Unauthorized("Mot de passe actuel incorrect"))
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if _, err := h.DB.Users().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"password": hash, "updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	// Déconnecte les autres sessions
	if err := h.Cache.DeleteRefreshToken(ctx, user.ID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}

	log.Printf("🔒 Mot de passe changé: %s", u.Email)
	apperr.OK(c, http.StatusOK, "Mot de passe modifié", nil)
}

// ForgotPassword envoie un code de réinitialisation par e-mail
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)

	var u models.User
	if err := h.DB.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		apperr.Respond(c, apperr.NotFound("Aucun compte pour cette adresse"))
		return
	}

	code := uuid.NewString()
	expires := time.Now().Add(15 * time.Minute)

	if _, err := h.DB.Users().UpdateByID(ctx, u.ID, bson.M{
		"$set": bson.M{"reset_code": code, "reset_expires_at": expires, "updated_at": time.Now()},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	h.Mailer.SendPasswordResetEmail(email, code)
	apperr.OK(c, http.StatusOK, "Code de réinitialisation envoyé", nil)
}

// ResetPassword applique un nouveau mot de passe avec le code reçu
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}
	if len(req.NewPassword) < 8 {
		apperr.Respond(c, apperr.BadRequest("Le nouveau mot de passe doit faire 8 caractères minimum"))
		return
	}

	ctx := c.Request.Context()
	var u models.User
	if err := h.DB.Users().FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&u); err != nil {
		apperr.Respond(c, apperr.NotFound("Aucun compte pour cette adresse"))
		return
	}

	if u.ResetCode == "" || u.ResetCode != req.Code {
		apperr.Respond(c, apperr.BadRequest("Code de réinitialisation invalide"))
		return
	}
	if u.ResetExpiresAt == nil || time.Now().After(*u.ResetExpiresAt) {
		apperr.Respond(c, apperr.BadRequest("Code de réinitialisation expiré"))
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	if _, err := h.DB.Users().UpdateByID(ctx, u.ID, bson.M{
		"$set":   bson.M{"password": hash, "updated_at": time.Now()},
		"$unset": bson.M{"reset_code": "", "reset_expires_at": ""},
	}); err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	// Révoque les sessions existantes
	if err := h.Cache.DeleteRefreshToken(ctx, u.ID.Hex()); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}

	log.Printf("🔒 Mot de passe réinitialisé: %s", u.Email)
	apperr.OK(c, http.StatusOK, "Mot de passe réinitialisé", nil)
}

// GetProfile retourne le profil de l'utilisateur connecté
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	oid, _ := primitive.ObjectIDFromHex(user.ID)

	var u models.User
	if err := h.DB.Users().FindOne(c.Request.Context(), bson.M{"_id": oid}).Decode(&u); err != nil {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	apperr.OK(c, http.StatusOK, "", u)
}

// UpdateProfile modifie les champs autorisés du profil
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	oid, _ := primitive.ObjectIDFromHex(user.ID)

	var req struct {
		Name    *string `json:"name"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BadRequest("Données invalides"))
		return
	}

	update := bson.M{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			apperr.Respond(c, apperr.BadRequest("Le nom ne peut pas être vide"))
			return
		}
		update["name"] = *req.Name
	}
	if req.Phone != nil {
		update["phone"] = *req.Phone
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if len(update) == 0 {
		apperr.Respond(c, apperr.BadRequest("Aucune mise à jour fournie"))
		return
	}
	update["updated_at"] = time.Now()

	res, err := h.DB.Users().UpdateByID(c.Request.Context(), oid, bson.M{"$set": update})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.MatchedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	apperr.OK(c, http.StatusOK, "Profil mis à jour", nil)
}

// DeleteAccount supprime le compte de l'utilisateur connecté ainsi que
// son panier et sa wishlist
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	oid, _ := primitive.ObjectIDFromHex(user.ID)
	ctx := c.Request.Context()

	res, err := h.DB.Users().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if res.DeletedCount == 0 {
		apperr.Respond(c, apperr.NotFound("Utilisateur introuvable"))
		return
	}

	// Nettoyage des documents rattachés ; les commandes passées restent
	if _, err := h.DB.Carts().DeleteOne(ctx, bson.M{"user_id": oid}); err != nil {
		log.Printf("⚠️ Erreur suppression panier: %v", err)
	}
	if _, err := h.DB.Wishlists().DeleteOne(ctx, bson.M{"user_id": oid}); err != nil {
		log.Printf("⚠️ Erreur suppression wishlist: %v", err)
	}
	if err := h.Cache.DeleteRefreshToken(ctx, user.ID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}
	h.Cache.Delete(ctx, cache.CartKey(user.ID), cache.WishlistKey(user.ID))

	log.Printf("🗑️ Compte supprimé: %s", user.Email)
	apperr.OK(c, http.StatusOK, "Compte supprimé", nil)
}
