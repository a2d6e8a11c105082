package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"vendora_back_end/internal/apperr"
	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/config"
	"vendora_back_end/internal/utils"
)

// AuthUser : identité typée produite par l'authentification, à la place
// d'un empilement de valeurs anonymes dans le contexte
type AuthUser struct {
	ID    string
	Email string
	Role  string
}

const authUserKey = "auth_user"

// CurrentUser relit l'identité posée par AuthRequired
func CurrentUser(c *gin.Context) (AuthUser, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return AuthUser{}, false
	}
	user, ok := v.(AuthUser)
	return user, ok
}

// AuthRequired valide le bearer token, vérifie la blacklist et le
// bannissement, puis pose l'identité typée dans le contexte
func AuthRequired(cfg *config.Config, c2 *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperr.Respond(c, apperr.Unauthorized("Token manquant"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			apperr.Respond(c, apperr.Unauthorized("Format Authorization invalide"))
			return
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			apperr.Respond(c, apperr.Unauthorized("Token invalide ou expiré"))
			return
		}

		if claims.ID != "" && c2.IsTokenBlacklisted(c.Request.Context(), claims.ID) {
			apperr.Respond(c, apperr.Unauthorized("Token révoqué"))
			return
		}

		if c2.IsUserBanned(c.Request.Context(), claims.UserID) {
			apperr.Respond(c, apperr.Forbidden("Compte banni"))
			return
		}

		c.Set(authUserKey, AuthUser{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  strings.ToLower(claims.Role),
		})
		c.Next()
	}
}

// RequireRoles n'autorise que les rôles de l'allow-list
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = true
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apperr.Respond(c, apperr.Unauthorized("Utilisateur non authentifié"))
			return
		}
		if !allowed[user.Role] {
			apperr.Respond(c, apperr.Forbidden("Accès refusé pour ce rôle"))
			return
		}
		c.Next()
	}
}
