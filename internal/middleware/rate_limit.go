package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"vendora_back_end/internal/cache"
)

// RateLimit limite le nombre de requêtes par IP sur une fenêtre glissante,
// compteur en Redis. Utilisé sur les routes sensibles (login, register).
func RateLimit(c2 *cache.Cache, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := c2.IncrementRateLimit(c.Request.Context(), key, window)
		if err != nil {
			// Redis indisponible : on laisse passer plutôt que de bloquer tout le monde
			c.Next()
			return
		}

		if count > max {
			c.AbortWithStatusJSON(429, gin.H{
				"status":  "failed",
				"message": "Trop de requêtes, réessayez plus tard",
			})
			return
		}
		c.Next()
	}
}
