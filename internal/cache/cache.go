// Package cache centralise l'usage de Redis : refresh tokens, blacklist de
// JWT révoqués, drapeaux de bannissement et cache de lecture générique.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// --- Refresh tokens ---

func (c *Cache) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, "refresh:"+userID, token, ttl).Err()
}

func (c *Cache) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	return c.rdb.Get(ctx, "refresh:"+userID).Result()
}

func (c *Cache) DeleteRefreshToken(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, "refresh:"+userID).Err()
}

// --- Blacklist JWT (révocation avant expiration) ---

func (c *Cache) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	return c.rdb.Set(ctx, "blacklist:"+jti, "revoked", ttl).Err()
}

func (c *Cache) IsTokenBlacklisted(ctx context.Context, jti string) bool {
	exists, err := c.rdb.Exists(ctx, "blacklist:"+jti).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification blacklist: %v", err)
		return false
	}
	return exists > 0
}

// --- Bannissement ---

// BanUser pose un drapeau permanent, vérifié par le middleware à chaque requête
func (c *Cache) BanUser(ctx context.Context, userID string) error {
	return c.rdb.Set(ctx, "banned:"+userID, "true", 0).Err()
}

func (c *Cache) UnbanUser(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, "banned:"+userID).Err()
}

func (c *Cache) IsUserBanned(ctx context.Context, userID string) bool {
	exists, err := c.rdb.Exists(ctx, "banned:"+userID).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification ban: %v", err)
		return false
	}
	return exists > 0
}

// --- Cache générique (produits, paniers, wishlists) ---

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// --- Rate limiting ---

// IncrementRateLimit incrémente le compteur d'une fenêtre glissante
func (c *Cache) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Clés de cache usuelles

func ProductKey(id string) string  { return fmt.Sprintf("product:%s", id) }
func CartKey(userID string) string { return fmt.Sprintf("cart:%s", userID) }
func WishlistKey(userID string) string {
	return fmt.Sprintf("wishlist:%s", userID)
}
