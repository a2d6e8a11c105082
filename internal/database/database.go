package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vendora_back_end/internal/config"
)

// DB regroupe les connexions persistantes (MongoDB + Redis), construites
// au démarrage et passées explicitement aux handlers.
type DB struct {
	Client *mongo.Client
	Mongo  *mongo.Database
	Redis  *redis.Client
}

// Connect ouvre MongoDB et Redis puis vérifie les deux connexions
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connexion MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	log.Println("✅ Connecté à MongoDB")

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connexion Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")

	return &DB{
		Client: client,
		Mongo:  client.Database(cfg.MongoDatabase),
		Redis:  rdb,
	}, nil
}

// Close ferme proprement les connexions
func (db *DB) Close(ctx context.Context) {
	if err := db.Client.Disconnect(ctx); err != nil {
		log.Printf("⚠️  Erreur fermeture MongoDB: %v", err)
	}
	if err := db.Redis.Close(); err != nil {
		log.Printf("⚠️  Erreur fermeture Redis: %v", err)
	}
	log.Println("🔌 Connexions fermées")
}

// --- Collections ---

func (db *DB) Users() *mongo.Collection     { return db.Mongo.Collection("users") }
func (db *DB) Products() *mongo.Collection  { return db.Mongo.Collection("products") }
func (db *DB) Carts() *mongo.Collection     { return db.Mongo.Collection("carts") }
func (db *DB) Orders() *mongo.Collection    { return db.Mongo.Collection("orders") }
func (db *DB) Coupons() *mongo.Collection   { return db.Mongo.Collection("coupons") }
func (db *DB) Refunds() *mongo.Collection   { return db.Mongo.Collection("refunds") }
func (db *DB) Reviews() *mongo.Collection   { return db.Mongo.Collection("reviews") }
func (db *DB) Wishlists() *mongo.Collection { return db.Mongo.Collection("wishlists") }

// EnsureIndexes crée les index d'unicité exigés par le modèle de données :
// e-mail utilisateur, code coupon, un panier et une wishlist par acheteur,
// un avis par utilisateur et par produit.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{db.Users(), mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{db.Coupons(), mongo.IndexModel{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}},
		{db.Carts(), mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique}},
		{db.Wishlists(), mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique}},
		{db.Reviews(), mongo.IndexModel{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		// Index de lecture pour les parcours fréquents
		{db.Products(), mongo.IndexModel{Keys: bson.D{{Key: "seller_id", Value: 1}}}},
		{db.Products(), mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
		{db.Orders(), mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}},
		{db.Orders(), mongo.IndexModel{Keys: bson.D{{Key: "items.seller_id", Value: 1}}}},
		{db.Refunds(), mongo.IndexModel{Keys: bson.D{{Key: "order_id", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("index %s: %w", idx.coll.Name(), err)
		}
	}

	log.Println("✅ Index MongoDB en place")
	return nil
}
