package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/config"
	"vendora_back_end/internal/database"
	"vendora_back_end/internal/handlers/admin"
	"vendora_back_end/internal/handlers/order"
	"vendora_back_end/internal/handlers/product"
	"vendora_back_end/internal/handlers/user"
	"vendora_back_end/internal/payment"
	"vendora_back_end/internal/routes"
	"vendora_back_end/internal/search"
	"vendora_back_end/internal/services"
	"vendora_back_end/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration invalide : ", err)
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("❌ Connexion aux bases impossible : ", err)
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("❌ Création des index impossible : ", err)
	}

	c := cache.New(db.Redis)
	mailer := utils.NewMailer(cfg)
	index := search.New(cfg)
	images := services.NewImageStore(ctx, cfg)

	if cfg.StripeSecretKey == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	stripeGW := payment.NewStripeGateway(cfg.StripeSecretKey)
	paypalGW := payment.NewPayPalGateway(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalBaseURL)
	log.Println("✅ Gateways de paiement initialisés")

	h := &routes.Handlers{
		Auth:     &user.AuthHandler{DB: db, Cache: c, Mailer: mailer, Cfg: cfg},
		Cart:     &user.CartHandler{DB: db, Cache: c},
		Wishlist: &user.WishlistHandler{DB: db, Cache: c},
		Product:  &product.ProductHandler{DB: db, Cache: c, Index: index, Images: images},
		Order: &order.OrderHandler{
			DB:     db,
			Cache:  c,
			Cfg:    cfg,
			Mailer: mailer,
			Stripe: stripeGW,
			PayPal: paypalGW,
		},
		Admin: &admin.UserHandler{DB: db, Cache: c},
	}

	r := gin.Default()
	routes.RegisterRoutes(r, cfg, c, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("🚀 Serveur Vendora lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Serveur HTTP : ", err)
		}
	}()

	// Arrêt propre : on finit les requêtes en cours puis on ferme les connexions
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Arrêt du serveur…")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️ Arrêt forcé :", err)
	}
	db.Close(shutdownCtx)
	log.Println("✅ Serveur arrêté")
}
