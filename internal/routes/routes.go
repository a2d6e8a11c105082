// Package routes câble la surface HTTP : groupes par ressource,
// CORS, authentification et allow-lists de rôles par route.
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vendora_back_end/internal/cache"
	"vendora_back_end/internal/config"
	"vendora_back_end/internal/handlers/admin"
	"vendora_back_end/internal/handlers/order"
	"vendora_back_end/internal/handlers/product"
	"vendora_back_end/internal/handlers/user"
	"vendora_back_end/internal/middleware"
	"vendora_back_end/internal/models"
)

// Handlers regroupe les handlers construits dans main, avec leurs
// dépendances déjà injectées
type Handlers struct {
	Auth     *user.AuthHandler
	Cart     *user.CartHandler
	Wishlist *user.WishlistHandler
	Product  *product.ProductHandler
	Order    *order.OrderHandler
	Admin    *admin.UserHandler
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, c *cache.Cache, h *Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.AuthRequired(cfg, c)
	sellerOrAdmin := middleware.RequireRoles(models.RoleSeller, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// Les endpoints de création de compte et de connexion sont limités
	// pour freiner le bruteforce
	loginLimiter := middleware.RateLimit(c, 10, time.Minute)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", loginLimiter, h.Auth.Register)
		users.POST("/verify", h.Auth.VerifyEmail)
		users.POST("/login", loginLimiter, h.Auth.Login)
		users.POST("/refresh", h.Auth.Refresh)
		users.POST("/forgot-password", loginLimiter, h.Auth.ForgotPassword)
		users.POST("/reset-password", h.Auth.ResetPassword)

		users.POST("/logout", auth, h.Auth.Logout)
		users.PUT("/password", auth, h.Auth.ChangePassword)
		users.GET("/me", auth, h.Auth.GetProfile)
		users.PUT("/me", auth, h.Auth.UpdateProfile)
		users.DELETE("/me", auth, h.Auth.DeleteAccount)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Product.ListProducts)
		products.GET("/search", h.Product.SearchProducts)
		products.GET("/:id", h.Product.GetProduct)
		products.GET("/:id/reviews", h.Product.ListReviews)

		products.POST("", auth, sellerOrAdmin, h.Product.CreateProduct)
		products.PUT("/:id", auth, sellerOrAdmin, h.Product.UpdateProduct)
		products.DELETE("/:id", auth, sellerOrAdmin, h.Product.DeleteProduct)
		products.POST("/:id/restore", auth, sellerOrAdmin, h.Product.RestoreProduct)
		products.PUT("/:id/discount", auth, sellerOrAdmin, h.Product.UpdateDiscount)
		products.POST("/:id/images", auth, sellerOrAdmin, h.Product.UploadImage)

		products.POST("/:id/questions", auth, h.Product.AskQuestion)
		products.PUT("/:id/questions/:question_id", auth, sellerOrAdmin, h.Product.AnswerQuestion)

		products.POST("/:id/reviews", auth, h.Product.CreateReview)
	}

	reviews := api.Group("/reviews", auth)
	{
		reviews.PUT("/:id", h.Product.UpdateReview)
		reviews.DELETE("/:id", h.Product.DeleteReview)
	}

	cart := api.Group("/cart", auth)
	{
		cart.POST("", h.Cart.AddToCart)
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.DELETE("/:product_id", h.Cart.RemoveFromCart)
		cart.PUT("/address", h.Cart.SetShippingAddress)
	}

	wishlist := api.Group("/wishlist", auth)
	{
		wishlist.POST("", h.Wishlist.AddToWishlist)
		wishlist.GET("", h.Wishlist.GetWishlist)
		wishlist.DELETE("/:product_id", h.Wishlist.RemoveFromWishlist)
	}

	orders := api.Group("/orders", auth)
	{
		orders.POST("", h.Order.Checkout)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PUT("/:id/status", sellerOrAdmin, h.Order.UpdateStatus)
		orders.PUT("/:id/cancel", h.Order.CancelOrder)
	}

	payment := api.Group("/payment", auth)
	{
		payment.GET("/invoice/:id", h.Order.DownloadInvoice)
	}

	coupons := api.Group("/coupons", auth, sellerOrAdmin)
	{
		coupons.POST("", h.Order.CreateCoupon)
		coupons.GET("", h.Order.ListCoupons)
		coupons.GET("/:code", h.Order.GetCoupon)
		coupons.PUT("/:code", h.Order.UpdateCoupon)
		coupons.DELETE("/:code", h.Order.DeleteCoupon)
	}

	refunds := api.Group("/refunds", auth)
	{
		refunds.POST("", h.Order.RequestRefund)
		refunds.GET("", h.Order.ListRefunds)
		refunds.GET("/:id", h.Order.GetRefund)
		refunds.PUT("/:id/status", sellerOrAdmin, h.Order.UpdateRefundStatus)
	}

	revenue := api.Group("/revenue", auth)
	{
		revenue.GET("/total", adminOnly, h.Order.TotalRevenue)
		revenue.GET("/buckets/:granularity", adminOnly, h.Order.BucketRevenue)
		revenue.GET("/range", adminOnly, h.Order.RangeRevenue)
		revenue.GET("/sellers", adminOnly, h.Order.SellerBreakdown)
		revenue.GET("/me", middleware.RequireRoles(models.RoleSeller), h.Order.MyRevenue)
	}

	seller := api.Group("/seller", auth, middleware.RequireRoles(models.RoleSeller))
	{
		seller.GET("/products", h.Product.MyProducts)
		seller.GET("/revenue", h.Order.MyRevenue)
	}

	adminGroup := api.Group("/admin", auth, adminOnly)
	{
		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.PUT("/users/:id/ban", h.Admin.BanUser)
		adminGroup.PUT("/users/:id/unban", h.Admin.UnbanUser)
		adminGroup.GET("/products/deleted", h.Product.DeletedProducts)
		adminGroup.POST("/products/:id/restore", h.Product.RestoreProduct)
		adminGroup.GET("/dashboard", h.Order.DashboardStats)
	}
}
