package routes

import (
	"github.com/gin-gonic/gin"

	"freshcart-backend/cart"
	"freshcart-backend/config"
	"freshcart-backend/handlers"
	"freshcart-backend/middleware"
	"freshcart-backend/store"
)

// Register attaches every route to the engine. Everything under the
// authed group trusts the user id set by the auth middleware.
func Register(r *gin.Engine, cfg config.Config, s *store.Store, svc *cart.Service) {
	secret := []byte(cfg.JWTSecret)

	// Auth
	r.POST("/api/register", handlers.Register(s))
	r.POST("/api/login", handlers.Login(s, secret))

	// Products
	r.GET("/api/products", handlers.ListProducts(s))
	r.GET("/api/products/:productId", handlers.GetProduct(s))
	r.POST("/api/products", handlers.CreateProduct(s))

	auth := r.Group("/api", middleware.AuthRequired(secret))
	{
		auth.GET("/user/profile", handlers.GetProfile(s))
		auth.PUT("/user/profile", handlers.UpdateProfile(s))

		// Cart
		auth.GET("/cart", handlers.GetCart(svc))
		auth.POST("/cart", handlers.AddToCart(svc))
		auth.PUT("/cart/:productId", handlers.UpdateCartItem(svc))
		auth.DELETE("/cart/:productId", handlers.RemoveCartItem(svc))
		auth.POST("/cart/clear", handlers.ClearCart(svc))

		// Wishlist
		auth.GET("/wishlist", handlers.GetWishlist(s))
		auth.POST("/wishlist", handlers.AddToWishlist(s))
		auth.DELETE("/wishlist/:productId", handlers.RemoveFromWishlist(s))

		// Orders
		auth.GET("/orders", handlers.ListOrders(s))
		auth.POST("/orders", handlers.PlaceOrder(svc))
		auth.GET("/orders/:orderId", handlers.GetOrder(s))
		auth.PUT("/orders/:orderId/status", handlers.UpdateOrderStatus(s))
	}
}
