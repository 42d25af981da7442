package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/auth"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/handlers"
	"github.com/vetaris/storefront-golang/internal/logger"
	"github.com/vetaris/storefront-golang/internal/middleware"
)

// Options are the router settings that do not live on the handlers.
type Options struct {
	Tokens        *auth.Tokens
	SessionTTL    time.Duration
	SecureCookies bool
	CORSOrigins   []string
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// --- CORS first, so preflights never start a session ---
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(logger.GinLogger(h.Log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.UploadDir != "" {
		router.Static("/uploads", h.UploadDir)
	}

	site := router.Group("/")
	site.Use(middleware.Session(opts.Tokens, opts.SessionTTL, opts.SecureCookies, h.Log))
	{
		// --- Catalog (Public) ---
		site.GET("/", h.GetCatalog)
		site.GET("/products", h.GetCatalog)
		site.GET("/products/:id", h.GetProduct)
		site.GET("/categories", h.GetAllCategories)
		site.GET("/categories/:slug", h.GetCategory)
		site.POST("/carousel/:direction", h.SlideCarousel)
		site.GET("/blog", h.ListPublishedPosts)

		// --- Cart ---
		site.GET("/cart", h.GetCart)
		site.POST("/cart/items/:product_id", h.AddToCart)
		site.POST("/cart/items/:product_id/remove", h.RemoveFromCart)
		site.POST("/cart/checkout", h.CartCheckout)

		// --- Checkout ---
		site.GET("/checkout", h.EnterCheckout)
		site.POST("/checkout/address", h.SubmitAddress)
		site.POST("/checkout/back", h.BackToAddress)
		site.POST("/checkout/payment", h.SubmitPayment)
		site.POST("/checkout/format", h.FormatPayment)

		// --- Auth & Account ---
		site.POST("/login", h.Login)
		site.POST("/register", h.Register)
		site.POST("/logout", h.Logout)
		site.GET("/me", h.Me)
		site.GET("/account", h.GetAccount)

		// --- Admin (authenticated admins only) ---
		admin := site.Group("/admin")
		admin.Use(middleware.AdminOnly(h.AuthStatus, checkout.AccountPath))
		{
			admin.GET("", h.GetAdminDashboard)

			admin.GET("/products", h.AdminListProducts)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/orders", h.AdminListOrders)
			admin.GET("/orders/:id", h.AdminGetOrder)
			admin.POST("/orders/:id/status", h.UpdateOrderStatus)

			admin.GET("/blog", h.AdminListPosts)
			admin.POST("/blog", h.CreatePost)
			admin.PUT("/blog/:id", h.UpdatePost)
			admin.DELETE("/blog/:id", h.DeletePost)

			admin.POST("/uploads", h.UploadImage)
		}
	}

	return router
}
