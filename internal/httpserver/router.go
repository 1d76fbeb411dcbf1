package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/language"
	"storefront/internal/logging"
	"storefront/internal/media"
	"storefront/internal/metrics"
	"storefront/internal/service/analytics"
	"storefront/internal/service/auth"
	"storefront/internal/service/catalog"
)

// CatalogService is the product and brand surface used by the handlers.
type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)

	AdminListProducts(ctx context.Context) ([]domain.Product, error)
	AdminGetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateVariant(ctx context.Context, productID string, in catalog.VariantInput) (*domain.Variant, error)
	UpdateVariant(ctx context.Context, variantID string, in catalog.VariantInput) (*domain.Variant, error)
	SetStock(ctx context.Context, variantID string, quantity int) (*domain.Variant, error)
	LowStock(ctx context.Context, threshold int) ([]domain.StockAlert, error)
	AdminListBrands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, in catalog.BrandInput) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id string, in catalog.BrandInput) (*domain.Brand, error)
}

// OrderService stores orders and moves them through the status workflow.
type OrderService interface {
	checkout.OrderCreator
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type AnalyticsService interface {
	Report(ctx context.Context, from, to time.Time) (analytics.Report, error)
	Dashboard(ctx context.Context) (analytics.Dashboard, error)
}

type AuthService interface {
	Login(email, password string) (*auth.Token, error)
	Verify(token string) (*auth.Claims, error)
}

// Deps carries the services the router is built from.
type Deps struct {
	Catalog    CatalogService
	Categories CategoryService
	Orders     OrderService
	Analytics  AnalyticsService
	Auth       AuthService
	Uploads    media.Uploader
	Carts      *cart.Sessions
	Languages  *language.Preferences
	Notifier   checkout.Notifier

	CheckoutClearDelay time.Duration
	NotifyTimeout      time.Duration
	CORSOrigins        []string
	// Ready reports whether backing stores are reachable. Nil means not ready.
	Ready func(ctx context.Context) error
}

type handlers struct {
	logger    *zap.Logger
	deps      Deps
	checkouts *checkoutTracker
}

func newHandlers(logger *zap.Logger, deps Deps) *handlers {
	if deps.Uploads == nil {
		deps.Uploads = media.Disabled{}
	}
	return &handlers{
		logger:    logging.OrNop(logger).Named("http"),
		deps:      deps,
		checkouts: newCheckoutTracker(deps.Carts),
	}
}

// buildRouter wires routes for the API.
func buildRouter(h *handlers) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = media.MaxUploadBytes
	router.Use(logging.GinMiddleware(h.logger), gin.Recovery(), metrics.GinMiddleware())
	if len(h.deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", sessionHeader},
			ExposeHeaders:    []string{sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(h.deps.Ready))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", sessionMiddleware())
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/brands", h.listBrands)
	api.GET("/categories", h.listCategories)
	api.GET("/language", h.getLanguage)
	api.PUT("/language", h.setLanguage)
	api.POST("/language/toggle", h.toggleLanguage)

	api.GET("/cart", h.getCart)
	api.POST("/cart/lines", h.addCartLine)
	api.PATCH("/cart/lines/:productId/:variantId", h.updateCartLine)
	api.DELETE("/cart/lines/:productId/:variantId", h.removeCartLine)
	api.DELETE("/cart", h.clearCart)
	api.POST("/cart/open", h.openCart)
	api.POST("/cart/close", h.closeCart)

	api.POST("/checkout", h.checkout)

	router.POST("/api/admin/login", h.adminLogin)
	admin := router.Group("/api/admin", h.adminAuth())
	admin.GET("/products", h.adminListProducts)
	admin.POST("/products", h.adminCreateProduct)
	admin.GET("/products/:id", h.adminGetProduct)
	admin.PUT("/products/:id", h.adminUpdateProduct)
	admin.DELETE("/products/:id", h.adminDeleteProduct)
	admin.POST("/products/:id/variants", h.adminCreateVariant)
	admin.PUT("/variants/:id", h.adminUpdateVariant)
	admin.PUT("/variants/:id/stock", h.adminSetStock)

	admin.GET("/brands", h.adminListBrands)
	admin.POST("/brands", h.adminCreateBrand)
	admin.PUT("/brands/:id", h.adminUpdateBrand)

	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id", h.adminGetOrder)
	admin.PATCH("/orders/:id/status", h.adminUpdateOrderStatus)

	admin.GET("/analytics", h.adminAnalytics)
	admin.GET("/inventory/low-stock", h.adminLowStock)
	admin.GET("/dashboard", h.adminDashboard)
	admin.POST("/uploads", h.adminUpload)

	return router
}
