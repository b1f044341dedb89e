package router

import (
	"time"

	"delipos/internal/config"
	"delipos/internal/handler"
	"delipos/internal/middleware"
	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	cartStore := repository.NewCartStore(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	catalogSvc := service.NewCatalogService(productRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)
	txnSvc := service.NewTransactionService(txnRepo, productRepo, dispatcher)
	checkoutSvc := service.NewCheckoutService(
		catalogSvc, settingsSvc, txnSvc, cartStore,
		time.Duration(cfg.ScanDebounceMs)*time.Millisecond,
	)
	reportSvc := service.NewReportService(txnRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	priceH := handler.NewPriceCheckHandler(productRepo, rdb)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	menuH := handler.NewMenuHandler()
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	txnsH := handler.NewTransactionsHandler(txnSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Price check kiosk — no auth required
	r.GET("/v1/price/:upc", priceH.GetByUPC)

	// Protected routes. Roles: cashier, manager — declared per endpoint.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/products", middleware.RequireRole("cashier", "manager"), productsH.List)
		v1.GET("/products/search", middleware.RequireRole("cashier", "manager"), productsH.Search)
		v1.POST("/products", middleware.RequireRole("cashier", "manager"), productsH.Create)
		prods := v1.Group("/products", middleware.RequireRole("manager"))
		{
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.POST("/:id/inventory", productsH.AdjustInventory)
		}

		v1.GET("/menu", middleware.RequireRole("cashier", "manager"), menuH.Get)
		v1.GET("/menu/options/:kind", middleware.RequireRole("cashier", "manager"), menuH.Options)

		v1.GET("/stores/:store/settings", middleware.RequireRole("cashier", "manager"), settingsH.Get)
		v1.PUT("/stores/:store/settings", middleware.RequireRole("manager"), settingsH.Update)

		co := v1.Group("/stores/:store/checkout", middleware.RequireRole("cashier", "manager"))
		{
			co.POST("/scan", checkoutH.Scan)
			co.POST("/scan/confirm-similar", checkoutH.ConfirmSimilar)
			co.POST("/scan/reject-similar", checkoutH.RejectSimilar)
			co.POST("/scan/create-product", checkoutH.CreatePending)
			co.POST("/scan/manual", checkoutH.ManualPending)
			co.POST("/scan/cancel", checkoutH.CancelPending)

			co.GET("/cart", checkoutH.Cart)
			co.POST("/cart/compose", checkoutH.Compose)
			co.POST("/cart/open-item", checkoutH.AddOpenItem)
			co.POST("/cart/quantity", checkoutH.UpdateQuantity)
			co.DELETE("/cart/line", checkoutH.RemoveLine)
			co.DELETE("/cart", checkoutH.ClearCart)

			co.POST("/pay", checkoutH.Begin)
			co.POST("/pay/method", checkoutH.SelectMethod)
			co.POST("/pay/tender", checkoutH.Tender)
			co.POST("/pay/tender/clear", checkoutH.ClearTender)
			co.POST("/pay/cash/submit", checkoutH.SubmitCash)
			co.POST("/pay/cash/confirm", checkoutH.ConfirmCash)
			co.POST("/pay/cash/decline", checkoutH.DeclineCash)
			co.POST("/pay/card/confirm", checkoutH.ConfirmCard)
			co.POST("/pay/card/decline", checkoutH.DeclineCard)
			co.POST("/pay/next", checkoutH.NextTransaction)
			co.POST("/pay/cancel", checkoutH.CancelPayment)
		}

		v1.GET("/transactions", middleware.RequireRole("cashier", "manager"), txnsH.List)
		v1.GET("/reports/daily", middleware.RequireRole("manager"), reportsH.Daily)

		v1.POST("/users", middleware.RequireRole("manager"), authH.CreateUser)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
