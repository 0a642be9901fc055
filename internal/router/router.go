package router

import (
	"time"

	"shopkeep/internal/config"
	"shopkeep/internal/handler"
	"shopkeep/internal/middleware"
	"shopkeep/internal/repository"
	"shopkeep/internal/service"
	"shopkeep/internal/worker"

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
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	listingRepo := repository.NewListingRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	storeSvc := service.NewStoreService(storeRepo, listingRepo)
	productSvc := service.NewProductService(productRepo, listingRepo, storeRepo, rdb)
	inventorySvc := service.NewInventoryService(listingRepo, movementRepo)
	saleSvc := service.NewSaleService(saleRepo, listingRepo, movementRepo, dispatcher, cfg.LowStockThreshold)
	debtSvc := service.NewDebtService(debtRepo, nil) // nil clock = wall clock

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	storesH := handler.NewStoresHandler(storeSvc)
	productsH := handler.NewProductsHandler(productSvc)
	listingsH := handler.NewListingsHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc)
	debtsH := handler.NewDebtsHandler(debtSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/price/:barcode", productsH.PriceCheck)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Sales — workers sell, admins additionally undo
		v1.POST("/sales", middleware.RequireRole("worker", "admin"), salesH.Submit)
		v1.GET("/sales", middleware.RequireRole("worker", "admin"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("worker", "admin"), salesH.Get)
		v1.GET("/sales/:id/receipt", middleware.RequireRole("worker", "admin"), salesH.Receipt)
		v1.DELETE("/sales/:id", middleware.RequireRole("admin"), salesH.Undo)

		// Debts — both roles record and collect, only admins delete
		v1.POST("/debts", middleware.RequireRole("worker", "admin"), debtsH.Create)
		v1.GET("/debts", middleware.RequireRole("worker", "admin"), debtsH.List)
		v1.GET("/debts/:id", middleware.RequireRole("worker", "admin"), debtsH.Get)
		v1.POST("/debts/:id/payments", middleware.RequireRole("worker", "admin"), debtsH.RecordPayment)
		v1.DELETE("/debts/:id", middleware.RequireRole("admin"), debtsH.Delete)

		// Catalog reads for everyone signed in
		v1.GET("/products", middleware.RequireRole("worker", "admin"), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole("worker", "admin"), productsH.Get)
		v1.GET("/listings", middleware.RequireRole("worker", "admin"), listingsH.List)
		v1.GET("/listings/:id", middleware.RequireRole("worker", "admin"), listingsH.Get)
		v1.GET("/listings/:id/movements", middleware.RequireRole("worker", "admin"), listingsH.Movements)

		// Catalog writes — admin only
		products := v1.Group("/products", middleware.RequireRole("admin"))
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
		}
		listings := v1.Group("/listings", middleware.RequireRole("admin"))
		{
			listings.PUT("", listingsH.Upsert)
			listings.POST("/:id/adjust", listingsH.AdjustStock)
		}

		stores := v1.Group("/stores", middleware.RequireRole("admin"))
		{
			stores.POST("", storesH.Create)
			stores.GET("", storesH.List)
			stores.GET("/:id", storesH.Get)
			stores.PUT("/:id", storesH.Update)
			stores.DELETE("/:id", storesH.Deactivate)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.POST("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
