package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/auth"
	"gastro-backend/internal/cache"
	"gastro-backend/internal/cashregister"
	"gastro-backend/internal/chat"
	"gastro-backend/internal/config"
	"gastro-backend/internal/database"
	"gastro-backend/internal/events"
	"gastro-backend/internal/inventory"
	"gastro-backend/internal/locations"
	"gastro-backend/internal/models"
	"gastro-backend/internal/promotions"
	"gastro-backend/internal/purchasing"
	"gastro-backend/internal/recipes"
	"gastro-backend/internal/reports"
	"gastro-backend/internal/sales"
	"gastro-backend/internal/suppliers"
	"gastro-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	db := database.DB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis backs the promotion cache and the live sales counters; Kafka
	// carries sale events to the counters. Both are optional.
	var (
		promoCache *cache.RedisCache
		counters   *events.RedisCounters
		publisher  events.Publisher = events.NopPublisher{}
	)
	if rdb := cfg.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		promoCache = cache.NewRedisCache(rdb, cfg.PromotionCacheTTL)
		counters = events.NewRedisCounters(rdb)
	}
	switch {
	case cfg.KafkaBroker != "":
		writer := cfg.NewKafkaWriter()
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer)

		if counters != nil {
			reader := cfg.NewKafkaReader("gastro-sales-aggregator")
			defer reader.Close()
			go events.NewConsumer(reader, counters).Start(ctx)
		}
	case counters != nil:
		publisher = events.InProcessPublisher{Consumer: events.NewConsumer(nil, counters)}
	}

	invStore := inventory.NewStore(db)
	recipeStore := recipes.NewStore(db, invStore)
	promoSvc := promotions.NewService(promotions.NewStore(db), promoCache)
	saleSvc := sales.NewService(cfg, sales.Deps{
		Repo:       sales.NewStore(db),
		Recipes:    recipeStore,
		Stock:      invStore,
		Promotions: promoSvc,
		Publisher:  publisher,
		QR:         sales.ReceiptQR{BaseURL: cfg.PublicBaseURL},
	})
	orderStore := purchasing.NewStore(db)
	registerStore := cashregister.NewStore(db)
	var liveCounters reports.LiveCounters
	if counters != nil {
		liveCounters = counters
	}
	reportSvc := reports.NewService(db, liveCounters)
	assistant := chat.NewAssistant(cfg.ChatEndpoint)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Users, roles and locations. Route-level middleware: a Use on an
	// unprefixed group would apply to every route registered after it.
	admin := auth.RequireRole(models.RoleAdmin)

	protected.Get("/users", admin, users.ListUsersHandler(db))
	protected.Post("/users", admin, users.CreateUserHandler(db))
	protected.Put("/users/:id", admin, users.UpdateUserHandler(db))
	protected.Delete("/users/:id", admin, users.DeleteUserHandler(db))

	protected.Get("/roles/permissions", admin, users.PermissionsHandler())
	protected.Get("/roles", admin, users.ListRolesHandler(db))
	protected.Post("/roles", admin, users.CreateRoleHandler(db))
	protected.Put("/roles/:id", admin, users.UpdateRoleHandler(db))
	protected.Delete("/roles/:id", admin, users.DeleteRoleHandler(db))

	protected.Get("/locations", locations.ListLocationsHandler(db))
	protected.Get("/locations/:id", locations.GetLocationHandler(db))
	protected.Post("/locations", admin, locations.CreateLocationHandler(db))
	protected.Put("/locations/:id", admin, locations.UpdateLocationHandler(db))
	protected.Delete("/locations/:id", admin, locations.DeleteLocationHandler(db))

	// Inventory
	invManage := auth.RequirePermission(models.PermInventoryManage)
	protected.Get("/inventory", inventory.ListItemsHandler(invStore))
	protected.Get("/inventory/movements", inventory.ListMovementsHandler(invStore))
	protected.Get("/inventory/:id", inventory.GetItemHandler(invStore))
	protected.Post("/inventory", invManage, inventory.CreateItemHandler(invStore))
	protected.Post("/inventory/import", invManage, inventory.ImportItemsHandler(invStore))
	protected.Post("/inventory/movements", invManage, inventory.CreateMovementHandler(invStore))
	protected.Put("/inventory/:id", invManage, inventory.UpdateItemHandler(invStore))
	protected.Delete("/inventory/:id", invManage, inventory.DeleteItemHandler(invStore))

	protected.Get("/alerts/stock-critical", inventory.CriticalStockHandler(invStore))
	protected.Get("/alerts/stock-low", inventory.LowStockHandler(invStore))
	protected.Get("/alerts/recipes-low-margin", inventory.LowMarginHandler(invStore))
	protected.Get("/alerts/all", inventory.AllAlertsHandler(invStore))

	// Recipes
	recipeManage := auth.RequirePermission(models.PermRecipesManage)
	protected.Get("/recipes", recipes.ListRecipesHandler(recipeStore))
	protected.Get("/recipes/:id", recipes.GetRecipeHandler(recipeStore))
	protected.Get("/recipes/:id/availability", recipes.AvailabilityHandler(recipeStore))
	protected.Post("/recipes", recipeManage, recipes.CreateRecipeHandler(recipeStore))
	protected.Put("/recipes/:id", recipeManage, recipes.UpdateRecipeHandler(recipeStore))
	protected.Delete("/recipes/:id", recipeManage, recipes.DeleteRecipeHandler(recipeStore))

	// Sales
	salesCreate := auth.RequirePermission(models.PermSalesCreate)
	protected.Post("/sales/quote", salesCreate, sales.QuoteHandler(saleSvc))
	protected.Post("/sales", salesCreate, sales.CreateSaleHandler(saleSvc))
	protected.Get("/sales", sales.ListSalesHandler(saleSvc))
	protected.Get("/sales/stats/today", sales.TodayStatsHandler(saleSvc))
	protected.Get("/sales/:id", sales.GetSaleHandler(saleSvc))
	protected.Get("/sales/:id/qrcode", sales.SaleQRCodeHandler(saleSvc))
	protected.Delete("/sales/:id", auth.RequirePermission(models.PermSalesVoid), sales.VoidSaleHandler(saleSvc))

	// Promotions
	promoManage := auth.RequirePermission(models.PermPromotionsManage)
	protected.Get("/promotions", promotions.ListPromotionsHandler(promoSvc))
	protected.Get("/promotions/active/current", promotions.ActivePromotionsHandler(promoSvc))
	protected.Get("/promotions/:id", promotions.GetPromotionHandler(promoSvc))
	protected.Post("/promotions/:id/resolve", promotions.ResolvePromotionHandler(promoSvc))
	protected.Post("/promotions", promoManage, promotions.CreatePromotionHandler(promoSvc))
	protected.Put("/promotions/:id", promoManage, promotions.UpdatePromotionHandler(promoSvc))
	protected.Delete("/promotions/:id", promoManage, promotions.DeletePromotionHandler(promoSvc))

	// Suppliers and purchase orders
	supplierManage := auth.RequirePermission(models.PermSuppliersManage)
	protected.Get("/suppliers", suppliers.ListSuppliersHandler(db))
	protected.Get("/suppliers/:id", suppliers.GetSupplierHandler(db))
	protected.Post("/suppliers", supplierManage, suppliers.CreateSupplierHandler(db))
	protected.Put("/suppliers/:id", supplierManage, suppliers.UpdateSupplierHandler(db))
	protected.Delete("/suppliers/:id", supplierManage, suppliers.DeleteSupplierHandler(db))

	orders := protected.Group("/purchase-orders")
	orders.Use(auth.RequirePermission(models.PermPurchasingManage))
	orders.Get("/", purchasing.ListOrdersHandler(orderStore))
	orders.Get("/:id", purchasing.GetOrderHandler(orderStore))
	orders.Post("/", purchasing.CreateOrderHandler(orderStore))
	orders.Post("/:id/approve", purchasing.ApproveOrderHandler(orderStore))
	orders.Post("/:id/receive", purchasing.ReceiveOrderHandler(orderStore))
	orders.Post("/:id/cancel", purchasing.CancelOrderHandler(orderStore))

	// Cash register
	register := protected.Group("/cash-register")
	register.Use(salesCreate)
	register.Get("/status", cashregister.StatusHandler(registerStore))
	register.Post("/open", cashregister.OpenHandler(registerStore))
	register.Post("/:id/close", cashregister.CloseHandler(registerStore))

	// Reports
	reportRoutes := protected.Group("/reports")
	reportRoutes.Use(auth.RequirePermission(models.PermReportsView))
	reportRoutes.Get("/summary", reports.SummaryHandler(reportSvc))
	reportRoutes.Get("/monthly", reports.MonthlyHandler(reportSvc))
	reportRoutes.Get("/categories", reports.CategoriesHandler(reportSvc))
	reportRoutes.Get("/margins", reports.MarginsHandler(reportSvc))
	reportRoutes.Get("/payment-methods", reports.PaymentMethodsHandler(reportSvc))
	reportRoutes.Get("/export", reports.ExportHandler(reportSvc))
	reportRoutes.Get("/live", reports.LiveHandler(reportSvc))

	protected.Post("/chat", chat.ChatHandler(chat.NewStore(db), assistant))

	// Audit
	protected.Get("/audit-logs", admin, audit.ListAuditLogsHandler(db))
	protected.Post("/audit-logs/:id/undo", admin, audit.UndoAuditLogHandler(db, func(c *fiber.Ctx, entityType string) {
		if entityType == audit.EntityPromotion {
			promoSvc.Invalidate(c.Context())
		}
	}))

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("[WARN] shutdown: %v", err)
		}
	}()

	log.Printf("Server listening on :%s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
