package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "stockwise/api/swagger" // swagger docs
	"stockwise/internal/auth"
	"stockwise/internal/cache"
	"stockwise/internal/config"
	"stockwise/internal/database"
	"stockwise/internal/handler"
	"stockwise/internal/logger"
	"stockwise/internal/middleware"
	"stockwise/internal/repository"
	"stockwise/internal/service"
	"stockwise/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Stockwise Inventory API
// @version         1.0
// @description     Catalog, variant inventory and order management with an audited stock ledger.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger isn't configured yet
		bootLog := zerolog.New(zerolog.NewConsoleWriter())
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DSN(), cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("connected to PostgreSQL")

	var store cache.Cache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()
		store = cache.NewRedisCache(client)
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("redis cache enabled")
	} else {
		log.Info().Msg("REDIS_ADDR not set, caching disabled")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authMW := middleware.NewAuth(tokens, !cfg.IsDevelopment())

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log, cfg.AllowedOrigins())
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, txManager, tokens, cfg.RefreshTokenTTL)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, auditRepo, txManager, store, cfg.CacheTTL)
	productService := service.NewProductService(productRepo, categoryRepo, variantRepo, auditRepo, txManager, store, cfg.CacheTTL)
	variantService := service.NewVariantService(variantRepo, productRepo, inventoryRepo, orderRepo, auditRepo, txManager, store)
	inventoryService := service.NewInventoryService(inventoryRepo, variantRepo, userRepo, txManager, store, wsHub)
	orderService := service.NewOrderService(orderRepo, variantRepo, auditRepo, txManager)
	statisticsService := service.NewStatisticsService(statsRepo, productRepo, variantRepo, categoryRepo)
	auditService := service.NewAuditService(auditRepo)

	if err := userService.EnsureAdmin(log.WithContext(ctx), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, authMW, cfg.RefreshTokenTTL)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService, variantService)
	inventoryHandler := handler.NewInventoryHandler(variantService, inventoryService)
	orderHandler := handler.NewOrderHandler(orderService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DEGRADED"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "wsClients": wsHub.ClientCount()})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokens)
	})

	// API Routing
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	categoryHandler.RegisterRoutes(api, authMW)
	productHandler.RegisterRoutes(api, authMW)
	inventoryHandler.RegisterRoutes(api, authMW)
	orderHandler.RegisterRoutes(api, authMW)
	statisticsHandler.RegisterRoutes(api, authMW)
	auditHandler.RegisterRoutes(api, authMW)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
