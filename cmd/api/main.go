package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/LapakSync/lapaksync_api/internal/cache"
	"github.com/LapakSync/lapaksync_api/internal/config"
	"github.com/LapakSync/lapaksync_api/internal/database"
	"github.com/LapakSync/lapaksync_api/internal/handler"
	"github.com/LapakSync/lapaksync_api/internal/middleware"
	"github.com/LapakSync/lapaksync_api/internal/repository"
	"github.com/LapakSync/lapaksync_api/internal/service"
	"github.com/LapakSync/lapaksync_api/internal/sse"
	"github.com/LapakSync/lapaksync_api/internal/utils"
	"github.com/LapakSync/lapaksync_api/internal/worker"
	"github.com/LapakSync/lapaksync_api/pkg/meta"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Env)
	utils.InitJWT(cfg.JWTSecret)
	log.Info().Str("env", cfg.Env).Msg("starting lapaksync api")

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		fatal("database connection failed", err)
	}
	defer db.Close()

	if err := runMigrations(db.DB); err != nil {
		fatal("migration failed", err)
	}
	log.Info().Msg("migrations up to date")

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		fatal("redis connection failed", err)
	}
	defer redisClient.Close()

	metaClient := meta.NewClient(meta.Config{
		BaseURL: cfg.Meta.BaseURL,
		Version: cfg.Meta.Version,
		AppID:   cfg.Meta.AppID,
	})

	clientRepo := repository.NewClientRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	pushRepo := repository.NewPushRepository(db)
	cbRepo := repository.NewCallbackRepository(db)

	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)
	receiptCache := cache.NewReceiptCache(redisClient)

	authSvc := service.NewAuthService(clientRepo)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	clientSvc := service.NewClientService(clientRepo)
	callbackSvc := service.NewCallbackService(clientRepo, cbRepo)
	catalogSvc := service.NewCatalogService(metaClient, pushRepo, receiptCache, callbackSvc, notifier)

	imageSvc, err := service.NewImageService(&cfg.S3)
	if err != nil {
		log.Warn().Err(err).Msg("S3 service initialization failed - image upload will be disabled")
		imageSvc = nil
	}

	handlers := &Handlers{
		Health:  handler.NewHealthHandler(db, redisClient),
		Catalog: handler.NewCatalogHandler(catalogSvc),
		Push:    handler.NewPushHandler(catalogSvc),
		Image:   handler.NewImageHandler(imageSvc),
		Client:  handler.NewClientHandler(clientSvc),
		Auth:    handler.NewAuthHandler(adminAuthSvc),
		SSE:     handler.NewSSEHandler(hub),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers,
		middleware.NewAuthMiddleware(authSvc),
		middleware.NewJWTMiddleware(),
		middleware.NewClientRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.NewCallbackWorker(callbackSvc, cfg.Worker.CallbackInterval).Start(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

func fatal(msg string, err error) {
	log.Error().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Catalog *handler.CatalogHandler
	Push    *handler.PushHandler
	Image   *handler.ImageHandler
	Client  *handler.ClientHandler
	Auth    *handler.AuthHandler
	SSE     *handler.SSEHandler
}

// setupRoutes registers the merchant surface (API-key auth, rate limited)
// and the admin surface (JWT auth).
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware, jwtMiddleware *middleware.JWTMiddleware, rateLimiter *middleware.ClientRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	v1 := router.Group("/v1")
	v1.Use(authMiddleware.Handle())
	v1.Use(rateLimiter.Handle())
	{
		metaGroup := v1.Group("/meta")
		{
			metaGroup.GET("/users/:userId/businesses", handlers.Catalog.ListBusinesses)
			metaGroup.GET("/businesses/:businessId/catalogs", handlers.Catalog.ListCatalogs)
			metaGroup.GET("/catalogs/:catalogId/products", handlers.Catalog.ListProducts)
			metaGroup.POST("/catalogs/:catalogId/products", handlers.Catalog.AddProducts)
			metaGroup.DELETE("/catalogs/:catalogId/products", handlers.Catalog.DeleteProducts)
			metaGroup.GET("/catalogs/:catalogId/product-sets", handlers.Catalog.ListProductSets)
			metaGroup.POST("/catalogs/:catalogId/product-sets", handlers.Catalog.CreateProductSets)
			metaGroup.DELETE("/catalogs/:catalogId/product-sets", handlers.Catalog.DeleteProductSets)
			metaGroup.PUT("/product-sets/:setId", handlers.Catalog.UpdateProductSet)
		}

		v1.POST("/images", handlers.Image.Upload)
		v1.GET("/pushes", handlers.Push.ListPushes)
		v1.GET("/pushes/:id", handlers.Push.GetPush)
		v1.GET("/pushes/:id/receipt", handlers.Push.GetReceipt)
	}

	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	// EventSource cannot send headers, so the SSE route authenticates its own
	// query token and sits outside the JWT middleware.
	admin.GET("/sse", handlers.SSE.Stream)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.POST("/clients", handlers.Client.CreateClient)
		admin.GET("/clients", handlers.Client.ListClients)
		admin.GET("/clients/:id", handlers.Client.GetClient)
		admin.GET("/clients/by-client-id/:client_id", handlers.Client.GetClientByClientID)
		admin.PUT("/clients/:id", handlers.Client.UpdateClient)
		admin.POST("/clients/:id/regenerate", handlers.Client.RegenerateKeys)
	}
}

// runMigrations applies pending schema migrations from the migrations dir.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
