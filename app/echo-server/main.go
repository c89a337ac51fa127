package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"myCampaignEngine/app/echo-server/router"
	"myCampaignEngine/business/bandit"
	"myCampaignEngine/internal/middleware"
	psqlRepo "myCampaignEngine/internal/repository/postgres"
	redisRepo "myCampaignEngine/internal/repository/redis"
	"myCampaignEngine/internal/rest"
	"myCampaignEngine/pkg/config"
	"myCampaignEngine/pkg/database"
	redisdb "myCampaignEngine/pkg/database/redis"
	"myCampaignEngine/pkg/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting campaign decision engine", "version", cfg.App.Version)

	engineCfg := bandit.Config{
		PriorAlpha:         cfg.Bandit.PriorAlpha,
		PriorBeta:          cfg.Bandit.PriorBeta,
		SuccessWeight:      cfg.Bandit.SuccessWeight,
		FailureWeight:      cfg.Bandit.FailureWeight,
		HoldoutPercent:     cfg.Bandit.HoldoutPercent,
		Seed:               cfg.Bandit.Seed,
		FrequencyCapPerDay: cfg.Bandit.FrequencyCapPerDay,
		PersistRetries:     cfg.Bandit.PersistRetries,
	}

	// Init repo
	var (
		actionRepo   bandit.ActionRepository
		userRepo     bandit.UserRepository
		beliefRepo   bandit.BeliefRepository
		decisionRepo bandit.DecisionRepository
		contacts     bandit.FrequencyCounter = bandit.NewMemoryFrequencyCounter()
	)

	if cfg.Database.Enabled {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		logger.Info("Database connected successfully")

		banditRepo := psqlRepo.NewBanditRepository(db)
		actionRepo = psqlRepo.NewActionRepository(db)
		userRepo = psqlRepo.NewUserRepository(db)
		beliefRepo = banditRepo
		decisionRepo = banditRepo
	} else {
		logger.Warn("Database disabled, running in memory only")
	}

	if cfg.Redis.Enabled {
		client, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer func() {
			if err := redisdb.CloseRedisClient(client); err != nil {
				logger.Error("Failed to close redis", "error", err)
			}
		}()
		contacts = redisRepo.NewFrequencyRepository(client)
		logger.Info("Redis connected successfully")
	}

	// Init service
	catalog := bandit.NewActionCatalog(actionRepo, engineCfg.HoldoutPercent,
		bandit.DefaultGuardrails(contacts, engineCfg.FrequencyCapPerDay)...)

	banditService, err := bandit.NewBanditService(engineCfg, catalog, userRepo, beliefRepo, decisionRepo, contacts)
	if err != nil {
		logger.Fatal("Invalid bandit config", "error", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	seed, err := bandit.ParseActionSeed(cfg.Bandit.CatalogSeed)
	if err != nil {
		logger.Fatal("Invalid catalog seed", "error", err)
	}
	if err := catalog.Seed(startCtx, seed); err != nil {
		logger.Fatal("Failed to seed catalog", "error", err)
	}
	if err := catalog.Refresh(startCtx); err != nil {
		logger.Fatal("Failed to load catalog", "error", err)
	}
	if err := banditService.Warm(startCtx); err != nil {
		logger.Fatal("Failed to warm bandit state", "error", err)
	}
	cancelStart()

	// Init handler
	banditHandler := rest.NewBanditHandler(banditService)
	metricsHandler := rest.NewMetricsHandler(banditService)
	adminHandler := rest.NewBanditAdminHandler(banditService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	api := e.Group("/api/v1")
	router.SetBanditRoutes(api, banditHandler)
	router.SetMetricsRoutes(api, metricsHandler)
	router.SetBanditAdminRoutes(api, adminHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
