// File: wanderly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wanderly/config"
	"wanderly/cron"
	"wanderly/database"
	inventoryRepo "wanderly/database/repository/inventory"
	ordersRepo "wanderly/database/repository/orders"
	"wanderly/handlers"
	"wanderly/middleware"
	"wanderly/routes"
	"wanderly/services/agent"
	"wanderly/services/booking"
	"wanderly/services/checkpoint"
	ai "wanderly/services/intelligence"
	"wanderly/services/search"
	"wanderly/services/tasks"
	"wanderly/services/weather"
	"wanderly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	utils.InitRedis()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	utils.StartHealthMonitor(rootCtx, 30*time.Second, map[string]*redis.Client{
		"checkpoint": utils.GetCheckpointCacheClient(),
		"queue":      utils.GetQueueCacheClient(),
	}, database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	stripe.Key = cfg.StripeKey

	// repositories.
	db := database.DB()
	orderRepo := ordersRepo.NewMongoOrderRepo(db)
	invRepo := inventoryRepo.NewMongoInventoryRepo(db)
	if err := orderRepo.EnsureIndexes(); err != nil {
		logger.Fatal("main: failed to create order indexes", zap.Error(err))
	}

	// services.
	orderService := booking.NewOrderService(orderRepo, cfg.LockTTL)

	var payments booking.PaymentGateway = booking.SimulatedGateway{}
	if cfg.StripeKey != "" {
		payments = booking.NewStripeGateway()
	} else {
		logger.Warn("STRIPE_KEY not set, payments are simulated")
	}

	var guides search.GuideSearcher
	if cfg.TavilyAPIKey != "" {
		guides = search.NewTavilyClient(cfg.TavilyURL, cfg.TavilyAPIKey, cfg.ProviderTimeout)
	} else {
		logger.Warn("TAVILY_API_KEY not set, travel guide lookups are disabled")
	}

	llm, err := ai.NewGeminiClient(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
	if err != nil {
		logger.Fatal("main: failed to create Gemini client", zap.Error(err))
	}
	defer llm.Close()

	store, err := checkpoint.New(cfg.CheckpointBackend, checkpoint.Deps{
		Redis: utils.GetCheckpointCacheClient(),
		Mongo: db,
		TTL:   cfg.CheckpointTTL,
	})
	if err != nil {
		logger.Fatal("main: failed to create checkpoint store", zap.Error(err))
	}

	scheduler := tasks.NewScheduler(cron.QueueRedisOpt())
	defer scheduler.Close()

	travelAgent, err := agent.New(agent.Deps{
		LLM:       llm,
		Search:    search.NewCatalogProvider(invRepo, cfg.DefaultCurrency),
		Guides:    guides,
		Weather:   weather.NewOpenMeteoClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.ProviderTimeout),
		Orders:    orderService,
		Payments:  payments,
		Rules:     booking.DefaultRuleEngine(cfg.RuleReviewAmount, cfg.BlockedDestinations, time.Now),
		Scheduler: scheduler,
		Currency:  cfg.DefaultCurrency,
	}, store)
	if err != nil {
		logger.Fatal("main: failed to build travel agent", zap.Error(err))
	}

	// background jobs.
	worker := cron.InitLockExpiryWorker(orderService)
	cron.StartLockSweeper(rootCtx, orderService, time.Minute)

	// Assemble the handler bundle and register routes.
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewAgentHandler(travelAgent),
		handlers.NewPaymentHandler(travelAgent, cfg.StripeWebhookSecret),
	)
	if _, simulated := payments.(booking.SimulatedGateway); !simulated {
		// Real payments are settled by the signed webhook only.
		handlerBundle.PaymentCallbackHandler = nil
	}
	routes.RegisterRoutes(router, handlerBundle, routes.AuthConfig{
		Secret:   cfg.JWTSecret,
		Required: cfg.AuthRequired,
	})

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.Close(ctx); err != nil {
		logger.Sugar().Errorf("main: mongo disconnect failed: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
