package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"testadmin/internal/clients"
	"testadmin/internal/config"
	"testadmin/internal/handlers"
	"testadmin/internal/metrics"
	"testadmin/internal/middleware"
	"testadmin/internal/models"
	"testadmin/internal/notify"
	"testadmin/internal/repositories"
	mongorepo "testadmin/internal/repositories/mongo"
	"testadmin/internal/routers"
	"testadmin/internal/scheduling"
	"testadmin/internal/services"
	"testadmin/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type appHandlers struct {
	auth    *middleware.Authenticator
	health  *handlers.HealthHandler
	tests   *handlers.TestHandler
	catalog *handlers.CatalogHandler
	results *handlers.ResultsHandler
}

func newRouter(cfg *config.Config, h appHandlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(chimw.RequestID, chimw.RealIP, chimw.Logger, chimw.Recoverer, chimw.Timeout(60*time.Second))
	router.Use(metrics.Middleware)

	routers.HealthRoutes(router, h.health)
	routers.TestRoutes(router, h.auth, h.tests)
	routers.CatalogRoutes(router, h.auth, h.catalog)
	routers.ResultsRoutes(router, h.auth, h.results)
	return router
}

// openCatalog connects the category/question database and migrates it.
func openCatalog(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.CatalogDriver {
	case config.CatalogSQLite:
		dialector = sqlite.Open(cfg.CatalogDSN)
	default:
		dialector = postgres.Open(cfg.CatalogDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Question{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog database: %w", err)
	}
	return db, nil
}

type testStore struct {
	repo  repositories.TestRepository
	ping  handlers.ReadinessCheck
	close func(context.Context) error
}

func openTestStore(ctx context.Context, cfg *config.Config) (*testStore, error) {
	if cfg.StoreBackend != config.StoreMongo {
		repo := repositories.NewMemoryTestRepository()
		return &testStore{repo: repo, ping: repo.Ping, close: func(context.Context) error { return nil }}, nil
	}

	client, err := mongorepo.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	repo, err := mongorepo.NewTestRepo(ctx, client, cfg.TestsCollection)
	if err != nil {
		return nil, err
	}
	return &testStore{repo: repo, ping: client.Ping, close: client.Disconnect}, nil
}

// newSink publishes to Redis when configured and logs otherwise.
func newSink(cfg *config.Config, logger *zap.Logger) (notify.Sink, *redis.Client) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set; notifications will only be logged")
		return notify.NewLogSink(logger), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return notify.NewRedisSink(rdb, cfg.NotifyChannelPrefix), rdb
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("store", cfg.StoreBackend),
		zap.String("catalog", cfg.CatalogDriver),
		zap.Bool("redis", cfg.RedisAddr != ""))

	ctx := context.Background()

	store, err := openTestStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open test store", zap.Error(err))
	}

	db, err := openCatalog(cfg)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}

	sink, rdb := newSink(cfg, logger)
	dispatcher := notify.NewDispatcher(sink, logger, notify.DispatcherConfig{
		Workers:        cfg.NotifyWorkers,
		QueueSize:      cfg.NotifyQueueSize,
		PublishTimeout: cfg.UpstreamTimeout,
	})

	facility := scheduling.NewCronFacility(logger)
	facility.Start()
	timers := scheduling.NewRegistry(facility, logger)

	directory := clients.NewDirectoryClient(cfg.AuthServiceURL, cfg.UpstreamTimeout, logger)
	resultsClient := clients.NewResultsClient(cfg.ResultsServiceURL, cfg.UpstreamTimeout, logger)

	testService := services.NewTestService(store.repo, timers, dispatcher, directory, logger,
		services.WithTestLinkBase(cfg.TestLinkBase),
		services.WithCallbackTimeout(cfg.UpstreamTimeout),
	)
	catalogService := services.NewCatalogService(
		&repositories.CategoryRepository{DB: db},
		&repositories.QuestionRepository{DB: db},
		logger,
	)

	checks := map[string]handlers.ReadinessCheck{"store": store.ping}
	if sqlDB, err := db.DB(); err == nil {
		checks["catalog"] = sqlDB.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	router := newRouter(cfg, appHandlers{
		auth:    middleware.NewAuthenticator(cfg.JWTSecret, logger),
		health:  handlers.NewHealthHandler(checks),
		tests:   handlers.NewTestHandler(testService, logger),
		catalog: handlers.NewCatalogHandler(catalogService, logger),
		results: handlers.NewResultsHandler(resultsClient),
	})

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Test admin service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Test admin service shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// pending timers are in memory only and are dropped here
	select {
	case <-facility.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Timed out waiting for running timer callbacks")
	}
	dispatcher.Close()

	if rdb != nil {
		_ = rdb.Close()
	}
	if err := store.close(shutdownCtx); err != nil {
		logger.Warn("Failed to close test store", zap.Error(err))
	}

	logger.Info("Test admin service exited")
}
