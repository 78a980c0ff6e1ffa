package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"testadmin/internal/clients"
	"testadmin/internal/config"
	"testadmin/internal/handlers"
	"testadmin/internal/middleware"
	"testadmin/internal/models"
	"testadmin/internal/notify"
	"testadmin/internal/repositories"
	"testadmin/internal/scheduling"
	"testadmin/internal/services"

	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreBackend:  config.StoreMemory,
		CatalogDriver: config.CatalogSQLite,
		CatalogDSN:    "file:" + filepath.Join(t.TempDir(), "catalog.db"),
		JWTSecret:     "secret",
		CORSOrigins:   []string{"http://localhost:3000"},
	}
}

func TestOpenCatalogSQLite(t *testing.T) {
	db, err := openCatalog(testConfig(t))
	if err != nil {
		t.Fatalf("openCatalog returned error: %v", err)
	}
	if !db.Migrator().HasTable(&models.Question{}) {
		t.Fatalf("expected questions table to be migrated")
	}
}

func TestOpenTestStoreMemory(t *testing.T) {
	store, err := openTestStore(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("openTestStore returned error: %v", err)
	}
	if _, ok := store.repo.(*repositories.MemoryTestRepository); !ok {
		t.Fatalf("expected memory repository, got %T", store.repo)
	}
	if err := store.ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewSinkFallsBackToLog(t *testing.T) {
	sink, rdb := newSink(testConfig(t), zap.NewNop())
	if rdb != nil {
		t.Fatalf("expected no redis client")
	}
	if _, ok := sink.(*notify.LogSink); !ok {
		t.Fatalf("expected LogSink, got %T", sink)
	}

	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:6379"
	cfg.NotifyChannelPrefix = "n."
	sink, rdb = newSink(cfg, zap.NewNop())
	defer rdb.Close()
	if _, ok := sink.(*notify.RedisSink); !ok {
		t.Fatalf("expected RedisSink, got %T", sink)
	}
}

func TestNewRouterServesHealthAndMetrics(t *testing.T) {
	cfg := testConfig(t)
	logger := zap.NewNop()
	db, err := openCatalog(cfg)
	if err != nil {
		t.Fatalf("openCatalog: %v", err)
	}

	facility := scheduling.NewCronFacility(logger)
	facility.Start()
	defer facility.Stop()

	dispatcher := notify.NewDispatcher(notify.NewLogSink(logger), logger, notify.DefaultDispatcherConfig())
	defer dispatcher.Close()

	svc := services.NewTestService(repositories.NewMemoryTestRepository(), scheduling.NewRegistry(facility, logger), dispatcher,
		clients.NewDirectoryClient("http://127.0.0.1:1", 100*time.Millisecond, logger), logger)
	catalog := services.NewCatalogService(&repositories.CategoryRepository{DB: db}, &repositories.QuestionRepository{DB: db}, logger)

	router := newRouter(cfg, appHandlers{
		auth:    middleware.NewAuthenticator(cfg.JWTSecret, logger),
		health:  handlers.NewHealthHandler(nil),
		tests:   handlers.NewTestHandler(svc, logger),
		catalog: handlers.NewCatalogHandler(catalog, logger),
		results: handlers.NewResultsHandler(clients.NewResultsClient("http://127.0.0.1:1", 100*time.Millisecond, logger)),
	})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/tests", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}
