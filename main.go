package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stock-catalog/api"
	"stock-catalog/cache"
	"stock-catalog/catalog"
	"stock-catalog/config"
	"stock-catalog/credentials"
	"stock-catalog/loader"
	logpkg "stock-catalog/logger"
	"stock-catalog/metrics"
	"stock-catalog/search"
)

func main() {
	// A missing .env is fine; real deployments inject the environment.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stock catalog",
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("matcher", cfg.Search.Matcher),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := catalog.NewStore()
	if err := loadCatalog(store, cfg.Data, logger); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	matcher, closeMatcher, err := buildMatcher(cfg.Search, store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize matcher", zap.Error(err))
	}
	defer closeMatcher()

	svc := search.NewService(search.NewInstrumentedMatcher(matcher, metrics.MatcherDuration), logger).
		WithResultLimit(cfg.Search.ResultLimit)

	handler := api.NewHandler(svc, store)

	switch cfg.Cache.Driver {
	case "memory":
		mem := cache.NewMemory()
		go mem.Run(ctx, cfg.Cache.SweepInterval)
		svc.WithCache(mem, cfg.Cache.AutocompleteTTL, metrics.AutocompleteCacheTotal)
	case "redis":
		rc, err := buildRedis(ctx, cfg.Cache, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rc.Close()
		svc.WithCache(rc, cfg.Cache.AutocompleteTTL, metrics.AutocompleteCacheTotal)
		handler.WithHealthCheck("cache", rc)
	default:
		logger.Info("Response cache disabled")
	}

	if cfg.Quotes.Enabled {
		go refreshQuotes(ctx, store, cfg.Quotes.SymbolsLimit, logger)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      api.NewRouter(handler, logger, cfg.HTTP.CORS.Origins()),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

func loadCatalog(store *catalog.Store, cfg config.DataConfig, logger *zap.Logger) error {
	companies, err := loader.LoadCompanies(cfg.CompaniesCSV, logger)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}
	tickers, err := loader.LoadTickers(cfg.TickersCSV, logger)
	if err != nil {
		return fmt.Errorf("load tickers: %w", err)
	}

	st := loader.Populate(store, companies, tickers, logger)
	metrics.CatalogRecords.WithLabelValues("company").Set(float64(st.Companies))
	metrics.CatalogRecords.WithLabelValues("ticker").Set(float64(st.Tickers))

	logger.Info("Catalog loaded",
		zap.Int("companies", st.Companies),
		zap.Int("tickers", st.Tickers),
		zap.Int("rejected_companies", st.RejectedCompanies),
		zap.Int("rejected_tickers", st.RejectedTickers),
	)
	return nil
}

func buildMatcher(cfg config.SearchConfig, store *catalog.Store, logger *zap.Logger) (search.Matcher, func(), error) {
	if cfg.Matcher == "memory" {
		return search.NewMemoryMatcher(store, cfg.StreamLimit), func() {}, nil
	}

	bm, err := search.NewBleveMatcher(cfg.IndexPath, store, cfg.RebuildIndex, cfg.StreamLimit, logger)
	if err != nil {
		return nil, nil, err
	}
	// Later catalog writes (quote refreshes) keep the index current.
	store.WithIndex(bm)
	return bm, func() {
		if err := bm.Close(); err != nil {
			logger.Warn("Failed to close search index", zap.Error(err))
		}
	}, nil
}

func buildRedis(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (*cache.Redis, error) {
	secrets := credentials.Chain{credentials.NewEnvProvider(), credentials.NewFileProvider()}
	password, err := credentials.Resolve(secrets, "REDIS_PASSWORD", cfg.Password)
	if err != nil {
		return nil, err
	}

	rc, err := cache.NewRedis(cache.RedisConfig{
		Addrs:     cfg.Addrs,
		Username:  cfg.Username,
		Password:  password,
		DB:        cfg.DB,
		KeyPrefix: cfg.KeyPrefix,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := rc.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		rc.Close()
		return nil, err
	}
	logger.Info("Connected to redis", zap.Strings("addrs", cfg.Addrs))
	return rc, nil
}

func refreshQuotes(ctx context.Context, store *catalog.Store, limit int, logger *zap.Logger) {
	tickers := store.Tickers()
	if len(tickers) > limit {
		tickers = tickers[:limit]
	}
	symbols := make([]string, len(tickers))
	for i, t := range tickers {
		symbols[i] = t.Ticker
	}

	refresher := loader.NewQuoteRefresher(logger).WithObserver(func(status string) {
		metrics.QuoteRefreshTotal.WithLabelValues(status).Inc()
	})
	updated, err := refresher.Refresh(ctx, store, symbols)
	if err != nil {
		logger.Warn("Quote refresh interrupted", zap.Int("updated", updated), zap.Error(err))
		return
	}
	logger.Info("Quote refresh complete", zap.Int("updated", updated), zap.Int("requested", len(symbols)))
}
