package di

import (
	"fmt"

	"CurveWatch/internal/domain/repository"
	"CurveWatch/internal/handler/api"
	"CurveWatch/internal/handler/ws"
	"CurveWatch/internal/service/fred"
	"CurveWatch/internal/usecase"
	"CurveWatch/pkg/cache"
	"CurveWatch/pkg/config"
	xhttp "CurveWatch/pkg/http"
	applogger "CurveWatch/pkg/logger"
	"CurveWatch/pkg/metrics"
	"CurveWatch/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheStore creates the snapshot cache. With Redis enabled the
// in-memory layer fronts it so restarts of one instance stay warm.
func ProvideCacheStore(cfg *config.Config) cache.Store {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryStore()
	}
	redis := cache.NewRedisStore(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	return cache.NewLayeredStore(redis)
}

// ProvideSeriesSource creates the FRED observations client.
func ProvideSeriesSource(cfg *config.Config) repository.SeriesSource {
	return fred.New(
		cfg.FRED.APIKey,
		cfg.FRED.BaseURL,
		cfg.FRED.Timeout,
		cfg.FRED.RateLimitPerMin,
	)
}

// ProvideCurveService creates the curve use case.
func ProvideCurveService(
	cfg *config.Config,
	source repository.SeriesSource,
	store cache.Store,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.CurveService {
	return usecase.NewCurveService(cfg, source, store, m, logger)
}

// ProvideHandler creates the Echo API handler.
func ProvideHandler(logger *applogger.Logger, svc *usecase.CurveService) xhttp.Handler {
	return api.NewCurveEchoHandler(logger, svc)
}

// ProvideHub creates the WebSocket refresh hub.
func ProvideHub(logger *applogger.Logger) *ws.Hub {
	return ws.NewHub(logger)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	svc *usecase.CurveService,
	handler xhttp.Handler,
	hub *ws.Hub,
	store cache.Store,
) *server.App {
	return server.New(cfg, logger, svc, handler, hub, store)
}
