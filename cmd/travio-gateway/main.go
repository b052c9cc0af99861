// Command travio-gateway exposes a small JSON API over the Travio client,
// keeping each browser session's token, profile and cart in Redis.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/dmitrymomot/travio/pkg/clientip"
	"github.com/dmitrymomot/travio/pkg/config"
	"github.com/dmitrymomot/travio/pkg/httpserver"
	"github.com/dmitrymomot/travio/pkg/logger"
	"github.com/dmitrymomot/travio/pkg/redis"
	"github.com/dmitrymomot/travio/pkg/requestid"
	"github.com/dmitrymomot/travio/pkg/session"
	"github.com/dmitrymomot/travio/pkg/travio"
)

type appConfig struct {
	Log    logger.Config
	Travio travio.Config
	Redis  redis.Config
	HTTP   httpserver.Config
	Cookie session.CookieConfig

	TrustProxy bool `env:"HTTP_TRUST_PROXY" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("travio-gateway stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Travio.RequireCredential(); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Log,
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// Measurements go to the global meter provider, a no-op until one is installed.
	metrics, err := travio.NewMetrics(otel.Meter("travio-gateway"))
	if err != nil {
		return err
	}

	router := newRouter(routerConfig{
		Cookie: cfg.Cookie,
		Build:  clientBuilder(cfg, rdb, metrics, log),
		Checks: map[string]httpserver.Check{"redis": redis.Healthcheck(rdb)},
		Logger: log,

		TrustProxy: cfg.TrustProxy,
	})

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

// clientBuilder returns the per-request client factory. All clients share one
// http.Client; each gets a Redis store scoped to the caller's session cookie.
func clientBuilder(cfg appConfig, rdb goredis.UniversalClient, metrics *travio.Metrics, log *slog.Logger) travio.Builder {
	httpClient := travio.NewHTTPClient(cfg.Travio)

	return func(r *http.Request) (*travio.Client, error) {
		sid, ok := session.IDFromContext(r.Context())
		if !ok {
			return nil, fmt.Errorf("%w: request has no session", session.ErrNoSessionID)
		}

		store, err := session.NewRedisStore(rdb, sid, session.WithTTL(cfg.Cookie.TTL))
		if err != nil {
			return nil, err
		}

		return travio.New(cfg.Travio, store,
			travio.WithHTTPClient(httpClient),
			travio.WithOnRequest(metrics.Hook()),
			travio.WithLogger(log.With(logger.SessionID(sid))),
		)
	}
}
