// Package app wires the storefront client together: configuration,
// storage backend, store API client, and the cart, session, search and
// checkout stores built on top of them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KyoTung/camera-store-client/internal/api"
	"github.com/KyoTung/camera-store-client/internal/cart"
	"github.com/KyoTung/camera-store-client/internal/checkout"
	"github.com/KyoTung/camera-store-client/internal/config"
	"github.com/KyoTung/camera-store-client/internal/discount"
	"github.com/KyoTung/camera-store-client/internal/search"
	"github.com/KyoTung/camera-store-client/internal/session"
	"github.com/KyoTung/camera-store-client/internal/storage"
	filestore "github.com/KyoTung/camera-store-client/internal/storage/file"
	redisstore "github.com/KyoTung/camera-store-client/internal/storage/redis"
	"github.com/KyoTung/camera-store-client/pkg/httpclient"
)

// App holds the assembled storefront client.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Storage   storage.Store
	API       *api.Client
	Session   *session.Store
	Cart      *cart.Store
	Search    *search.History
	Discounts *discount.Resolver
	Checkout  *checkout.Service

	rdb *redis.Client
}

// New creates an application instance, initializing all dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{Config: cfg, Logger: logger}

	// Local storage backend.
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		a.rdb = rdb
		a.Storage = redisstore.New(rdb)
	case config.BackendFile:
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		logger.Info("using file storage", slog.String("dir", cfg.DataDir))
		a.Storage = fs
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.StorageBackend)
	}

	// Store API client. The session store doubles as the token source so
	// authenticated calls pick up the bearer token automatically.
	a.Session = session.New(ctx, a.Storage, logger)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout
	hc := httpclient.New(httpCfg)
	cb := httpclient.NewCircuitBreakerClient(hc, httpclient.DefaultCircuitBreakerConfig("store-api"), logger)
	a.API = api.New(cfg.APIBaseURL, cb, a.Session, logger)

	// Client-side stores.
	a.Cart = cart.New(ctx, a.Storage, logger)
	a.Search = search.New(ctx, a.Storage, logger)
	a.Discounts = discount.New(a.API, logger)
	a.Checkout = checkout.New(a.API, a.Cart, a.Session, a.Storage, logger)

	return a, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
	}
	return nil
}
