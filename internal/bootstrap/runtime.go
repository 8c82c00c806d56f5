// Package bootstrap connects the storage, cache and messaging backends selected by config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"dishswap/internal/cache"
	"dishswap/internal/config"
	"dishswap/internal/database"
	"dishswap/internal/events"
	"dishswap/internal/middleware"
	"dishswap/internal/repository"
	"dishswap/internal/repository/mongorepo"
	"dishswap/internal/server"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connected backends. Close releases them in reverse order.
type Runtime struct {
	Repos     repository.Set
	Redis     *redis.Client
	Publisher events.Publisher
	PingDB    server.Pinger

	// SQL is the gorm handle, nil when the document backend is selected.
	SQL *gorm.DB

	closers []func(context.Context) error
}

// InitRuntime connects the repositories for cfg.DBDriver, then Redis and Kafka when configured.
// Redis and Kafka are optional: when unreachable the API runs uncached and without events.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Publisher: events.NopPublisher{}}

	if err := rt.connectStorage(ctx, cfg); err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" {
		rt.Redis = cache.InitRedis(cfg.RedisURL)
		if rt.Redis != nil {
			rdb := rt.Redis
			rt.closers = append(rt.closers, func(context.Context) error { return rdb.Close() })
		}
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		pub, err := events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		if err != nil {
			middleware.Logger.Warn("kafka unavailable, continuing without events", "error", err)
		} else {
			rt.Publisher = pub
			rt.closers = append(rt.closers, func(context.Context) error { return pub.Close() })
		}
	}

	return rt, nil
}

func (rt *Runtime) connectStorage(ctx context.Context, cfg *config.Config) error {
	if cfg.DBDriver == config.DriverMongo {
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		rt.Repos = mongorepo.NewSet(db)
		rt.PingDB = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		rt.closers = append(rt.closers, client.Disconnect)
		return nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	rt.SQL = db
	rt.Repos = repository.NewSet(db)
	rt.PingDB = sqlDB.PingContext
	rt.closers = append(rt.closers, func(context.Context) error { return sqlDB.Close() })
	return nil
}

// Deps returns the server dependencies backed by this runtime.
func (rt *Runtime) Deps() server.Deps {
	return server.Deps{
		Repos:     rt.Repos,
		Redis:     rt.Redis,
		Publisher: rt.Publisher,
		PingDB:    rt.PingDB,
	}
}

// Close releases every backend, most recently connected first.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	if rt.Redis != nil {
		cache.SetClient(nil)
	}
	return errors.Join(errs...)
}
