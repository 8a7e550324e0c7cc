package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/shop"
	"github.com/sandeepkv93/streakd/internal/storage"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

// runtime owns everything a command needs and closes it in reverse order.
type runtime struct {
	app    *tracker.App
	local  *storage.LocalStore
	client *redis.Client
}

func openRuntime(ctx context.Context, opts ...tracker.Option) (*runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	catalog, err := shop.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	local, err := storage.OpenLocal(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	rt := &runtime{local: local}

	gwOpts := []storage.GatewayOption{
		storage.WithLogger(logger.Named("storage")),
		storage.WithMetrics(storage.NewMetrics(prometheus.DefaultRegisterer)),
	}
	if cfg.RedisURL != "" {
		client, err := storage.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			// The gateway falls back to local storage when sync is on and no
			// remote is configured.
			logger.Warn("redis unavailable, remote sync disabled", zap.Error(err))
		} else {
			rt.client = client
			gwOpts = append(gwOpts, storage.WithRemote(storage.NewRedisStore(client, cfg.RemotePrefix, cfg.UserID)))
		}
	}
	gw := storage.NewGateway(local, gwOpts...)

	base := []tracker.Option{
		tracker.WithLogger(logger.Named("tracker")),
		tracker.WithCatalog(catalog),
		tracker.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	rt.app = tracker.New(gw, append(base, opts...)...)
	if err := rt.app.Start(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) Close() error {
	var errs []error
	if rt.app != nil {
		errs = append(errs, rt.app.Close())
	}
	if rt.client != nil {
		errs = append(errs, rt.client.Close())
	}
	errs = append(errs, rt.local.Close())
	return errors.Join(errs...)
}
