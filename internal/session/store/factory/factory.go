// Package factory selects and initializes one session store backend from
// the configured priority list, with per-backend connect retries and
// fallback to the next entry. The ephemeral memory backend is always the
// last resort so the process can come up even with every remote backend
// down.
package factory

import (
	"context"
	"fmt"
	"log"
	"time"

	"stationlog/internal/platform/config"
	platformmongo "stationlog/internal/platform/mongo"
	platformredis "stationlog/internal/platform/redis"
	"stationlog/internal/session/store"
	memorystore "stationlog/internal/session/store/memory"
	mongostore "stationlog/internal/session/store/mongo"
	redisstore "stationlog/internal/session/store/redis"
)

// Connector attempts one connection to a named backend.
type Connector func(ctx context.Context, cfg config.Config) (store.Store, error)

// Factory initializes a store.Store per the configured backend priority.
// The selection is made once and cached for the process lifetime; there is
// no hot-swap at runtime.
type Factory struct {
	cfg        config.Config
	log        *log.Logger
	connectors map[string]Connector

	selected store.Store
}

// New builds a factory with the default connectors.
func New(cfg config.Config, logger *log.Logger) *Factory {
	return &Factory{
		cfg: cfg,
		log: logger,
		connectors: map[string]Connector{
			"redis":  connectRedis,
			"mongo":  connectMongo,
			"memory": connectMemory,
		},
	}
}

// WithConnector overrides a named connector. Tests use this to simulate
// connection failures without real backends.
func (f *Factory) WithConnector(name string, c Connector) *Factory {
	f.connectors[name] = c
	return f
}

// Initialize walks the configured priority, retrying each backend a fixed
// number of times with a fixed delay before falling through to the next.
// The memory backend is appended as the final fallback when not already
// listed. The chosen store is cached; subsequent calls return it directly.
func (f *Factory) Initialize(ctx context.Context) (store.Store, error) {
	if f.selected != nil {
		return f.selected, nil
	}

	priority := append([]string(nil), f.cfg.BackendPriority...)
	if !contains(priority, "memory") {
		priority = append(priority, "memory")
	}

	for _, name := range priority {
		connector, ok := f.connectors[name]
		if !ok {
			f.log.Printf("store factory: unknown backend %q in priority list, skipping", name)
			continue
		}

		s, err := f.connectWithRetry(ctx, name, connector)
		if err != nil {
			f.log.Printf("store factory: backend %q unavailable after %d attempts: %v", name, f.cfg.ConnectRetries, err)
			continue
		}

		if s.Name() == "memory" && f.cfg.Production {
			f.log.Printf("store factory: WARNING: ephemeral memory backend selected in production; all session data is lost on restart")
		}
		f.log.Printf("store factory: selected backend %q", s.Name())
		f.selected = s
		return s, nil
	}

	return nil, fmt.Errorf("store factory: no backend could be initialized")
}

func (f *Factory) connectWithRetry(ctx context.Context, name string, connector Connector) (store.Store, error) {
	retries := f.cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		s, err := connector(ctx, f.cfg)
		if err == nil {
			return s, nil
		}
		lastErr = err
		f.log.Printf("store factory: connect %q attempt %d/%d failed: %v", name, attempt, retries, err)

		if attempt < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.cfg.ConnectRetryDelay):
			}
		}
	}
	return nil, lastErr
}

func connectRedis(ctx context.Context, cfg config.Config) (store.Store, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	return redisstore.New(client,
		redisstore.WithProbeMonths(cfg.ProbeMonths),
		redisstore.WithTablePrefix(cfg.TablePrefix),
	), nil
}

func connectMongo(ctx context.Context, cfg config.Config) (store.Store, error) {
	client, err := platformmongo.New(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	s, err := mongostore.New(ctx, mongostore.Options{
		Client:      client.Client,
		Database:    cfg.Mongo.Database,
		TablePrefix: cfg.TablePrefix,
	})
	if err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	return s, nil
}

func connectMemory(context.Context, config.Config) (store.Store, error) {
	return memorystore.New(), nil
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}
