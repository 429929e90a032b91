package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/equaio/internal/config"
	"github.com/aretw0/equaio/pkg/adapters/file"
	"github.com/aretw0/equaio/pkg/adapters/memory"
	"github.com/aretw0/equaio/pkg/adapters/redis"
	"github.com/aretw0/equaio/pkg/adapters/sqlite"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/persistence/middleware"
	"github.com/aretw0/equaio/pkg/ports"
	"github.com/aretw0/equaio/pkg/session"
)

// Backend bundles the persistence adapters selected by the configuration.
type Backend struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker // nil unless the store is shared
	Rules  ports.RuleSetLoader     // nil unless EQUAIO_RULES_DIR is set
	close  func() error
}

// OpenBackend opens the configured snapshot store.
func OpenBackend(cfg config.Config) (*Backend, error) {
	b := &Backend{close: func() error { return nil }}
	if cfg.RulesDir != "" {
		b.Rules = &file.Loader{Dir: cfg.RulesDir}
	}

	switch cfg.Store {
	case config.StoreMemory:
		b.Store = memory.NewStore()
	case config.StoreFile:
		b.Store = file.New(cfg.SessionDir)
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.RedisTTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.RedisTTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, opts...)
		b.Store = store
		b.Locker = redis.NewLocker(store.Client(), store.Prefix())
		b.close = store.Close
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		b.Store = store
		b.close = store.Close
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Store = middleware.Chain(b.Store, mw)
	}
	return b, nil
}

// Manager creates a session manager over the backend.
func (b *Backend) Manager(logger *slog.Logger, hooks domain.LifecycleHooks) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithHooks(hooks),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...)
}

// Close releases the store connection.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	err := b.close()
	b.close = nil
	return err
}
