package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/expr"
	"github.com/aretw0/equaio/pkg/ports"
	"github.com/aretw0/equaio/pkg/task"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to stored derivations. Each session has a local
// mutex, reference counted so unused locks are dropped, and optionally a
// distributed lock shared with other replicas.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	newID   func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the tasks it restores.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks attaches hooks to every task the Manager restores.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithIDGenerator replaces the uuid generator used by Create.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a session manager over store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) taskOptions(id string) []task.Option {
	return []task.Option{
		task.WithID(id),
		task.WithLogger(m.logger.With("session_id", id)),
		task.WithHooks(m.hooks),
	}
}

// Create stores a fresh derivation over def and returns its session ID.
// Options are applied to the new task before it is first saved.
func (m *Manager) Create(ctx context.Context, def *expr.Context, opts ...task.Option) (string, error) {
	if def == nil {
		return "", errors.New("session context is required")
	}
	return m.CreateWith(ctx, func(base ...task.Option) (*task.Task, error) {
		return task.New(def, append(base, opts...)...), nil
	})
}

// BuildFunc builds the initial task of a session from the Manager's task
// options (ID, logger, hooks).
type BuildFunc func(opts ...task.Option) (*task.Task, error)

// CreateWith allocates a session ID, builds its task with build and stores
// it. Nothing is stored when build fails.
func (m *Manager) CreateWith(ctx context.Context, build BuildFunc) (string, error) {
	id := m.newID()
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err == nil {
			return fmt.Errorf("session %s already exists", id)
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		t, err := build(m.taskOptions(id)...)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, id, t.Snapshot()); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	m.logger.Debug("session created", "session_id", id)
	return id, nil
}

// Do loads the session, restores its task, runs fn and saves the result.
// The task is saved even when fn returns an error, so failed operations
// stay in the diagnostic log. fn's error is returned.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(*task.Task) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snapshot, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		t, err := task.Restore(snapshot, m.taskOptions(sessionID)...)
		if err != nil {
			return fmt.Errorf("failed to restore session %s: %w", sessionID, err)
		}

		fnErr := fn(t)

		if err := m.store.Save(ctx, sessionID, t.Snapshot()); err != nil {
			return fmt.Errorf("failed to save session %s: %w", sessionID, err)
		}
		return fnErr
	})
}

// View restores the session for reading. Nothing is saved.
func (m *Manager) View(ctx context.Context, sessionID string, fn func(*task.Task) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snapshot, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		t, err := task.Restore(snapshot, m.taskOptions(sessionID)...)
		if err != nil {
			return fmt.Errorf("failed to restore session %s: %w", sessionID, err)
		}
		return fn(t)
	})
}

// Load retrieves the stored snapshot of a session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snapshot *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snapshot, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snapshot, err
}

// Save persists a snapshot under sessionID.
func (m *Manager) Save(ctx context.Context, sessionID string, snapshot *domain.Snapshot) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, snapshot)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
