package ports

import (
	"context"

	"github.com/aretw0/equaio/pkg/domain"
)

// SnapshotStore persists derivation snapshots by session ID, so a derivation
// can be stopped and resumed by another process.
type SnapshotStore interface {
	// Save stores the snapshot under sessionID, replacing any previous one.
	Save(ctx context.Context, sessionID string, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot for sessionID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
