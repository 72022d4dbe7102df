package integration

import (
	"context"

	"github.com/google/uuid"
)

// SessionOutcome selects which counter RecordOutcome increments
type SessionOutcome int

const (
	OutcomeSucceeded SessionOutcome = iota
	OutcomeFailed
)

// ImportSessionRepository persists ingestion sessions
type ImportSessionRepository interface {
	Create(ctx context.Context, session *ImportSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*ImportSession, error)
	// UpdateStatus writes status and completion time only
	UpdateStatus(ctx context.Context, session *ImportSession) error
	// IncrementCounters atomically adds one to processed and to the
	// counter selected by outcome.
	IncrementCounters(ctx context.Context, id uuid.UUID, outcome SessionOutcome) error
	// FindRecent returns the newest sessions, newest first
	FindRecent(ctx context.Context, limit int) ([]*ImportSession, error)
}

// SyncLogRepository appends and lists sync log entries
type SyncLogRepository interface {
	Append(ctx context.Context, entries ...*SyncLogEntry) error
	// RecentFailures returns the newest failed entries, newest first
	RecentFailures(ctx context.Context, limit int) ([]*SyncLogEntry, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]*SyncLogEntry, error)
}
