package integration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SessionStatus is the lifecycle state of an ingestion run. There is no
// failed state: candidate failures are counted, they never fail the run.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
)

// IsTerminal returns true if no further transition is allowed
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted
}

// ImportSession tracks one ingestion run
type ImportSession struct {
	ID             uuid.UUID
	SourcePlatform SourcePlatform
	Status         SessionStatus
	Config         RunConfig
	Processed      int
	Succeeded      int
	Failed         int
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// NewImportSession creates a pending session for cfg
func NewImportSession(cfg RunConfig) (*ImportSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ImportSession{
		ID:             uuid.New(),
		SourcePlatform: cfg.SourcePlatform,
		Status:         SessionStatusPending,
		Config:         cfg,
		StartedAt:      time.Now(),
	}, nil
}

// StartProcessing moves a pending session to processing
func (s *ImportSession) StartProcessing() error {
	if s.Status != SessionStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", s.Status))
	}
	s.Status = SessionStatusProcessing
	return nil
}

// Complete marks the session finished. Completing a pending session is
// allowed so an empty run still terminates.
func (s *ImportSession) Complete() error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", s.Status))
	}
	now := time.Now()
	s.Status = SessionStatusCompleted
	s.CompletedAt = &now
	return nil
}
