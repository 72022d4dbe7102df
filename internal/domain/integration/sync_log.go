package integration

import (
	"time"

	"github.com/google/uuid"
)

// SyncLogStatus is the outcome of one stage for one candidate
type SyncLogStatus string

const (
	SyncLogSuccess SyncLogStatus = "success"
	SyncLogFailed  SyncLogStatus = "failed"
	SyncLogSkipped SyncLogStatus = "skipped"
)

// Stage names written to the sync log
const (
	StageTaxonomy  = "taxonomy"
	StagePricing   = "pricing"
	StageAdmission = "admission"
	StagePersist   = "persist"
	StagePipeline  = "pipeline"
)

// SyncLogEntry is an append-only trace record. The pipeline never reads
// it back.
type SyncLogEntry struct {
	ID           uuid.UUID
	SessionID    *uuid.UUID
	ProductID    string
	Platform     SourcePlatform
	Stage        string
	OldValue     map[string]any
	NewValue     map[string]any
	Status       SyncLogStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// NewSyncLogEntry creates an entry timestamped now
func NewSyncLogEntry(sessionID *uuid.UUID, productID string, platform SourcePlatform, stage string, status SyncLogStatus) *SyncLogEntry {
	return &SyncLogEntry{
		ID:        uuid.New(),
		SessionID: sessionID,
		ProductID: productID,
		Platform:  platform,
		Stage:     stage,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// WithError attaches a human-readable failure message
func (e *SyncLogEntry) WithError(msg string) *SyncLogEntry {
	e.ErrorMessage = msg
	return e
}

// WithValues attaches before/after snapshots
func (e *SyncLogEntry) WithValues(oldValue, newValue map[string]any) *SyncLogEntry {
	e.OldValue = oldValue
	e.NewValue = newValue
	return e
}
