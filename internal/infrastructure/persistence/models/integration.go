package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/integration"
	"gorm.io/datatypes"
)

// ImportSessionModel is the persistence model for integration.ImportSession.
// The run configuration is stored verbatim as JSON.
type ImportSessionModel struct {
	ID             uuid.UUID                                 `gorm:"type:uuid;primaryKey"`
	SourcePlatform string                                    `gorm:"type:varchar(50);not null;index"`
	Status         integration.SessionStatus                 `gorm:"type:varchar(20);not null;index"`
	Config         datatypes.JSONType[integration.RunConfig] `gorm:"type:jsonb;not null"`
	Processed      int                                       `gorm:"not null"`
	Succeeded      int                                       `gorm:"not null"`
	Failed         int                                       `gorm:"not null"`
	StartedAt      time.Time                                 `gorm:"not null"`
	CompletedAt    *time.Time
}

// TableName returns the table name for GORM
func (ImportSessionModel) TableName() string {
	return "import_sessions"
}

// ToDomain converts the persistence model to a domain ImportSession
func (m *ImportSessionModel) ToDomain() *integration.ImportSession {
	return &integration.ImportSession{
		ID:             m.ID,
		SourcePlatform: integration.SourcePlatform(m.SourcePlatform),
		Status:         m.Status,
		Config:         m.Config.Data(),
		Processed:      m.Processed,
		Succeeded:      m.Succeeded,
		Failed:         m.Failed,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
	}
}

// ImportSessionModelFromDomain creates a persistence model from a domain ImportSession
func ImportSessionModelFromDomain(s *integration.ImportSession) *ImportSessionModel {
	return &ImportSessionModel{
		ID:             s.ID,
		SourcePlatform: string(s.SourcePlatform),
		Status:         s.Status,
		Config:         datatypes.NewJSONType(s.Config),
		Processed:      s.Processed,
		Succeeded:      s.Succeeded,
		Failed:         s.Failed,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
	}
}

// SyncLogModel is the persistence model for integration.SyncLogEntry
type SyncLogModel struct {
	BaseModel
	SessionID    *uuid.UUID                `gorm:"type:uuid;index"`
	ProductID    string                    `gorm:"type:varchar(160);not null;index"`
	Platform     string                    `gorm:"type:varchar(50);not null"`
	Stage        string                    `gorm:"type:varchar(30);not null"`
	OldValue     datatypes.JSONMap         `gorm:"type:jsonb"`
	NewValue     datatypes.JSONMap         `gorm:"type:jsonb"`
	Status       integration.SyncLogStatus `gorm:"type:varchar(20);not null;index"`
	ErrorMessage string                    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry
func (m *SyncLogModel) ToDomain() *integration.SyncLogEntry {
	return &integration.SyncLogEntry{
		ID:           m.ID,
		SessionID:    m.SessionID,
		ProductID:    m.ProductID,
		Platform:     integration.SourcePlatform(m.Platform),
		Stage:        m.Stage,
		OldValue:     map[string]any(m.OldValue),
		NewValue:     map[string]any(m.NewValue),
		Status:       m.Status,
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
	}
}

// SyncLogModelFromDomain creates a persistence model from a domain SyncLogEntry
func SyncLogModelFromDomain(e *integration.SyncLogEntry) *SyncLogModel {
	return &SyncLogModel{
		BaseModel:    BaseModel{ID: e.ID, CreatedAt: e.CreatedAt},
		SessionID:    e.SessionID,
		ProductID:    e.ProductID,
		Platform:     string(e.Platform),
		Stage:        e.Stage,
		OldValue:     datatypes.JSONMap(e.OldValue),
		NewValue:     datatypes.JSONMap(e.NewValue),
		Status:       e.Status,
		ErrorMessage: e.ErrorMessage,
	}
}
