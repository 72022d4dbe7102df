package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormImportSessionRepository implements integration.ImportSessionRepository using GORM
type GormImportSessionRepository struct {
	db *gorm.DB
}

// NewGormImportSessionRepository creates a new GormImportSessionRepository
func NewGormImportSessionRepository(db *gorm.DB) *GormImportSessionRepository {
	return &GormImportSessionRepository{db: db}
}

// Create persists a new session
func (r *GormImportSessionRepository) Create(ctx context.Context, session *integration.ImportSession) error {
	return r.db.WithContext(ctx).Create(models.ImportSessionModelFromDomain(session)).Error
}

// FindByID finds a session by its ID
func (r *GormImportSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.ImportSession, error) {
	var model models.ImportSessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateStatus writes the status and completion time. Counters are left
// alone so concurrent increments are never overwritten.
func (r *GormImportSessionRepository) UpdateStatus(ctx context.Context, session *integration.ImportSession) error {
	result := r.db.WithContext(ctx).
		Model(&models.ImportSessionModel{}).
		Where("id = ?", session.ID).
		Updates(map[string]any{
			"status":       session.Status,
			"completed_at": session.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementCounters adds one to processed and to the outcome's counter in
// a single UPDATE
func (r *GormImportSessionRepository) IncrementCounters(ctx context.Context, id uuid.UUID, outcome integration.SessionOutcome) error {
	column := "succeeded"
	if outcome == integration.OutcomeFailed {
		column = "failed"
	}
	result := r.db.WithContext(ctx).
		Model(&models.ImportSessionModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"processed": gorm.Expr("processed + ?", 1),
			column:      gorm.Expr(column+" + ?", 1),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindRecent returns the newest sessions, newest first
func (r *GormImportSessionRepository) FindRecent(ctx context.Context, limit int) ([]*integration.ImportSession, error) {
	var rows []models.ImportSessionModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	sessions := make([]*integration.ImportSession, len(rows))
	for i := range rows {
		sessions[i] = rows[i].ToDomain()
	}
	return sessions, nil
}

// GormSyncLogRepository implements integration.SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append inserts entries in one statement
func (r *GormSyncLogRepository) Append(ctx context.Context, entries ...*integration.SyncLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.SyncLogModel, len(entries))
	for i, e := range entries {
		rows[i] = models.SyncLogModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// RecentFailures returns the newest failed entries
func (r *GormSyncLogRepository) RecentFailures(ctx context.Context, limit int) ([]*integration.SyncLogEntry, error) {
	var rows []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", integration.SyncLogFailed).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSyncLogEntries(rows), nil
}

// FindBySession returns every entry of a session in write order
func (r *GormSyncLogRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]*integration.SyncLogEntry, error) {
	var rows []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSyncLogEntries(rows), nil
}

func toSyncLogEntries(rows []models.SyncLogModel) []*integration.SyncLogEntry {
	entries := make([]*integration.SyncLogEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries
}

// Ensure repositories implement the integration interfaces
var (
	_ integration.ImportSessionRepository = (*GormImportSessionRepository)(nil)
	_ integration.SyncLogRepository       = (*GormSyncLogRepository)(nil)
)
