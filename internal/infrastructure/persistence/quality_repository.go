package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recentFlagRows bounds how many metrics rows RecentFlags scans per flag requested
const recentFlagRows = 10

// GormQualityMetricsRepository implements quality.MetricsRepository using GORM
type GormQualityMetricsRepository struct {
	db *gorm.DB
}

// NewGormQualityMetricsRepository creates a new GormQualityMetricsRepository
func NewGormQualityMetricsRepository(db *gorm.DB) *GormQualityMetricsRepository {
	return &GormQualityMetricsRepository{db: db}
}

// Create appends a metrics record
func (r *GormQualityMetricsRepository) Create(ctx context.Context, m *quality.Metrics) error {
	return r.db.WithContext(ctx).Create(models.QualityMetricsModelFromDomain(m)).Error
}

// Summary aggregates every metrics record
func (r *GormQualityMetricsRepository) Summary(ctx context.Context) (*quality.MetricsSummary, error) {
	var totals struct {
		Total    int64
		Approved int64
		Average  float64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.QualityMetricsModel{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN rejection_reason = '' THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(AVG(quality_score), 0) AS average`).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var reasons []struct {
		RejectionReason quality.RejectionReason
		Count           int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.QualityMetricsModel{}).
		Select("rejection_reason, COUNT(*) AS count").
		Where("rejection_reason <> ?", "").
		Group("rejection_reason").
		Scan(&reasons).Error; err != nil {
		return nil, err
	}

	summary := &quality.MetricsSummary{
		TotalScored:      totals.Total,
		Approved:         totals.Approved,
		AverageQuality:   totals.Average,
		RejectionReasons: make(map[quality.RejectionReason]int64, len(reasons)),
	}
	for _, row := range reasons {
		summary.RejectionReasons[row.RejectionReason] = row.Count
	}
	return summary, nil
}

// RecentFlags returns up to limit distinct flags, most recent first.
// Flags are stored as JSON arrays, so de-duplication happens here rather
// than in SQL.
func (r *GormQualityMetricsRepository) RecentFlags(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	var rows []models.QualityMetricsModel
	if err := r.db.WithContext(ctx).
		Select("flags", "created_at").
		Where("flags IS NOT NULL AND flags <> ?", "[]").
		Order("created_at DESC").
		Limit(limit * recentFlagRows).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, limit)
	flags := make([]string, 0, limit)
	for _, row := range rows {
		for _, flag := range row.Flags {
			if _, ok := seen[flag]; ok {
				continue
			}
			seen[flag] = struct{}{}
			flags = append(flags, flag)
			if len(flags) == limit {
				return flags, nil
			}
		}
	}
	return flags, nil
}

// PlatformMeanScore returns the mean quality score of a platform
func (r *GormQualityMetricsRepository) PlatformMeanScore(ctx context.Context, platform string) (float64, int64, error) {
	var row struct {
		Mean  float64
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.QualityMetricsModel{}).
		Select("COALESCE(AVG(quality_score), 0) AS mean, COUNT(*) AS total").
		Where("platform = ?", platform).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Mean, row.Total, nil
}

// GormQualitySettingsRepository implements quality.SettingsRepository
// on a single-row table
type GormQualitySettingsRepository struct {
	db *gorm.DB
}

// NewGormQualitySettingsRepository creates a new GormQualitySettingsRepository
func NewGormQualitySettingsRepository(db *gorm.DB) *GormQualitySettingsRepository {
	return &GormQualitySettingsRepository{db: db}
}

// Load returns the stored settings
func (r *GormQualitySettingsRepository) Load(ctx context.Context) (*quality.Settings, error) {
	var model models.QualitySettingsModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", models.SettingsRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	settings := model.Settings.Data()
	return &settings, nil
}

// Save replaces the stored settings
func (r *GormQualitySettingsRepository) Save(ctx context.Context, settings quality.Settings) error {
	model := &models.QualitySettingsModel{
		ID:        models.SettingsRowID,
		Settings:  datatypes.NewJSONType(settings),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
	}).Create(model).Error
}

// Delete removes the stored settings. Deleting when nothing is stored is not an error.
func (r *GormQualitySettingsRepository) Delete(ctx context.Context) error {
	return r.db.WithContext(ctx).Delete(&models.QualitySettingsModel{}, "id = ?", models.SettingsRowID).Error
}

// Ensure repositories implement the quality interfaces
var (
	_ quality.MetricsRepository  = (*GormQualityMetricsRepository)(nil)
	_ quality.SettingsRepository = (*GormQualitySettingsRepository)(nil)
)
