package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/quality"
	"gorm.io/datatypes"
)

// QualityMetricsModel is the persistence model for quality.Metrics
type QualityMetricsModel struct {
	BaseModel
	ProductID       string                     `gorm:"type:varchar(160);not null;index"`
	Platform        string                     `gorm:"type:varchar(50);not null;index"`
	ValidationScore int                        `gorm:"not null"`
	ContentScore    int                        `gorm:"not null"`
	DuplicateRisk   int                        `gorm:"not null"`
	QualityScore    int                        `gorm:"not null"`
	RejectionReason quality.RejectionReason    `gorm:"type:varchar(40);index"`
	Flags           datatypes.JSONSlice[string] `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (QualityMetricsModel) TableName() string {
	return "quality_metrics"
}

// ToDomain converts the persistence model to domain Metrics
func (m *QualityMetricsModel) ToDomain() *quality.Metrics {
	return &quality.Metrics{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Platform:        m.Platform,
		ValidationScore: m.ValidationScore,
		ContentScore:    m.ContentScore,
		DuplicateRisk:   m.DuplicateRisk,
		QualityScore:    m.QualityScore,
		RejectionReason: m.RejectionReason,
		Flags:           []string(m.Flags),
		CreatedAt:       m.CreatedAt,
	}
}

// QualityMetricsModelFromDomain creates a persistence model from domain Metrics
func QualityMetricsModelFromDomain(q *quality.Metrics) *QualityMetricsModel {
	flags := q.Flags
	if flags == nil {
		flags = []string{}
	}
	return &QualityMetricsModel{
		BaseModel:       BaseModel{ID: q.ID, CreatedAt: q.CreatedAt},
		ProductID:       q.ProductID,
		Platform:        q.Platform,
		ValidationScore: q.ValidationScore,
		ContentScore:    q.ContentScore,
		DuplicateRisk:   q.DuplicateRisk,
		QualityScore:    q.QualityScore,
		RejectionReason: q.RejectionReason,
		Flags:           datatypes.JSONSlice[string](flags),
	}
}

// SettingsRowID is the id of the single settings row
const SettingsRowID = 1

// QualitySettingsModel stores the effective settings as one JSON document
type QualitySettingsModel struct {
	ID        int                                `gorm:"primaryKey;autoIncrement:false"`
	Settings  datatypes.JSONType[quality.Settings] `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time                          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QualitySettingsModel) TableName() string {
	return "quality_settings"
}
