package quality

import (
	"time"

	"github.com/google/uuid"
)

// Metrics is the append-only record written for every admission attempt
type Metrics struct {
	ID              uuid.UUID
	ProductID       string
	Platform        string
	ValidationScore int
	ContentScore    int
	DuplicateRisk   int
	QualityScore    int
	RejectionReason RejectionReason
	Flags           []string
	CreatedAt       time.Time
}

// NewMetrics captures result as a metrics record
func NewMetrics(platform string, r AdmissionResult) *Metrics {
	flags := make([]string, len(r.Content.Flags))
	copy(flags, r.Content.Flags)
	return &Metrics{
		ID:              uuid.New(),
		ProductID:       r.ProductID,
		Platform:        platform,
		ValidationScore: r.Validation.Score,
		ContentScore:    r.Content.Score,
		DuplicateRisk:   r.DuplicateRisk,
		QualityScore:    r.QualityScore,
		RejectionReason: r.RejectionReason,
		Flags:           flags,
		CreatedAt:       time.Now(),
	}
}

// MetricsSummary aggregates all metrics records
type MetricsSummary struct {
	TotalScored      int64
	Approved         int64
	AverageQuality   float64
	RejectionReasons map[RejectionReason]int64
}
