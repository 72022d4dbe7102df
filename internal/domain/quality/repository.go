package quality

import "context"

// MetricsRepository appends and aggregates quality metrics
type MetricsRepository interface {
	Create(ctx context.Context, m *Metrics) error
	Summary(ctx context.Context) (*MetricsSummary, error)
	// RecentFlags returns up to limit distinct flags, most recent first
	RecentFlags(ctx context.Context, limit int) ([]string, error)
	// PlatformMeanScore returns the mean quality score of a platform and
	// the number of records it is based on.
	PlatformMeanScore(ctx context.Context, platform string) (float64, int64, error)
}

// SettingsRepository persists the single effective settings document
type SettingsRepository interface {
	// Load returns shared.ErrNotFound when nothing has been saved
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings Settings) error
	Delete(ctx context.Context) error
}
