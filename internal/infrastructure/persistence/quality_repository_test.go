package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(platform string, score int, reason quality.RejectionReason, createdAt time.Time, flags ...string) *quality.Metrics {
	return &quality.Metrics{
		ID:              uuid.New(),
		ProductID:       platform + "_" + uuid.NewString()[:8],
		Platform:        platform,
		ValidationScore: score,
		ContentScore:    score,
		DuplicateRisk:   10,
		QualityScore:    score,
		RejectionReason: reason,
		Flags:           flags,
		CreatedAt:       createdAt,
	}
}

func TestGormQualityMetricsRepository_Summary(t *testing.T) {
	ctx := context.Background()
	repo := NewGormQualityMetricsRepository(setupTestDB(t))

	t.Run("empty", func(t *testing.T) {
		s, err := repo.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), s.TotalScored)
		assert.Equal(t, int64(0), s.Approved)
		assert.Equal(t, 0.0, s.AverageQuality)
		assert.Empty(t, s.RejectionReasons)
	})

	now := time.Now()
	for _, m := range []*quality.Metrics{
		newTestMetrics("shopify", 90, "", now),
		newTestMetrics("shopify", 80, "", now),
		newTestMetrics("shopify", 20, quality.ReasonMissingData, now),
		newTestMetrics("amazon", 30, quality.ReasonMissingData, now),
		newTestMetrics("amazon", 40, quality.ReasonContentFiltered, now, "spam"),
	} {
		require.NoError(t, repo.Create(ctx, m))
	}

	t.Run("aggregates", func(t *testing.T) {
		s, err := repo.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), s.TotalScored)
		assert.Equal(t, int64(2), s.Approved)
		assert.InDelta(t, 52.0, s.AverageQuality, 1e-9)
		assert.Equal(t, map[quality.RejectionReason]int64{
			quality.ReasonMissingData:     2,
			quality.ReasonContentFiltered: 1,
		}, s.RejectionReasons)
	})
}

func TestGormQualityMetricsRepository_RecentFlags(t *testing.T) {
	ctx := context.Background()
	repo := NewGormQualityMetricsRepository(setupTestDB(t))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, newTestMetrics("shopify", 50, quality.ReasonContentFiltered, base, "spam", "blocked_keyword:cannabis")))
	require.NoError(t, repo.Create(ctx, newTestMetrics("shopify", 90, "", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newTestMetrics("shopify", 60, quality.ReasonContentFiltered, base.Add(2*time.Minute), "quality:too_short", "spam")))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"distinct newest first", 10, []string{"quality:too_short", "spam", "blocked_keyword:cannabis"}},
		{"limited", 2, []string{"quality:too_short", "spam"}},
		{"zero limit", 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.RecentFlags(ctx, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGormQualityMetricsRepository_PlatformMeanScore(t *testing.T) {
	ctx := context.Background()
	repo := NewGormQualityMetricsRepository(setupTestDB(t))

	now := time.Now()
	require.NoError(t, repo.Create(ctx, newTestMetrics("shopify", 70, "", now)))
	require.NoError(t, repo.Create(ctx, newTestMetrics("shopify", 90, "", now)))
	require.NoError(t, repo.Create(ctx, newTestMetrics("amazon", 10, quality.ReasonMissingData, now)))

	mean, n, err := repo.PlatformMeanScore(ctx, "shopify")
	require.NoError(t, err)
	assert.InDelta(t, 80.0, mean, 1e-9)
	assert.Equal(t, int64(2), n)

	mean, n, err = repo.PlatformMeanScore(ctx, "ebay")
	require.NoError(t, err)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, int64(0), n)
}

func TestGormQualityMetricsRepository_CreateSQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormQualityMetricsRepository(db.DB)

	m := newTestMetrics("shopify", 98, "", time.Now())

	mock.ExpectExec(`INSERT INTO "quality_metrics"`).
		WithArgs(m.ID, m.CreatedAt, m.ProductID, "shopify", 98, 98, 10, 98, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormQualitySettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormQualitySettingsRepository(setupTestDB(t))

	t.Run("nothing stored", func(t *testing.T) {
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		s := quality.DefaultSettings()
		s.Content.StrictMode = true
		s.Content.AllowedBrands = []string{"gucci"}
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.True(t, got.Content.StrictMode)
		assert.Equal(t, []string{"gucci"}, got.Content.AllowedBrands)
		assert.True(t, got.Validation.MaxPriceValue.Equal(s.Validation.MaxPriceValue))
		assert.Equal(t, s.Thresholds, got.Thresholds)
		assert.Equal(t, s.Weights, got.Weights)
	})

	t.Run("save replaces the single row", func(t *testing.T) {
		s := quality.DefaultSettings()
		s.Thresholds.MinQualityScore = 70
		require.NoError(t, repo.Save(ctx, s))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.False(t, got.Content.StrictMode)
		assert.Equal(t, 70, got.Thresholds.MinQualityScore)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx))
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, repo.Delete(ctx))
	})
}
