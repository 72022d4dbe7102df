package quality

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*catalog.AdmittedProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.AdmittedProduct), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *catalog.AdmittedProduct, syncInventory bool) error {
	args := m.Called(ctx, product, syncInventory)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, status catalog.AdmissionStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindRecentNames(ctx context.Context, platform string, limit int) (map[string]string, error) {
	args := m.Called(ctx, platform, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// MockMetricsRepository is a mock implementation of quality.MetricsRepository
type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) Create(ctx context.Context, metrics *quality.Metrics) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

func (m *MockMetricsRepository) Summary(ctx context.Context) (*quality.MetricsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quality.MetricsSummary), args.Error(1)
}

func (m *MockMetricsRepository) RecentFlags(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMetricsRepository) PlatformMeanScore(ctx context.Context, platform string) (float64, int64, error) {
	args := m.Called(ctx, platform)
	return args.Get(0).(float64), args.Get(1).(int64), args.Error(2)
}

// MockSettingsRepository is a mock implementation of quality.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Load(ctx context.Context) (*quality.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quality.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings quality.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSyncLogRepository is a mock implementation of integration.SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Append(ctx context.Context, entries ...*integration.SyncLogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockSyncLogRepository) RecentFailures(ctx context.Context, limit int) ([]*integration.SyncLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.SyncLogEntry), args.Error(1)
}

func (m *MockSyncLogRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]*integration.SyncLogEntry, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.SyncLogEntry), args.Error(1)
}

// staticSettings always returns the same settings
type staticSettings struct {
	settings quality.Settings
	err      error
}

func (s staticSettings) Current(context.Context) (quality.Settings, error) {
	return s.settings, s.err
}

// goodCandidate passes every validation and content check
func goodCandidate(id string) integration.Candidate {
	return integration.Candidate{
		ExternalID:  id,
		Name:        "Wireless Noise Cancelling Headphones",
		Description: "Over-ear wireless headphones with active noise cancellation, thirty hour battery life and a foldable design for travel.",
		SKU:         "ACME-HP-01",
		Price:       "129.99",
		Images:      []integration.ImageRef{{Src: "https://cdn.example.com/products/headphones.jpg", SizeBytes: 120_000}},
		Brand:       "Acme",
	}
}
