package ingestion

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/taxonomy"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/domain/shared"
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

// upserted returns the products passed to Upsert
func (m *MockProductRepository) upserted() []*catalog.AdmittedProduct {
	var out []*catalog.AdmittedProduct
	for _, call := range m.Calls {
		if call.Method == "Upsert" {
			out = append(out, call.Arguments.Get(1).(*catalog.AdmittedProduct))
		}
	}
	return out
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

// memSyncLogs collects appended entries
type memSyncLogs struct {
	mu      sync.Mutex
	entries []*integration.SyncLogEntry
}

func (m *memSyncLogs) Append(_ context.Context, entries ...*integration.SyncLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memSyncLogs) RecentFailures(_ context.Context, limit int) ([]*integration.SyncLogEntry, error) {
	return nil, nil
}

func (m *memSyncLogs) FindBySession(_ context.Context, sessionID uuid.UUID) ([]*integration.SyncLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*integration.SyncLogEntry
	for _, e := range m.entries {
		if e.SessionID != nil && *e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memSyncLogs) failed() []*integration.SyncLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*integration.SyncLogEntry
	for _, e := range m.entries {
		if e.Status == integration.SyncLogFailed {
			out = append(out, e)
		}
	}
	return out
}

// memSessions stores sessions by value, the way a database would
type memSessions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]integration.ImportSession
}

func newMemSessions() *memSessions {
	return &memSessions{rows: make(map[uuid.UUID]integration.ImportSession)}
}

func (m *memSessions) Create(_ context.Context, s *integration.ImportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = *s
	return nil
}

func (m *memSessions) FindByID(_ context.Context, id uuid.UUID) (*integration.ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &row, nil
}

func (m *memSessions) UpdateStatus(_ context.Context, s *integration.ImportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[s.ID]
	if !ok {
		return shared.ErrNotFound
	}
	row.Status = s.Status
	row.CompletedAt = s.CompletedAt
	m.rows[s.ID] = row
	return nil
}

func (m *memSessions) IncrementCounters(_ context.Context, id uuid.UUID, outcome integration.SessionOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	row.Processed++
	if outcome == integration.OutcomeSucceeded {
		row.Succeeded++
	} else {
		row.Failed++
	}
	m.rows[id] = row
	return nil
}

func (m *memSessions) FindRecent(_ context.Context, limit int) ([]*integration.ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*integration.ImportSession, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// stubNormalizer resolves every label to one category, except labels
// listed in unmapped (no category) or panics (panics).
type stubNormalizer struct {
	category *catalog.Category
	unmapped map[string]bool
	panics   map[string]bool
}

func (n stubNormalizer) Normalize(_ context.Context, _ integration.SourcePlatform, labels []string, _ integration.CategoryMappingMode) (*taxonomy.Resolution, error) {
	for _, l := range labels {
		if n.panics[l] {
			panic("normalizer exploded")
		}
		if n.unmapped[l] {
			return nil, nil
		}
	}
	return &taxonomy.Resolution{Category: n.category, Strategy: taxonomy.StrategyDefault}, nil
}

type staticSettings struct {
	settings quality.Settings
}

func (s staticSettings) Current(context.Context) (quality.Settings, error) {
	return s.settings, nil
}
