package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	admission "github.com/storefront/backend/internal/application/quality"
	"github.com/storefront/backend/internal/application/ingestion"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// decodeData unmarshals the data field of a success envelope
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	return env.Data
}

type MockSettingsEditor struct {
	mock.Mock
}

func (m *MockSettingsEditor) Current(ctx context.Context) (quality.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(quality.Settings), args.Error(1)
}

func (m *MockSettingsEditor) Save(ctx context.Context, settings quality.Settings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *MockSettingsEditor) Reset(ctx context.Context) (quality.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(quality.Settings), args.Error(1)
}

type MockAdmissionScorer struct {
	mock.Mock
}

func (m *MockAdmissionScorer) Process(ctx context.Context, platform integration.SourcePlatform, c *integration.Candidate) (quality.AdmissionResult, error) {
	args := m.Called(ctx, platform, c)
	return args.Get(0).(quality.AdmissionResult), args.Error(1)
}

func (m *MockAdmissionScorer) ProcessBatch(ctx context.Context, platform integration.SourcePlatform, candidates []integration.Candidate) ([]quality.AdmissionResult, quality.BatchSummary, error) {
	args := m.Called(ctx, platform, candidates)
	var results []quality.AdmissionResult
	if r := args.Get(0); r != nil {
		results = r.([]quality.AdmissionResult)
	}
	return results, args.Get(1).(quality.BatchSummary), args.Error(2)
}

func (m *MockAdmissionScorer) Dashboard(ctx context.Context) (*admission.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admission.DashboardStats), args.Error(1)
}

type MockIngestionRunner struct {
	mock.Mock
}

func (m *MockIngestionRunner) Run(ctx context.Context, cfg integration.RunConfig, candidates []integration.Candidate) (*ingestion.Report, error) {
	args := m.Called(ctx, cfg, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.Report), args.Error(1)
}

func (m *MockIngestionRunner) Session(ctx context.Context, id uuid.UUID) (*integration.ImportSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ImportSession), args.Error(1)
}

func (m *MockIngestionRunner) RecentSessions(ctx context.Context, limit int) ([]*integration.ImportSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.ImportSession), args.Error(1)
}

func (m *MockIngestionRunner) SessionLogs(ctx context.Context, id uuid.UUID) ([]*integration.SyncLogEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.SyncLogEntry), args.Error(1)
}

type MockCategoryLister struct {
	mock.Mock
}

func (m *MockCategoryLister) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Category), args.Error(1)
}

type MockMappingDeactivator struct {
	mock.Mock
}

func (m *MockMappingDeactivator) Deactivate(ctx context.Context, platform, label string) error {
	return m.Called(ctx, platform, label).Error(0)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }
