package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/pricing"
	admission "github.com/storefront/backend/internal/application/quality"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingAdmitter struct {
	*admission.AdmissionService
	refreshes atomic.Int32
}

func (a *countingAdmitter) Refresh(ctx context.Context) (*admission.Snapshot, error) {
	a.refreshes.Add(1)
	return a.AdmissionService.Refresh(ctx)
}

type harness struct {
	sessions *memSessions
	products *MockProductRepository
	metrics  *MockMetricsRepository
	syncLogs *memSyncLogs
	admitter *countingAdmitter
	category *catalog.Category
	service  *Service
}

func newHarness(t *testing.T, normalizer func(*catalog.Category) CategoryNormalizer) *harness {
	t.Helper()
	category, err := catalog.NewCategory("electronics", "Electronics")
	require.NoError(t, err)

	h := &harness{
		sessions: newMemSessions(),
		products: new(MockProductRepository),
		metrics:  new(MockMetricsRepository),
		syncLogs: &memSyncLogs{},
		category: category,
	}
	h.metrics.On("Create", mock.Anything, mock.Anything).Return(nil)
	h.admitter = &countingAdmitter{AdmissionService: admission.NewAdmissionService(
		staticSettings{settings: quality.DefaultSettings()}, h.products, h.metrics, h.syncLogs, zap.NewNop(),
	)}
	h.service = NewService(
		NewSessionManager(h.sessions, zap.NewNop()),
		normalizer(category),
		h.admitter,
		h.products,
		h.syncLogs,
		zap.NewNop(),
		Options{Workers: 3},
	)
	return h
}

func plainNormalizer(c *catalog.Category) CategoryNormalizer {
	return stubNormalizer{category: c}
}

func goodCandidate(id string) integration.Candidate {
	stock := 12
	return integration.Candidate{
		ExternalID:    id,
		Name:          "Wireless Noise Cancelling Headphones",
		Description:   "Over-ear wireless headphones with active noise cancellation, thirty hour battery life and a foldable design for travel.",
		SKU:           "ACME-HP-01",
		Price:         "129.99",
		Categories:    []string{"Audio"},
		Images:        []integration.ImageRef{{Src: "https://cdn.example.com/products/headphones.jpg"}},
		StockQuantity: &stock,
		Brand:         "Acme",
	}
}

func runConfig() integration.RunConfig {
	return integration.RunConfig{SourcePlatform: integration.PlatformWooCommerce, BatchSize: 4}
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, plainNormalizer)
	h.products.On("Upsert", mock.Anything, mock.Anything, false).Return(nil)

	candidates := make([]integration.Candidate, 0, 10)
	for i := 1; i <= 7; i++ {
		candidates = append(candidates, goodCandidate(fmt.Sprintf("ok-%d", i)))
	}
	for i := 1; i <= 3; i++ {
		candidates = append(candidates, integration.Candidate{ExternalID: fmt.Sprintf("bad-%d", i), Price: "19.99"})
	}

	report, err := h.service.Run(ctx, runConfig(), candidates)
	require.NoError(t, err)

	assert.Equal(t, quality.BatchSummary{
		TotalProcessed:   10,
		Approved:         7,
		Rejected:         3,
		RejectionReasons: map[quality.RejectionReason]int{quality.ReasonMissingData: 3},
	}, report.Summary)

	session := report.Session
	assert.Equal(t, integration.SessionStatusCompleted, session.Status)
	assert.NotNil(t, session.CompletedAt)
	assert.Equal(t, 10, session.Processed)
	assert.Equal(t, 7, session.Succeeded)
	assert.Equal(t, 3, session.Failed)
	assert.Equal(t, 4, session.Config.BatchSize)
	assert.Equal(t, "USD", session.Config.DefaultCurrency)

	assert.Equal(t, int32(3), h.admitter.refreshes.Load(), "one snapshot per chunk")

	statuses := map[catalog.AdmissionStatus]int{}
	for _, p := range h.products.upserted() {
		statuses[p.AdmissionStatus]++
		assert.Equal(t, catalog.ProductID("woocommerce", p.ExternalID), p.ID)
	}
	assert.Equal(t, map[catalog.AdmissionStatus]int{
		catalog.AdmissionStatusPreview:  7,
		catalog.AdmissionStatusRejected: 3,
	}, statuses)

	logs, err := h.syncLogs.FindBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 30, "taxonomy, pricing and admission entries per candidate")
	assert.Len(t, h.syncLogs.failed(), 3)
	for _, e := range h.syncLogs.failed() {
		assert.Equal(t, integration.StageAdmission, e.Stage)
		assert.Contains(t, e.ErrorMessage, "missing_data")
	}
}

func TestService_RunCategoryMappingFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(c *catalog.Category) CategoryNormalizer {
		return stubNormalizer{category: c, unmapped: map[string]bool{"Mystery": true}}
	})
	h.products.On("Upsert", mock.Anything, mock.Anything, false).Return(nil)

	unmapped := goodCandidate("2")
	unmapped.Categories = []string{"Mystery"}

	report, err := h.service.Run(ctx, runConfig(), []integration.Candidate{goodCandidate("1"), unmapped})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.Approved)
	assert.Equal(t, map[quality.RejectionReason]int{quality.ReasonCategoryMapping: 1}, report.Summary.RejectionReasons)
	assert.Equal(t, 1, report.Session.Failed)
	assert.Len(t, h.products.upserted(), 1, "unmapped candidates are skipped before scoring")
	h.metrics.AssertNumberOfCalls(t, "Create", 1)

	failed := h.syncLogs.failed()
	require.Len(t, failed, 1)
	assert.Equal(t, integration.StageTaxonomy, failed[0].Stage)
	assert.Equal(t, "woocommerce:2", failed[0].ProductID)
	assert.Contains(t, failed[0].ErrorMessage, "category_mapping")
}

func TestService_RunIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(c *catalog.Category) CategoryNormalizer {
		return stubNormalizer{category: c, panics: map[string]bool{"Boom": true}}
	})
	h.products.On("Upsert", mock.Anything, mock.MatchedBy(func(p *catalog.AdmittedProduct) bool {
		return p.ExternalID == "3"
	}), false).Return(errors.New("deadlock detected"))
	h.products.On("Upsert", mock.Anything, mock.Anything, false).Return(nil)

	panicking := goodCandidate("2")
	panicking.Categories = []string{"Boom"}
	noID := goodCandidate("")

	report, err := h.service.Run(ctx, runConfig(), []integration.Candidate{goodCandidate("1"), panicking, goodCandidate("3"), noID, goodCandidate("5")})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Summary.TotalProcessed)
	assert.Equal(t, 2, report.Summary.Approved)
	assert.Equal(t, map[quality.RejectionReason]int{quality.ReasonProcessingFailed: 3}, report.Summary.RejectionReasons)
	assert.Equal(t, 5, report.Session.Processed)
	assert.Equal(t, 3, report.Session.Failed)

	stages := map[string]bool{}
	for _, e := range h.syncLogs.failed() {
		stages[e.Stage] = true
	}
	assert.True(t, stages[integration.StagePipeline])
	assert.True(t, stages[integration.StagePersist])
}

func TestService_RunSyncInventoryFlag(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, plainNormalizer)
	h.products.On("Upsert", mock.Anything, mock.Anything, true).Return(nil)

	cfg := runConfig()
	cfg.SyncInventory = true
	_, err := h.service.Run(ctx, cfg, []integration.Candidate{goodCandidate("1")})

	require.NoError(t, err)
	h.products.AssertCalled(t, "Upsert", mock.Anything, mock.Anything, true)
}

func TestService_RunInvalidConfig(t *testing.T) {
	h := newHarness(t, plainNormalizer)

	_, err := h.service.Run(context.Background(), integration.RunConfig{SourcePlatform: "Not A Slug"}, nil)

	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_RUN_CONFIG", de.Code)
	assert.Empty(t, h.sessions.rows)
}

func TestService_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHarness(t, plainNormalizer)

	report, err := h.service.Run(ctx, runConfig(), []integration.Candidate{goodCandidate("1"), goodCandidate("2")})

	require.NoError(t, err)
	assert.Equal(t, integration.SessionStatusCompleted, report.Session.Status)
	assert.Equal(t, 0, report.Session.Processed)
	assert.Empty(t, report.Results)
	h.products.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RunEmpty(t *testing.T) {
	h := newHarness(t, plainNormalizer)

	report, err := h.service.Run(context.Background(), runConfig(), nil)

	require.NoError(t, err)
	assert.Equal(t, integration.SessionStatusCompleted, report.Session.Status)
	assert.Equal(t, 0, report.Summary.TotalProcessed)
}

func TestBuildProduct(t *testing.T) {
	category, err := catalog.NewCategory("electronics", "Electronics")
	require.NoError(t, err)
	cfg := integration.RunConfig{SourcePlatform: integration.PlatformShopify, DefaultCurrency: "eur", EnableAutoSync: true}

	c := goodCandidate("77")
	c.Tags = []string{"dropship"}
	c.Metadata = map[string]any{"supplier": "cj"}
	original := decimal.NewFromInt(150)
	cls := pricing.Classification{
		Type:               catalog.CommercialTypeDropship,
		Price:              decimal.RequireFromString("129.99"),
		OriginalPrice:      &original,
		DiscountPercentage: 13,
	}

	t.Run("accepted", func(t *testing.T) {
		p := BuildProduct(&c, cfg, category, cls, quality.AdmissionResult{QualityScore: 98})

		require.NoError(t, p.Validate())
		assert.Equal(t, "shopify:77", p.ID)
		assert.Equal(t, catalog.AdmissionStatusPreview, p.AdmissionStatus)
		assert.Equal(t, category.ID.String(), p.CategoryID)
		assert.Equal(t, "Electronics", p.CategoryName)
		assert.Equal(t, 12, p.StockQuantity)
		assert.True(t, p.InStock)
		assert.Equal(t, "EUR", p.Currency)
		assert.True(t, p.AutoSync)
		assert.Equal(t, catalog.SyncStatusSynced, p.SyncStatus)
		assert.Equal(t, "https://cdn.example.com/products/headphones.jpg", p.PrimaryImage)
		assert.Equal(t, "cj", p.Metadata["supplier"])
		assert.Equal(t, "ACME-HP-01", p.Metadata["sku"])
		assert.Equal(t, 98, p.QualityScore)
	})

	t.Run("rejected", func(t *testing.T) {
		p := BuildProduct(&c, cfg, category, cls, quality.AdmissionResult{ShouldReject: true, RejectionReason: quality.ReasonMissingData})
		assert.Equal(t, catalog.AdmissionStatusRejected, p.AdmissionStatus)
	})

	t.Run("explicit out of stock", func(t *testing.T) {
		out := false
		cc := c
		cc.InStock = &out
		p := BuildProduct(&cc, cfg, category, cls, quality.AdmissionResult{})
		assert.False(t, p.InStock)
		assert.Equal(t, 12, p.StockQuantity)
	})
}

func TestService_SessionLogs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, plainNormalizer)
	h.products.On("Upsert", mock.Anything, mock.Anything, false).Return(nil)

	report, err := h.service.Run(ctx, runConfig(), []integration.Candidate{goodCandidate("ok-1")})
	require.NoError(t, err)

	logs, err := h.service.SessionLogs(ctx, report.Session.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, integration.StageTaxonomy, logs[0].Stage)

	recent, err := h.service.RecentSessions(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, report.Session.ID, recent[0].ID)

	_, err = h.service.SessionLogs(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
