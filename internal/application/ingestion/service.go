// Package ingestion runs import sessions: every candidate of a run is
// mapped to a category, priced, scored and stored with its admission
// status.
package ingestion

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/pricing"
	admission "github.com/storefront/backend/internal/application/quality"
	"github.com/storefront/backend/internal/application/taxonomy"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CategoryNormalizer resolves candidate labels to an internal category
type CategoryNormalizer interface {
	Normalize(ctx context.Context, platform integration.SourcePlatform, labels []string, mode integration.CategoryMappingMode) (*taxonomy.Resolution, error)
}

// Admitter scores candidates under a settings snapshot
type Admitter interface {
	Refresh(ctx context.Context) (*admission.Snapshot, error)
	ProcessWith(ctx context.Context, snap *admission.Snapshot, platform integration.SourcePlatform, c *integration.Candidate) (quality.AdmissionResult, error)
}

// Report is the outcome of one run
type Report struct {
	Session *integration.ImportSession
	Summary quality.BatchSummary
	Results []quality.AdmissionResult
}

// Options tunes a Service
type Options struct {
	Workers          int
	DefaultBatchSize int
	DefaultCurrency  string
}

// Service runs ingestion sessions
type Service struct {
	sessions   *SessionManager
	normalizer CategoryNormalizer
	admitter   Admitter
	products   catalog.ProductRepository
	syncLogs   integration.SyncLogRepository
	logger     *zap.Logger
	opts       Options
}

// NewService creates a Service
func NewService(
	sessions *SessionManager,
	normalizer CategoryNormalizer,
	admitter Admitter,
	products catalog.ProductRepository,
	syncLogs integration.SyncLogRepository,
	logger *zap.Logger,
	opts Options,
) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.DefaultBatchSize <= 0 {
		opts.DefaultBatchSize = 50
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	return &Service{
		sessions:   sessions,
		normalizer: normalizer,
		admitter:   admitter,
		products:   products,
		syncLogs:   syncLogs,
		logger:     logger,
		opts:       opts,
	}
}

// Run ingests candidates under cfg. Candidates are processed in chunks of
// cfg.BatchSize; each chunk is scored under one settings snapshot. A
// failing candidate is logged and counted and never aborts the run. When
// ctx is cancelled no further candidate is started, and the session is
// still completed.
func (s *Service) Run(ctx context.Context, cfg integration.RunConfig, candidates []integration.Candidate) (*Report, error) {
	cfg = cfg.WithDefaults(s.opts.DefaultBatchSize, s.opts.DefaultCurrency)
	session, err := s.sessions.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, log := logger.WithSessionID(ctx, s.logger, session.ID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "ingestion", "run",
		telemetry.SpanAttrSessionID, session.ID.String(),
		telemetry.SpanAttrPlatform, string(cfg.SourcePlatform),
		telemetry.SpanAttrCandidates, len(candidates),
		telemetry.SpanAttrBatchSize, cfg.BatchSize,
	)
	defer span.End()

	if err := s.sessions.Begin(ctx, session); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// a zero result marks a candidate never started because ctx ended
	slots := make([]quality.AdmissionResult, len(candidates))
	for start := 0; start < len(candidates); start += cfg.BatchSize {
		if ctx.Err() != nil {
			log.Warn("Import session interrupted", zap.Int("remaining", len(candidates)-start), zap.Error(ctx.Err()))
			break
		}
		end := min(start+cfg.BatchSize, len(candidates))
		s.runChunk(ctx, session, cfg, candidates[start:end], slots[start:end])
	}

	final, err := s.sessions.Complete(context.WithoutCancel(ctx), session)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	summary := quality.NewBatchSummary()
	results := make([]quality.AdmissionResult, 0, len(slots))
	for _, r := range slots {
		if r.ProductID == "" {
			continue
		}
		summary.Add(r)
		results = append(results, r)
	}
	return &Report{Session: final, Summary: summary, Results: results}, nil
}

func (s *Service) runChunk(ctx context.Context, session *integration.ImportSession, cfg integration.RunConfig, chunk []integration.Candidate, out []quality.AdmissionResult) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ingestion", "chunk", telemetry.SpanAttrCandidates, len(chunk))
	defer span.End()

	snap, err := s.admitter.Refresh(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		for i := range chunk {
			out[i] = s.fail(ctx, session, &chunk[i], integration.StagePipeline, quality.ReasonProcessingFailed,
				fmt.Sprintf("load admission settings: %v", err))
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i := range chunk {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out[i] = s.processSafely(ctx, snap, session, cfg, &chunk[i])
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) processSafely(ctx context.Context, snap *admission.Snapshot, session *integration.ImportSession, cfg integration.RunConfig, c *integration.Candidate) (result quality.AdmissionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.FromContext(ctx).Error("Candidate processing panicked",
				zap.String("product_id", catalog.ProductID(string(session.SourcePlatform), c.ExternalID)),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			result = s.fail(ctx, session, c, integration.StagePipeline, quality.ReasonProcessingFailed, fmt.Sprintf("panic: %v", rec))
		}
	}()
	return s.process(ctx, snap, session, cfg, c)
}

// process runs one candidate: taxonomy, classification, admission,
// upsert, sync logs, counters.
func (s *Service) process(ctx context.Context, snap *admission.Snapshot, session *integration.ImportSession, cfg integration.RunConfig, c *integration.Candidate) quality.AdmissionResult {
	platform := session.SourcePlatform
	if strings.TrimSpace(c.ExternalID) == "" {
		return s.fail(ctx, session, c, integration.StagePipeline, quality.ReasonProcessingFailed, "candidate has no external id")
	}
	productID := catalog.ProductID(string(platform), c.ExternalID)
	sessionID := session.ID

	resolution, err := s.normalizer.Normalize(ctx, platform, c.Categories, cfg.CategoryMappingMode)
	if err != nil {
		return s.fail(ctx, session, c, integration.StageTaxonomy, quality.ReasonProcessingFailed, err.Error())
	}
	if resolution == nil {
		return s.fail(ctx, session, c, integration.StageTaxonomy, quality.ReasonCategoryMapping,
			fmt.Sprintf("no internal category for labels %q", c.Categories))
	}

	cls := pricing.Classify(c, cfg)

	result, err := s.admitter.ProcessWith(ctx, snap, platform, c)
	if err != nil {
		return s.fail(ctx, session, c, integration.StageAdmission, quality.ReasonProcessingFailed, err.Error())
	}

	product := BuildProduct(c, cfg, resolution.Category, cls, result)
	if err := s.products.Upsert(ctx, product, cfg.SyncInventory); err != nil {
		return s.fail(ctx, session, c, integration.StagePersist, quality.ReasonProcessingFailed, err.Error())
	}

	admissionEntry := integration.NewSyncLogEntry(&sessionID, productID, platform, integration.StageAdmission, integration.SyncLogSuccess)
	if result.ShouldReject {
		admissionEntry.Status = integration.SyncLogFailed
		admissionEntry.ErrorMessage = fmt.Sprintf("rejected: %s (quality score %d)", result.RejectionReason, result.QualityScore)
	}
	admissionEntry.WithValues(nil, map[string]any{
		"admission_status": string(product.AdmissionStatus),
		"quality_score":    result.QualityScore,
		"assessment":       result.Assessment,
	})
	s.appendLogs(ctx,
		integration.NewSyncLogEntry(&sessionID, productID, platform, integration.StageTaxonomy, integration.SyncLogSuccess).
			WithValues(map[string]any{"labels": c.Categories}, map[string]any{
				"category_id": resolution.Category.ID.String(),
				"category":    resolution.Category.Slug,
				"strategy":    resolution.Strategy,
			}),
		integration.NewSyncLogEntry(&sessionID, productID, platform, integration.StagePricing, integration.SyncLogSuccess).
			WithValues(map[string]any{"price": c.Price, "regular_price": c.RegularPrice, "sale_price": c.SalePrice}, map[string]any{
				"commercial_type":     string(cls.Type),
				"price":               cls.Price.StringFixed(2),
				"discount_percentage": cls.DiscountPercentage,
			}),
		admissionEntry,
	)

	outcome := integration.OutcomeSucceeded
	if result.ShouldReject {
		outcome = integration.OutcomeFailed
	}
	s.recordOutcome(ctx, sessionID, outcome)
	return result
}

// fail records a candidate that left the pipeline before a decision
func (s *Service) fail(ctx context.Context, session *integration.ImportSession, c *integration.Candidate, stage string, reason quality.RejectionReason, msg string) quality.AdmissionResult {
	sessionID := session.ID
	result := FailedResult(session.SourcePlatform, c, reason)

	logger.FromContext(ctx).Warn("Candidate failed",
		zap.String("product_id", result.ProductID),
		zap.String("stage", stage),
		zap.String("reason", string(reason)),
		zap.String("error", msg),
	)
	s.appendLogs(ctx, integration.NewSyncLogEntry(&sessionID, result.ProductID, session.SourcePlatform, stage, integration.SyncLogFailed).
		WithError(fmt.Sprintf("%s: %s", reason, msg)))
	s.recordOutcome(ctx, sessionID, integration.OutcomeFailed)
	return result
}

func (s *Service) appendLogs(ctx context.Context, entries ...*integration.SyncLogEntry) {
	if err := s.syncLogs.Append(context.WithoutCancel(ctx), entries...); err != nil {
		logger.FromContext(ctx).Error("Failed to write sync log", zap.Error(err))
	}
}

func (s *Service) recordOutcome(ctx context.Context, id uuid.UUID, outcome integration.SessionOutcome) {
	if err := s.sessions.RecordOutcome(context.WithoutCancel(ctx), id, outcome); err != nil {
		logger.FromContext(ctx).Error("Failed to update session counters", zap.Error(err))
	}
}

// Session returns a stored session
func (s *Service) Session(ctx context.Context, id uuid.UUID) (*integration.ImportSession, error) {
	return s.sessions.Get(ctx, id)
}

// RecentSessions returns the newest sessions
func (s *Service) RecentSessions(ctx context.Context, limit int) ([]*integration.ImportSession, error) {
	return s.sessions.Recent(ctx, limit)
}

// SessionLogs returns the sync log of one session in write order
func (s *Service) SessionLogs(ctx context.Context, id uuid.UUID) ([]*integration.SyncLogEntry, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.syncLogs.FindBySession(ctx, id)
}

// FailedResult is the result of a candidate that never reached a decision
func FailedResult(platform integration.SourcePlatform, c *integration.Candidate, reason quality.RejectionReason) quality.AdmissionResult {
	r := admission.FailedResult(catalog.ProductID(string(platform), c.ExternalID))
	r.RejectionReason = reason
	return r
}

// BuildProduct assembles the stored product for a scored candidate.
// Rejected candidates are stored too, with status rejected, so a later
// re-import updates the same row.
func BuildProduct(c *integration.Candidate, cfg integration.RunConfig, category *catalog.Category, cls pricing.Classification, result quality.AdmissionResult) *catalog.AdmittedProduct {
	now := time.Now()
	status := catalog.AdmissionStatusPreview
	if result.ShouldReject {
		status = catalog.AdmissionStatusRejected
	}

	stock := 0
	if c.StockQuantity != nil {
		stock = *c.StockQuantity
	}
	inStock := stock > 0
	if c.InStock != nil {
		inStock = *c.InStock
	}

	return &catalog.AdmittedProduct{
		ID:                 catalog.ProductID(string(cfg.SourcePlatform), c.ExternalID),
		Name:               strings.TrimSpace(c.Name),
		Description:        strings.TrimSpace(c.Description),
		Price:              cls.Price,
		OriginalPrice:      cls.OriginalPrice,
		DiscountPercentage: cls.DiscountPercentage,
		CategoryID:         category.ID.String(),
		CategoryName:       category.Name,
		Brand:              strings.TrimSpace(c.Brand),
		PrimaryImage:       c.PrimaryImage(),
		StockQuantity:      stock,
		InStock:            inStock,
		SourcePlatform:     string(cfg.SourcePlatform),
		ExternalID:         c.ExternalID,
		CommercialType:     cls.Type,
		AffiliateURL:       cls.AffiliateURL,
		Currency:           strings.ToUpper(cfg.DefaultCurrency),
		Metadata:           productMetadata(c),
		AutoSync:           cfg.EnableAutoSync,
		LastSyncedAt:       now,
		SyncStatus:         catalog.SyncStatusSynced,
		AdmissionStatus:    status,
		QualityScore:       result.QualityScore,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func productMetadata(c *integration.Candidate) map[string]any {
	meta := make(map[string]any, len(c.Metadata)+3)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	if c.SKU != "" {
		meta["sku"] = c.SKU
	}
	if len(c.Tags) > 0 {
		meta["tags"] = c.Tags
	}
	if len(c.Categories) > 0 {
		meta["source_categories"] = c.Categories
	}
	return meta
}
