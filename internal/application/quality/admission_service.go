package quality

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SettingsProvider supplies the settings in effect
type SettingsProvider interface {
	Current(ctx context.Context) (quality.Settings, error)
}

// AdmissionObserver is notified of every decision (metrics export)
type AdmissionObserver interface {
	ObserveAdmission(ctx context.Context, platform string, result quality.AdmissionResult)
}

type nopObserver struct{}

func (nopObserver) ObserveAdmission(context.Context, string, quality.AdmissionResult) {}

// Snapshot is the effective configuration of one batch. It is built by
// Refresh and never changes afterwards; the platform history baseline is
// read lazily once per snapshot.
type Snapshot struct {
	settings  quality.Settings
	estimator RiskEstimator

	historyMu sync.Mutex
	history   map[integration.SourcePlatform]historyEntry
}

type historyEntry struct {
	mean float64
	ok   bool
}

// Settings returns the settings captured by the snapshot
func (s *Snapshot) Settings() quality.Settings {
	return s.settings
}

// FailureEntry is a failed sync-log record shown on the dashboard
type FailureEntry struct {
	ProductID string    `json:"product_id"`
	Platform  string    `json:"platform"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// DashboardStats aggregates quality metrics and recent failures
type DashboardStats struct {
	TotalScored         int64                             `json:"total_scored"`
	Approved            int64                             `json:"approved"`
	Rejected            int64                             `json:"rejected"`
	AverageQualityScore float64                           `json:"average_quality_score"`
	RejectionReasons    map[quality.RejectionReason]int64 `json:"rejection_reasons"`
	RecentFlags         []string                          `json:"recent_flags"`
	RecentFailures      []FailureEntry                    `json:"recent_failures"`
}

const dashboardRecentLimit = 10

// AdmissionService runs the signal stages for a candidate, aggregates
// them into a quality score and applies the decision table.
type AdmissionService struct {
	settings  SettingsProvider
	validator *Validator
	filter    *ContentFilter
	products  catalog.ProductRepository
	metrics   quality.MetricsRepository
	syncLogs  integration.SyncLogRepository
	observer  AdmissionObserver
	logger    *zap.Logger
	workers   int

	mu      sync.RWMutex
	current *Snapshot
}

// AdmissionOption configures an AdmissionService
type AdmissionOption func(*AdmissionService)

// WithWorkers bounds concurrent candidate evaluation in ProcessBatch
func WithWorkers(n int) AdmissionOption {
	return func(s *AdmissionService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithObserver registers an observer for every decision
func WithObserver(o AdmissionObserver) AdmissionOption {
	return func(s *AdmissionService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewAdmissionService creates an AdmissionService
func NewAdmissionService(
	settings SettingsProvider,
	products catalog.ProductRepository,
	metrics quality.MetricsRepository,
	syncLogs integration.SyncLogRepository,
	logger *zap.Logger,
	opts ...AdmissionOption,
) *AdmissionService {
	s := &AdmissionService{
		settings:  settings,
		validator: NewValidator(),
		filter:    NewContentFilter(),
		products:  products,
		metrics:   metrics,
		syncLogs:  syncLogs,
		observer:  nopObserver{},
		logger:    logger,
		workers:   4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh loads the settings in effect into a new snapshot and makes it
// current. Callers refresh once at batch start and pass the snapshot down.
func (s *AdmissionService) Refresh(ctx context.Context) (*Snapshot, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		settings:  settings,
		estimator: NewRiskEstimator(settings.Duplicate, s.products),
		history:   make(map[integration.SourcePlatform]historyEntry),
	}
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap, nil
}

// Current returns the last refreshed snapshot, or nil before the first
// Refresh.
func (s *AdmissionService) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Process evaluates a single candidate against freshly loaded settings
func (s *AdmissionService) Process(ctx context.Context, platform integration.SourcePlatform, c *integration.Candidate) (quality.AdmissionResult, error) {
	snap, err := s.Refresh(ctx)
	if err != nil {
		return quality.AdmissionResult{}, err
	}
	return s.ProcessWith(ctx, snap, platform, c)
}

// ProcessWith evaluates a candidate under snap: validate, filter,
// estimate duplicate risk, aggregate, decide, then record metrics. When
// risk or history lookups fail, a processing_failed metrics row is still
// written and the error is returned with that result.
func (s *AdmissionService) ProcessWith(ctx context.Context, snap *Snapshot, platform integration.SourcePlatform, c *integration.Candidate) (quality.AdmissionResult, error) {
	productID := catalog.ProductID(string(platform), c.ExternalID)

	validation := s.validator.Validate(c, snap.settings)
	content := s.filter.Filter(c, snap.settings)
	risk, err := snap.estimator.EstimateRisk(ctx, platform, c)
	if err != nil {
		return s.recordFailure(ctx, platform, productID, validation, content,
			fmt.Errorf("estimate duplicate risk for %s: %w", productID, err))
	}

	result := quality.AdmissionResult{
		ProductID:     productID,
		Validation:    validation,
		Content:       content,
		DuplicateRisk: clampScore(risk),
	}
	result.QualityScore = QualityScore(snap.settings.Weights, validation.Score, content.Score, result.DuplicateRisk)

	baseline, err := s.historicalBaseline(ctx, snap, platform)
	if err != nil {
		return s.recordFailure(ctx, platform, productID, validation, content, err)
	}
	Decide(snap.settings, &result, baseline)

	if err := s.metrics.Create(ctx, quality.NewMetrics(string(platform), result)); err != nil {
		return result, fmt.Errorf("record quality metrics for %s: %w", productID, err)
	}
	s.observer.ObserveAdmission(ctx, string(platform), result)

	s.logger.Debug("Candidate scored",
		zap.String("product_id", productID),
		zap.Int("validation_score", validation.Score),
		zap.Int("content_score", content.Score),
		zap.Int("duplicate_risk", result.DuplicateRisk),
		zap.Int("quality_score", result.QualityScore),
		zap.Bool("rejected", result.ShouldReject),
		zap.String("reason", string(result.RejectionReason)),
	)
	return result, nil
}

// recordFailure writes the processing_failed metrics row for an
// evaluation that could not reach a decision and returns cause.
func (s *AdmissionService) recordFailure(
	ctx context.Context,
	platform integration.SourcePlatform,
	productID string,
	validation quality.ValidationResult,
	content quality.ContentFilterResult,
	cause error,
) (quality.AdmissionResult, error) {
	result := FailedResult(productID)
	result.Validation = validation
	result.Content = content
	if err := s.metrics.Create(ctx, quality.NewMetrics(string(platform), result)); err != nil {
		s.logger.Error("Failed to record quality metrics",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
	s.observer.ObserveAdmission(ctx, string(platform), result)
	return result, cause
}

// ProcessBatch evaluates candidates independently on a bounded worker
// pool under one snapshot. Results keep the input order. A candidate that
// fails or panics is counted as processing_failed; it never aborts the
// batch.
func (s *AdmissionService) ProcessBatch(ctx context.Context, platform integration.SourcePlatform, candidates []integration.Candidate) ([]quality.AdmissionResult, quality.BatchSummary, error) {
	snap, err := s.Refresh(ctx)
	if err != nil {
		return nil, quality.BatchSummary{}, err
	}

	results := make([]quality.AdmissionResult, len(candidates))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = s.processSafely(ctx, snap, platform, &candidates[i])
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, quality.BatchSummary{}, err
	}

	summary := quality.NewBatchSummary()
	for _, r := range results {
		summary.Add(r)
	}
	s.logger.Info("Batch scored",
		zap.String("platform", string(platform)),
		zap.Int("total", summary.TotalProcessed),
		zap.Int("approved", summary.Approved),
		zap.Int("rejected", summary.Rejected),
	)
	return results, summary, nil
}

func (s *AdmissionService) processSafely(ctx context.Context, snap *Snapshot, platform integration.SourcePlatform, c *integration.Candidate) (result quality.AdmissionResult) {
	productID := catalog.ProductID(string(platform), c.ExternalID)
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Candidate evaluation panicked",
				zap.String("product_id", productID),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			result = FailedResult(productID)
		}
	}()

	r, err := s.ProcessWith(ctx, snap, platform, c)
	if err != nil {
		s.logger.Warn("Candidate evaluation failed", zap.String("product_id", productID), zap.Error(err))
		return FailedResult(productID)
	}
	return r
}

func (s *AdmissionService) historicalBaseline(ctx context.Context, snap *Snapshot, platform integration.SourcePlatform) (*float64, error) {
	if snap.settings.HistoricalWeight <= 0 {
		return nil, nil
	}
	snap.historyMu.Lock()
	defer snap.historyMu.Unlock()

	e, ok := snap.history[platform]
	if !ok {
		mean, n, err := s.metrics.PlatformMeanScore(ctx, string(platform))
		if err != nil {
			return nil, fmt.Errorf("load %s quality history: %w", platform, err)
		}
		e = historyEntry{mean: mean, ok: n > 0}
		snap.history[platform] = e
	}
	if !e.ok {
		return nil, nil
	}
	mean := e.mean
	return &mean, nil
}

// Dashboard aggregates all quality metrics and the latest failures
func (s *AdmissionService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	summary, err := s.metrics.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize quality metrics: %w", err)
	}
	flags, err := s.metrics.RecentFlags(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent flags: %w", err)
	}
	failures, err := s.syncLogs.RecentFailures(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent failures: %w", err)
	}

	stats := &DashboardStats{
		TotalScored:         summary.TotalScored,
		Approved:            summary.Approved,
		Rejected:            summary.TotalScored - summary.Approved,
		AverageQualityScore: summary.AverageQuality,
		RejectionReasons:    summary.RejectionReasons,
		RecentFlags:         flags,
		RecentFailures:      make([]FailureEntry, 0, len(failures)),
	}
	if stats.RejectionReasons == nil {
		stats.RejectionReasons = map[quality.RejectionReason]int64{}
	}
	if stats.RecentFlags == nil {
		stats.RecentFlags = []string{}
	}
	for _, f := range failures {
		stats.RecentFailures = append(stats.RecentFailures, FailureEntry{
			ProductID: f.ProductID,
			Platform:  string(f.Platform),
			Stage:     f.Stage,
			Message:   f.ErrorMessage,
			At:        f.CreatedAt,
		})
	}
	return stats, nil
}

// QualityScore is round(wV*V + wC*C + wD*(100-D)), computed in decimal so
// the rounding is exact.
func QualityScore(w quality.Weights, validation, content, risk int) int {
	total := decimal.NewFromFloat(w.Validation).Mul(decimal.NewFromInt(int64(validation))).
		Add(decimal.NewFromFloat(w.Content).Mul(decimal.NewFromInt(int64(content)))).
		Add(decimal.NewFromFloat(w.Duplicate).Mul(decimal.NewFromInt(int64(100 - risk))))
	return clampScore(int(total.Round(0).IntPart()))
}

// Decide applies the decision table to r; the first matching rule wins.
// baseline, when set, is the platform's historical mean quality score and
// is blended into the performance-risk rule only.
func Decide(s quality.Settings, r *quality.AdmissionResult, baseline *float64) {
	t := s.Thresholds
	reject := func(reason quality.RejectionReason) {
		r.ShouldReject = true
		r.RejectionReason = reason
		r.Assessment = quality.AssessmentRejected
	}

	switch {
	case !r.Validation.IsValid && r.Validation.Score < t.ValidationRejectBelow:
		reject(quality.ReasonMissingData)
	case !r.Content.IsAllowed || r.Content.Score < t.ContentRejectBelow:
		reject(quality.ReasonContentFiltered)
	case r.DuplicateRisk > t.DuplicateRejectAbove:
		reject(quality.ReasonDuplicateDetected)
	case performanceScore(r.QualityScore, s.HistoricalWeight, baseline) < float64(t.MinQualityScore):
		reject(quality.ReasonPerformanceRisk)
	default:
		r.ShouldReject = false
		r.RejectionReason = ""
		switch {
		case r.QualityScore >= t.HighQualityScore:
			r.Assessment = quality.AssessmentHighQuality
		case r.QualityScore >= t.GoodQualityScore:
			r.Assessment = quality.AssessmentGoodQuality
		default:
			r.Assessment = quality.AssessmentAcceptable
		}
	}
}

func performanceScore(score int, weight float64, baseline *float64) float64 {
	if baseline == nil || weight <= 0 {
		return float64(score)
	}
	return (1-weight)*float64(score) + weight*(*baseline)
}

// FailedResult is the result recorded for a candidate whose evaluation
// could not complete.
func FailedResult(productID string) quality.AdmissionResult {
	return quality.AdmissionResult{
		ProductID:       productID,
		ShouldReject:    true,
		RejectionReason: quality.ReasonProcessingFailed,
		Assessment:      quality.AssessmentRejected,
	}
}
