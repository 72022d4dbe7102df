package telemetry

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/quality"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "storefront/admission"

// Metric attribute keys
var (
	AttrPlatform = attribute.Key("platform")
	AttrOutcome  = attribute.Key("outcome")
	AttrReason   = attribute.Key("reason")
)

// Outcome attribute values
const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
)

// AdmissionMetrics records every admission decision
type AdmissionMetrics struct {
	candidates    metric.Int64Counter
	qualityScore  metric.Int64Histogram
	duplicateRisk metric.Int64Histogram
}

// NewAdmissionMetrics registers the admission instruments on mp's meter
func NewAdmissionMetrics(mp *MeterProvider) (*AdmissionMetrics, error) {
	meter := mp.Meter(meterName)
	scoreBuckets := metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)

	candidates, err := meter.Int64Counter("storefront.admission.candidates",
		metric.WithDescription("Candidates scored by the admission pipeline"),
		metric.WithUnit("{candidate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create candidates counter: %w", err)
	}
	qualityScore, err := meter.Int64Histogram("storefront.admission.quality_score",
		metric.WithDescription("Quality score of scored candidates"),
		scoreBuckets,
	)
	if err != nil {
		return nil, fmt.Errorf("create quality score histogram: %w", err)
	}
	duplicateRisk, err := meter.Int64Histogram("storefront.admission.duplicate_risk",
		metric.WithDescription("Estimated duplicate risk of scored candidates"),
		scoreBuckets,
	)
	if err != nil {
		return nil, fmt.Errorf("create duplicate risk histogram: %w", err)
	}

	return &AdmissionMetrics{
		candidates:    candidates,
		qualityScore:  qualityScore,
		duplicateRisk: duplicateRisk,
	}, nil
}

// ObserveAdmission records one decision
func (m *AdmissionMetrics) ObserveAdmission(ctx context.Context, platform string, result quality.AdmissionResult) {
	outcome := OutcomeApproved
	if result.ShouldReject {
		outcome = OutcomeRejected
	}
	platformAttr := metric.WithAttributes(AttrPlatform.String(platform))

	m.candidates.Add(ctx, 1, metric.WithAttributes(
		AttrPlatform.String(platform),
		AttrOutcome.String(outcome),
		AttrReason.String(string(result.RejectionReason)),
	))
	m.qualityScore.Record(ctx, int64(result.QualityScore), platformAttr)
	m.duplicateRisk.Record(ctx, int64(result.DuplicateRisk), platformAttr)
}
