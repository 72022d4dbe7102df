package quality

// RejectionReason explains why a candidate was not admitted. The empty
// value means the candidate was accepted.
type RejectionReason string

const (
	ReasonMissingData       RejectionReason = "missing_data"
	ReasonContentFiltered   RejectionReason = "content_filtered"
	ReasonDuplicateDetected RejectionReason = "duplicate_detected"
	ReasonPerformanceRisk   RejectionReason = "performance_risk"

	// Pipeline failures. These skip the candidate before or outside scoring.
	ReasonCategoryMapping  RejectionReason = "category_mapping"
	ReasonProcessingFailed RejectionReason = "processing_failed"
)

// Assessment tiers of accepted candidates
const (
	AssessmentHighQuality = "high quality"
	AssessmentGoodQuality = "good quality"
	AssessmentAcceptable  = "acceptable - needs monitoring"
	AssessmentRejected    = "rejected"
)

// ValidationResult is the output of the completeness stage
type ValidationResult struct {
	IsValid         bool            `json:"is_valid"`
	Score           int             `json:"score"`
	Issues          []string        `json:"issues"`
	RejectionReason RejectionReason `json:"rejection_reason,omitempty"`
}

// ContentFilterResult is the output of the content policy stage
type ContentFilterResult struct {
	IsAllowed       bool            `json:"is_allowed"`
	Score           int             `json:"score"`
	SpamScore       int             `json:"spam_score"`
	Flags           []string        `json:"flags"`
	RejectionReason RejectionReason `json:"rejection_reason,omitempty"`
}

// AdmissionResult is the decision for one candidate
type AdmissionResult struct {
	ProductID       string              `json:"product_id"`
	ShouldReject    bool                `json:"should_reject"`
	RejectionReason RejectionReason     `json:"rejection_reason,omitempty"`
	QualityScore    int                 `json:"quality_score"`
	Validation      ValidationResult    `json:"validation_result"`
	Content         ContentFilterResult `json:"content_filter_result"`
	DuplicateRisk   int                 `json:"duplicate_risk"`
	Assessment      string              `json:"overall_assessment"`
}

// BatchSummary counts the outcomes of a batch
type BatchSummary struct {
	TotalProcessed   int                     `json:"total_processed"`
	Approved         int                     `json:"approved"`
	Rejected         int                     `json:"rejected"`
	RejectionReasons map[RejectionReason]int `json:"rejection_reasons"`
}

// NewBatchSummary returns an empty summary
func NewBatchSummary() BatchSummary {
	return BatchSummary{RejectionReasons: make(map[RejectionReason]int)}
}

// Add counts one result
func (s *BatchSummary) Add(r AdmissionResult) {
	s.TotalProcessed++
	if !r.ShouldReject {
		s.Approved++
		return
	}
	s.Rejected++
	s.RejectionReasons[r.RejectionReason]++
}
