package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	admission "github.com/storefront/backend/internal/application/quality"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SettingsEditor reads and edits the quality-control settings
type SettingsEditor interface {
	Current(ctx context.Context) (quality.Settings, error)
	Save(ctx context.Context, settings quality.Settings) error
	Reset(ctx context.Context) (quality.Settings, error)
}

// AdmissionScorer runs candidates through the admission pipeline
type AdmissionScorer interface {
	Process(ctx context.Context, platform integration.SourcePlatform, c *integration.Candidate) (quality.AdmissionResult, error)
	ProcessBatch(ctx context.Context, platform integration.SourcePlatform, candidates []integration.Candidate) ([]quality.AdmissionResult, quality.BatchSummary, error)
	Dashboard(ctx context.Context) (*admission.DashboardStats, error)
}

// AdmissionHandler serves quality settings, the dashboard and ad-hoc scoring
type AdmissionHandler struct {
	BaseHandler
	settings SettingsEditor
	scorer   AdmissionScorer
}

// NewAdmissionHandler creates an AdmissionHandler
func NewAdmissionHandler(settings SettingsEditor, scorer AdmissionScorer) *AdmissionHandler {
	return &AdmissionHandler{settings: settings, scorer: scorer}
}

// TestCandidateRequest scores one candidate
type TestCandidateRequest struct {
	Platform  string                `json:"platform" binding:"required"`
	Candidate integration.Candidate `json:"candidate"`
}

// BatchRequest scores several candidates of one platform
type BatchRequest struct {
	Platform   string                  `json:"platform" binding:"required"`
	Candidates []integration.Candidate `json:"candidates" binding:"required,min=1,max=1000,dive"`
}

// BatchResponse carries results in input order plus their summary
type BatchResponse struct {
	Results []quality.AdmissionResult `json:"results"`
	Summary quality.BatchSummary      `json:"summary"`
}

// RegisterRoutes mounts the admission endpoints under /admission
func (h *AdmissionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/admission")
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.POST("/settings/reset", h.ResetSettings)
	g.GET("/dashboard", h.Dashboard)
	g.POST("/test", h.TestCandidate)
	g.POST("/batch", h.ScoreBatch)
}

// GetSettings godoc
// @Summary      Get quality settings
// @Description  Return the stored quality-control settings, or the defaults when none are stored
// @Tags         admission
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=quality.Settings}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admission/settings [get]
func (h *AdmissionHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Current(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// UpdateSettings godoc
// @Summary      Replace quality settings
// @Description  The body replaces the stored settings as a whole
// @Tags         admission
// @Accept       json
// @Produce      json
// @Param        request body quality.Settings true "Quality settings"
// @Success      200 {object} dto.Response{data=quality.Settings}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admission/settings [put]
func (h *AdmissionHandler) UpdateSettings(c *gin.Context) {
	var settings quality.Settings
	if !h.BindJSON(c, &settings) {
		return
	}
	if err := h.settings.Save(c.Request.Context(), settings); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// ResetSettings godoc
// @Summary      Reset quality settings
// @Description  Drop stored settings and return the defaults
// @Tags         admission
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=quality.Settings}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admission/settings/reset [post]
func (h *AdmissionHandler) ResetSettings(c *gin.Context) {
	settings, err := h.settings.Reset(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Dashboard godoc
// @Summary      Admission dashboard
// @Description  Totals, mean quality, rejection histogram, latest flags and recent failures
// @Tags         admission
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=admission.DashboardStats}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admission/dashboard [get]
func (h *AdmissionHandler) Dashboard(c *gin.Context) {
	stats, err := h.scorer.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// TestCandidate godoc
// @Summary      Score one candidate
// @Description  Run a single candidate through the admission stages
// @Tags         admission
// @Accept       json
// @Produce      json
// @Param        request body TestCandidateRequest true "Candidate"
// @Success      200 {object} dto.Response{data=quality.AdmissionResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admission/test [post]
func (h *AdmissionHandler) TestCandidate(c *gin.Context) {
	var req TestCandidateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	platform, ok := h.platform(c, req.Platform)
	if !ok {
		return
	}
	result, err := h.scorer.Process(c.Request.Context(), platform, &req.Candidate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ScoreBatch godoc
// @Summary      Score a batch of candidates
// @Tags         admission
// @Accept       json
// @Produce      json
// @Param        request body BatchRequest true "Candidates"
// @Success      200 {object} dto.Response{data=BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admission/batch [post]
func (h *AdmissionHandler) ScoreBatch(c *gin.Context) {
	var req BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	platform, ok := h.platform(c, req.Platform)
	if !ok {
		return
	}
	results, summary, err := h.scorer.ProcessBatch(c.Request.Context(), platform, req.Candidates)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BatchResponse{Results: results, Summary: summary})
}

func (h *AdmissionHandler) platform(c *gin.Context, raw string) (integration.SourcePlatform, bool) {
	p := integration.SourcePlatform(raw)
	if !p.IsValid() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "unknown source platform: "+raw)
		return "", false
	}
	return p, true
}
