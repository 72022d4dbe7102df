package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/ingestion"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/quality"
)

// IngestionRunner runs and reports ingestion sessions
type IngestionRunner interface {
	Run(ctx context.Context, cfg integration.RunConfig, candidates []integration.Candidate) (*ingestion.Report, error)
	Session(ctx context.Context, id uuid.UUID) (*integration.ImportSession, error)
	RecentSessions(ctx context.Context, limit int) ([]*integration.ImportSession, error)
	SessionLogs(ctx context.Context, id uuid.UUID) ([]*integration.SyncLogEntry, error)
}

// IngestionHandler serves import sessions
type IngestionHandler struct {
	BaseHandler
	runner IngestionRunner
}

// NewIngestionHandler creates an IngestionHandler
func NewIngestionHandler(runner IngestionRunner) *IngestionHandler {
	return &IngestionHandler{runner: runner}
}

// RunSessionRequest starts an ingestion run
type RunSessionRequest struct {
	Config     integration.RunConfig   `json:"config"`
	Candidates []integration.Candidate `json:"candidates" binding:"max=10000,dive"`
}

// SessionResponse is an import session as returned by the API
type SessionResponse struct {
	ID             string                `json:"id"`
	SourcePlatform string                `json:"source_platform"`
	Status         string                `json:"status"`
	Config         integration.RunConfig `json:"config"`
	Processed      int                   `json:"processed"`
	Succeeded      int                   `json:"succeeded"`
	Failed         int                   `json:"failed"`
	StartedAt      time.Time             `json:"started_at"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
}

// RunSessionResponse is the outcome of a run
type RunSessionResponse struct {
	Session SessionResponse           `json:"session"`
	Summary quality.BatchSummary      `json:"summary"`
	Results []quality.AdmissionResult `json:"results"`
}

// SyncLogResponse is one sync log entry
type SyncLogResponse struct {
	ID           string         `json:"id"`
	ProductID    string         `json:"product_id"`
	Platform     string         `json:"platform"`
	Stage        string         `json:"stage"`
	Status       string         `json:"status"`
	OldValue     map[string]any `json:"old_value,omitempty"`
	NewValue     map[string]any `json:"new_value,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func toSessionResponse(s *integration.ImportSession) SessionResponse {
	return SessionResponse{
		ID:             s.ID.String(),
		SourcePlatform: string(s.SourcePlatform),
		Status:         string(s.Status),
		Config:         s.Config,
		Processed:      s.Processed,
		Succeeded:      s.Succeeded,
		Failed:         s.Failed,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
	}
}

// RegisterRoutes mounts the ingestion endpoints under /ingestion
func (h *IngestionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ingestion")
	g.POST("/sessions", h.RunSession)
	g.GET("/sessions", h.ListSessions)
	g.GET("/sessions/:id", h.GetSession)
	g.GET("/sessions/:id/logs", h.GetSessionLogs)
}

// RunSession godoc
// @Summary      Run an ingestion session
// @Description  The run is synchronous; the response carries the completed session
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        request body RunSessionRequest true "Run config and candidates"
// @Success      201 {object} dto.Response{data=RunSessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ingestion/sessions [post]
func (h *IngestionHandler) RunSession(c *gin.Context) {
	var req RunSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	report, err := h.runner.Run(c.Request.Context(), req.Config, req.Candidates)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, RunSessionResponse{
		Session: toSessionResponse(report.Session),
		Summary: report.Summary,
		Results: report.Results,
	})
}

// ListSessions godoc
// @Summary      List recent sessions
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        limit query int false "Max sessions (1-100)" default(20)
// @Success      200 {object} dto.Response{data=[]SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ingestion/sessions [get]
func (h *IngestionHandler) ListSessions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		h.BadRequest(c, "limit must be between 1 and 100")
		return
	}
	sessions, err := h.runner.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s)
	}
	h.Success(c, out)
}

// GetSession godoc
// @Summary      Get a session
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ingestion/sessions/{id} [get]
func (h *IngestionHandler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.runner.Session(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(session))
}

// GetSessionLogs godoc
// @Summary      List sync logs of a session
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]SyncLogResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ingestion/sessions/{id}/logs [get]
func (h *IngestionHandler) GetSessionLogs(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	entries, err := h.runner.SessionLogs(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]SyncLogResponse, len(entries))
	for i, e := range entries {
		out[i] = SyncLogResponse{
			ID:           e.ID.String(),
			ProductID:    e.ProductID,
			Platform:     string(e.Platform),
			Stage:        e.Stage,
			Status:       string(e.Status),
			OldValue:     e.OldValue,
			NewValue:     e.NewValue,
			ErrorMessage: e.ErrorMessage,
			CreatedAt:    e.CreatedAt,
		}
	}
	h.Success(c, out)
}

func (h *IngestionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
