package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CategoryLister lists the internal taxonomy
type CategoryLister interface {
	FindAll(ctx context.Context) ([]*catalog.Category, error)
}

// MappingDeactivator retires learned label mappings
type MappingDeactivator interface {
	Deactivate(ctx context.Context, platform, label string) error
}

// TaxonomyHandler serves the category taxonomy and learned mappings
type TaxonomyHandler struct {
	BaseHandler
	categories CategoryLister
	mappings   MappingDeactivator
}

// NewTaxonomyHandler creates a TaxonomyHandler
func NewTaxonomyHandler(categories CategoryLister, mappings MappingDeactivator) *TaxonomyHandler {
	return &TaxonomyHandler{categories: categories, mappings: mappings}
}

// CategoryResponse is a category as returned by the API
type CategoryResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRoutes mounts the taxonomy endpoints under /taxonomy
func (h *TaxonomyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/taxonomy")
	g.GET("/categories", h.ListCategories)
	g.DELETE("/mappings/:platform/:label", h.DeactivateMapping)
}

// ListCategories godoc
// @Summary      List internal categories
// @Tags         taxonomy
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=[]CategoryResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxonomy/categories [get]
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.FindAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = CategoryResponse{
			ID:        cat.ID.String(),
			Slug:      cat.Slug,
			Name:      cat.Name,
			IsDefault: cat.IsDefault,
			CreatedAt: cat.CreatedAt,
		}
	}
	h.Success(c, out)
}

// DeactivateMapping godoc
// @Summary      Retire a learned category mapping
// @Description  The next import of that label resolves it from scratch
// @Tags         taxonomy
// @Accept       json
// @Produce      json
// @Param        platform path string true "Source platform"
// @Param        label path string true "Platform category label"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxonomy/mappings/{platform}/{label} [delete]
func (h *TaxonomyHandler) DeactivateMapping(c *gin.Context) {
	label := catalog.NormalizeLabel(c.Param("label"))
	if label == "" {
		h.BadRequest(c, "label is required")
		return
	}
	if err := h.mappings.Deactivate(c.Request.Context(), c.Param("platform"), label); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
