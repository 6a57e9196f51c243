package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

type catalogService interface {
	ActiveServices(ctx context.Context) ([]models.ServiceItem, error)
	InvalidateServices(ctx context.Context)
	ExamTypes() []models.ExamTypeDefinition
	Countries() []models.Country
	EnquiryStatuses() []models.EnquiryStatus
}

// CatalogHandler serves the lookup lists the wizard renders.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler builds a catalog handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Services godoc
// @Summary List active services
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/services [get]
func (h *CatalogHandler) Services(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service unavailable"))
		return
	}
	items, err := h.service.ActiveServices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// RefreshServices godoc
// @Summary Drop the cached services list
// @Tags Catalog
// @Success 204
// @Router /catalog/services/refresh [post]
func (h *CatalogHandler) RefreshServices(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service unavailable"))
		return
	}
	h.service.InvalidateServices(c.Request.Context())
	response.NoContent(c)
}

// ExamTypes godoc
// @Summary List exam types with their sub-scores
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/exam-types [get]
func (h *CatalogHandler) ExamTypes(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service unavailable"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.ExamTypes(), nil)
}

// Countries godoc
// @Summary List countries for refusal history
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/countries [get]
func (h *CatalogHandler) Countries(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service unavailable"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.Countries(), nil)
}

// EnquiryStatuses godoc
// @Summary List enquiry pipeline statuses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/enquiry-statuses [get]
func (h *CatalogHandler) EnquiryStatuses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service unavailable"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.EnquiryStatuses(), nil)
}
