package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/cache"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

type serviceCatalogStore interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.ServiceItem, error)
}

// CatalogService serves the lookup lists the wizard renders: services,
// exam types and countries.
type CatalogService struct {
	repo   serviceCatalogStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService constructs the service. cache may be nil.
func NewCatalogService(repo serviceCatalogStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ActiveServices returns the services a counsellor may confirm.
func (s *CatalogService) ActiveServices(ctx context.Context) ([]models.ServiceItem, error) {
	items, err := Remember(ctx, s.cache, cache.CatalogKey("services", "active"), s.ttl, func(ctx context.Context) ([]models.ServiceItem, error) {
		return s.repo.List(ctx, models.ServiceFilter{ActiveOnly: true})
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load services")
	}
	if items == nil {
		items = []models.ServiceItem{}
	}
	return items, nil
}

// InvalidateServices drops cached service listings.
func (s *CatalogService) InvalidateServices(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.CatalogKey("services", "*"))
}

// ExamTypes returns the exam catalog with sub-score ranges.
func (s *CatalogService) ExamTypes() []models.ExamTypeDefinition {
	return models.ExamTypes
}

// Countries returns the refusal country list.
func (s *CatalogService) Countries() []models.Country {
	return models.Countries
}

// EnquiryStatuses returns the pipeline stages an enquiry may be moved to.
func (s *CatalogService) EnquiryStatuses() []models.EnquiryStatus {
	return models.EnquiryStatuses
}
