package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

// EnquiryRepository reads the basic enquiry records a profile attaches to.
type EnquiryRepository struct {
	db *sqlx.DB
}

// NewEnquiryRepository constructs the repository.
func NewEnquiryRepository(db *sqlx.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

// FindByID fetches one enquiry. sql.ErrNoRows is returned untouched.
func (r *EnquiryRepository) FindByID(ctx context.Context, id string) (*models.Enquiry, error) {
	const query = `SELECT id, student_name, email, phone, current_education_level, interested_services,
       enquiry_status, created_at, updated_at
	FROM enquiries WHERE id = $1`
	var enquiry models.Enquiry
	if err := r.db.GetContext(ctx, &enquiry, query, id); err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// ServiceCatalogRepository lists the services a counsellor can confirm.
type ServiceCatalogRepository struct {
	db *sqlx.DB
}

// NewServiceCatalogRepository constructs the repository.
func NewServiceCatalogRepository(db *sqlx.DB) *ServiceCatalogRepository {
	return &ServiceCatalogRepository{db: db}
}

// List returns catalog entries ordered by name.
func (r *ServiceCatalogRepository) List(ctx context.Context, filter models.ServiceFilter) ([]models.ServiceItem, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, name, price, active, created_at, updated_at FROM services`)
	if filter.ActiveOnly {
		builder.WriteString(" WHERE active = TRUE")
	}
	builder.WriteString(" ORDER BY name ASC")

	var items []models.ServiceItem
	if err := r.db.SelectContext(ctx, &items, builder.String()); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return items, nil
}
