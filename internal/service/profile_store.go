package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, collection string, doc interface{}) (string, error)
	Update(ctx context.Context, collection, id string, partial interface{}) error
	Get(ctx context.Context, collection, id string, dest interface{}) error
}

// ProfileDocumentStore persists detailed profiles in the document store.
type ProfileDocumentStore struct {
	docs documentStore
}

// NewProfileDocumentStore wraps a document store.
func NewProfileDocumentStore(docs documentStore) *ProfileDocumentStore {
	return &ProfileDocumentStore{docs: docs}
}

// Create stores a new profile and returns its id.
func (s *ProfileDocumentStore) Create(ctx context.Context, collection string, profile *models.DetailedProfile) (string, error) {
	return s.docs.Create(ctx, collection, profile)
}

// Update replaces every field carried by profile.
func (s *ProfileDocumentStore) Update(ctx context.Context, collection, id string, profile *models.DetailedProfile) error {
	return s.docs.Update(ctx, collection, id, profile)
}

// Load fetches a stored profile.
func (s *ProfileDocumentStore) Load(ctx context.Context, collection, id string) (*models.DetailedProfile, error) {
	var profile models.DetailedProfile
	if err := s.docs.Get(ctx, collection, id, &profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "detailed profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load detailed profile")
	}
	profile.ID = id
	return &profile, nil
}
