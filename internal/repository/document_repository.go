package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// documentValidator checks a payload before it is written.
type documentValidator interface {
	Validate(collection string, document interface{}, partial bool) error
}

// DocumentRepository is a collection-style JSONB store. Each row holds one
// document of a named collection.
type DocumentRepository struct {
	db        *sqlx.DB
	validator documentValidator
	now       func() time.Time
}

// NewDocumentRepository constructs the repository. A nil validator accepts
// every payload.
func NewDocumentRepository(db *sqlx.DB, validator documentValidator) *DocumentRepository {
	return &DocumentRepository{db: db, validator: validator, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores doc under a new id and returns it.
func (r *DocumentRepository) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	payload, err := r.encode(collection, doc, false)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := r.now()
	const query = `INSERT INTO documents (id, collection, payload, created_at, updated_at)
	VALUES ($1, $2, $3::jsonb, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, id, collection, payload, now, now); err != nil {
		return "", fmt.Errorf("create %s document: %w", collection, err)
	}
	return id, nil
}

// Update merges partial into the stored document. Top-level keys of partial
// replace the stored ones; other keys are kept.
func (r *DocumentRepository) Update(ctx context.Context, collection, id string, partial interface{}) error {
	payload, err := r.encode(collection, partial, true)
	if err != nil {
		return err
	}
	const query = `UPDATE documents SET payload = payload || $1::jsonb, updated_at = $2
	WHERE id = $3 AND collection = $4`
	result, err := r.db.ExecContext(ctx, query, payload, r.now(), id, collection)
	if err != nil {
		return fmt.Errorf("update %s document: %w", collection, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s document rows: %w", collection, err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s document %s: %w", collection, id, sql.ErrNoRows)
	}
	return nil
}

// Get decodes the stored document into dest.
func (r *DocumentRepository) Get(ctx context.Context, collection, id string, dest interface{}) error {
	const query = `SELECT payload FROM documents WHERE id = $1 AND collection = $2`
	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, id, collection); err != nil {
		return err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode %s document: %w", collection, err)
	}
	return nil
}

func (r *DocumentRepository) encode(collection string, doc interface{}, partial bool) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	if r.validator != nil {
		if err := r.validator.Validate(collection, raw, partial); err != nil {
			return "", err
		}
	}
	return string(raw), nil
}
