package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID, resourceID := "user-1", "profile-1"
	entry := &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionProfileCreate,
		Resource:   "detailed_enquiries",
		ResourceID: &resourceID,
	}
	require.NoError(t, NewAuditRepository(sqlx.NewDb(db, "sqlmock")).Create(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
