package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", Clone(ErrUnsupportedMedia, "passport_document must be a PDF"))

	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrUnsupportedMedia.Code, appErr.Code)
	assert.Equal(t, http.StatusUnsupportedMediaType, appErr.Status)
	assert.Equal(t, "passport_document must be a PDF", appErr.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("boom")

	appErr := FromError(cause)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrStepBlocked, "custom")
	assert.Equal(t, "custom", clone.Message)
	assert.Equal(t, "please fix the highlighted fields before continuing", ErrStepBlocked.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("stage: %w", Clone(ErrNotFound, "wizard session not found"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.True(t, HasCode(err, "NOT_FOUND"))
	assert.False(t, HasCode(errors.New("plain"), "NOT_FOUND"))
}
