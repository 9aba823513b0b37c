package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFieldKeepsCodeAndMatches(t *testing.T) {
	err := WithField(ErrMissingField, "courseCode")
	require.Equal(t, "MISSING_REQUIRED_FIELD", err.Code)
	assert.Equal(t, "courseCode", err.Field)
	assert.Empty(t, ErrMissingField.Field)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.False(t, errors.Is(err, ErrInvalidNumeric))
	assert.Contains(t, err.Error(), "courseCode")
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	wrapped := fmt.Errorf("context: %w", ErrAlreadyProcessed)
	assert.Equal(t, ErrAlreadyProcessed.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}
