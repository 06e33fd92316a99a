package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, 404, NotFound("table_not_found").Status)
	assert.Equal(t, 409, Conflict("table_already_anonymized").Status)
	assert.Equal(t, 503, Unavailable("connection_unavailable", nil).Status)
	assert.Equal(t, 400, Validation("invalid_anonymization_type").Status)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("record not found")
	err := NotFound("table_not_found").WithCause(cause)

	assert.Equal(t, "table_not_found: record not found", err.Error())
	assert.ErrorIs(t, err, cause)

	var appErr *Error
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &appErr)
	assert.Equal(t, "table_not_found", appErr.Code)
}

func TestPartialFailure(t *testing.T) {
	cause := errors.New("disk full")
	err := PartialFailure(3, 4, cause)

	assert.Equal(t, "partial_failure", err.Code)
	assert.Equal(t, 500, err.Status)
	assert.Contains(t, err.Error(), "batch 4 failed after 3 committed batches")
	assert.ErrorIs(t, err, cause)
}
