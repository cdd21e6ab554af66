package errclass_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
)

func TestShimError_Error_WithoutMessage(t *testing.T) {
	err := &errclass.ShimError{Code: "E_TEST"}
	assert.Equal(t, "E_TEST", err.Error())
}

func TestShimError_Error_WithMessageAndCause(t *testing.T) {
	err := errclass.ErrStagingFailed.WithMessage("copy lib").Wrap(io.ErrUnexpectedEOF)
	assert.Equal(t, "E_STAGING_FAILED: copy lib: unexpected EOF", err.Error())
}

func TestShimError_IsMatchesByCode(t *testing.T) {
	err := errclass.ErrSourceNotFound.WithMessagef("missing %s", "a.jar")
	assert.True(t, errors.Is(err, errclass.ErrSourceNotFound))
	assert.False(t, errors.Is(err, errclass.ErrDestinationExists))
}

func TestShimError_IsThroughFmtWrap(t *testing.T) {
	base := errclass.ErrResolution.WithMessage("scan failed")
	wrapped := fmt.Errorf("install: %w", base)
	require.True(t, errors.Is(wrapped, errclass.ErrResolution))

	var se *errclass.ShimError
	require.True(t, errors.As(wrapped, &se))
	assert.Equal(t, "scan failed", se.Message)
}

func TestShimError_UnwrapReachesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := errclass.ErrCleanupFailed.WithMessage("remove temp").Wrap(cause)
	assert.True(t, errors.Is(err, cause))
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestShimError_WithMessageKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := errclass.ErrExtractionFailed.Wrap(cause).WithMessage("entry lib/a.jar")
	assert.True(t, errors.Is(err, cause))
	assert.Empty(t, errclass.ErrExtractionFailed.Message, "base class must not be mutated")
	assert.Nil(t, errclass.ErrExtractionFailed.Err)
}

func TestShimError_IsWithStandardError(t *testing.T) {
	err := errclass.ErrInvalidArgument.WithMessage("x")
	assert.False(t, errors.Is(err, errors.New("x")))
	assert.False(t, errors.Is(err, nil))
}
