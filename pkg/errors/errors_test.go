package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusConflict, MetadataFor(CodeConflict).HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeStateConflict).HTTPStatus)
	assert.Equal(t, http.StatusNotFound, MetadataFor(CodeNotFound).HTTPStatus)

	// Unknown codes fall back to internal.
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("NOPE")).HTTPStatus)
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("row locked")
	err := Wrap(CodeConflict, cause, "stock adjustment failed")

	require.NotNil(t, err)
	assert.Equal(t, CodeConflict, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "CONFLICT: stock adjustment failed", err.Error())
}

func TestAsUnwrapsNestedTypedError(t *testing.T) {
	t.Parallel()

	inner := New(CodeValidation, "quantity must be positive").
		WithDetails(map[string]any{"field": "quantity"})
	wrapped := Wrap(CodeInternal, inner, "add item")

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeInternal, typed.Code())

	var deep *Error
	require.True(t, errors.As(errors.Unwrap(wrapped), &deep))
	assert.Equal(t, CodeValidation, deep.Code())
}

func TestDumpCollectsChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeDependency, errors.New("dial tcp: refused"), "push order")
	d := Dump(err)

	assert.Equal(t, CodeDependency, d.Code)
	require.Len(t, d.Chain, 2)
	assert.Contains(t, d.Chain[1], "refused")
}
