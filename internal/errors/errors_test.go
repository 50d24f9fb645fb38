package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorConstructors(t *testing.T) {
	err := New(http.StatusBadRequest, CodeInvalidInput, "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Nil(t, err.Details)

	detailed := NewWithDetails(http.StatusUnprocessableEntity, CodeInsufficientData, "need more", map[string]int{"n": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, detailed.StatusCode)
	assert.Equal(t, map[string]int{"n": 1}, detailed.Details)

	v := ErrValidation("num_samples", "must be positive")
	assert.Equal(t, CodeValidationFailed, v.ErrorCode)
	assert.Equal(t, ValidationError{Field: "num_samples", Message: "must be positive"}, v.Details)

	multi := NewValidationErrors([]ValidationError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}})
	require.IsType(t, ValidationErrors{}, multi.Details)
	assert.Len(t, multi.Details.(ValidationErrors).Errors, 2)

	ir := InvalidRequestWithError(fmt.Errorf("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", ir.Details)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err    *APIError
		status int
		code   string
	}{
		{ErrInvalidRequest, http.StatusBadRequest, CodeInvalidRequest},
		{ErrValidationFailed, http.StatusBadRequest, CodeValidationFailed},
		{ErrNotFound, http.StatusNotFound, CodeNotFound},
		{ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{ErrRateLimitExceeded, http.StatusTooManyRequests, CodeRateLimited},
		{ErrInternalServer, http.StatusInternalServerError, CodeInternal},
		{ErrServiceUnavailable, http.StatusServiceUnavailable, CodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}


func TestAPIErrorRender(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, render.Render(rec, req, ErrNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeNotFound)
}

func TestProblemDetailsJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/api/design").
		WithExtension("error_code", CodeInvalidBounds).
		WithExtension("status", 999)

	b, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, TypeValidation, got["type"])
	assert.Equal(t, 400.0, got["status"], "standard members win over extensions")
	assert.Equal(t, "/api/design", got["instance"])
	assert.Equal(t, CodeInvalidBounds, got["error_code"])
	assert.NotContains(t, got, "detail")

	var zero ProblemDetails
	zero.WithExtension("k", "v")
	assert.Equal(t, "v", zero.Extensions["k"])
}

func TestAppError(t *testing.T) {
	cause := stderrors.New("line 3: bad quote")
	err := NewParsingError("parse upload", cause).WithContext("file", "data.csv")

	assert.Equal(t, "[PARSING] parse upload: line 3: bad quote", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "data.csv", err.Context["file"])

	var target *AppError
	wrapped := fmt.Errorf("spc upload: %w", err)
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, ErrTypeParsing, target.Type)


	bare := &AppError{Type: ErrTypeConfig, Message: "m"}
	bare.WithContext("k", 1)
	assert.Equal(t, 1, bare.Context["k"])
}
