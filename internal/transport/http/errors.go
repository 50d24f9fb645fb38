package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"doelab/internal/dataprocessing"
	"doelab/internal/doe"
	apierrors "doelab/internal/errors"
	"doelab/internal/estimation"
	"doelab/internal/services"
)

// ErrorMappings binds engine and service sentinel errors to problem
// responses. ErrInvalidBounds wraps doe.ErrInvalidInput, so it comes first.
func ErrorMappings() []apierrors.Mapping {
	return []apierrors.Mapping{
		{Target: doe.ErrInvalidBounds, Status: http.StatusBadRequest, Code: apierrors.CodeInvalidBounds, Type: apierrors.TypeInvalidInput},
		{Target: doe.ErrInvalidInput, Status: http.StatusBadRequest, Code: apierrors.CodeInvalidInput, Type: apierrors.TypeInvalidInput},
		{Target: estimation.ErrInsufficientData, Status: http.StatusUnprocessableEntity, Code: apierrors.CodeInsufficientData, Type: apierrors.TypeInsufficientData},
		{Target: estimation.ErrInvalidInput, Status: http.StatusBadRequest, Code: apierrors.CodeInvalidInput, Type: apierrors.TypeInvalidInput},
		{Target: services.ErrDesignTooLarge, Status: http.StatusBadRequest, Code: apierrors.CodeDesignTooLarge, Type: apierrors.TypeInvalidInput},
		{Target: services.ErrSampleTooLarge, Status: http.StatusRequestEntityTooLarge, Code: apierrors.CodePayloadTooLarge, Type: apierrors.TypePayloadTooLarge},
		{Target: services.ErrUnsupportedExport, Status: http.StatusBadRequest, Code: apierrors.CodeInvalidInput, Type: apierrors.TypeInvalidInput},
		{Target: dataprocessing.ErrUnsupportedFormat, Status: http.StatusUnsupportedMediaType, Code: apierrors.CodeUnsupportedFormat, Type: apierrors.TypeUnsupported},
		{Target: dataprocessing.ErrEmptyTable, Status: http.StatusBadRequest, Code: apierrors.CodeInvalidInput, Type: apierrors.TypeInvalidInput},
	}
}

// decodeJSON decodes the request body into v and validates it.
// Decode failures become 400 INVALID_REQUEST, tag failures 400 VALIDATION_FAILED.
func decodeJSON(r *http.Request, validator Validator, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidRequest, "Request body is required")
		}
		return apierrors.InvalidRequestWithError(fmt.Errorf("decode request: %w", err))
	}
	return validator.ValidateStruct(v)
}
