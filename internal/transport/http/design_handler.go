package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "doelab/internal/errors"
	"doelab/internal/services"
	api "doelab/pkg/contracts/api/v1"
)

// DesignHandler handles design matrix requests
type DesignHandler struct {
	service      DesignService
	validator    Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDesignHandler creates a new design handler
func NewDesignHandler(service DesignService, validator Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DesignHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DesignHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "design")),
	}
}

// Routes returns a chi router for design endpoints
func (h *DesignHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateDesign)
	r.Post("/export", h.ExportDesign)
	return r
}

// CreateDesign handles POST /api/design
func (h *DesignHandler) CreateDesign(w http.ResponseWriter, r *http.Request) {
	var req api.DesignRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	matrix, err := h.service.Generate(r.Context(), designToDomain(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, matrix)
}

// ExportDesign handles POST /api/design/export?format=csv|xlsx and returns
// the design as a file attachment
func (h *DesignHandler) ExportDesign(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var req api.DesignRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffer so a failed export can still be answered with a problem
	var buf bytes.Buffer
	matrix, err := h.service.Export(r.Context(), designToDomain(req), format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("design_%s_%d.%s", matrix.Strategy, matrix.NumRuns, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}
