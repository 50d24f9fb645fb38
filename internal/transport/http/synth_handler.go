package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "doelab/internal/errors"
	api "doelab/pkg/contracts/api/v1"
)

// SynthHandler handles synthetic data and report requests
type SynthHandler struct {
	service      SynthService
	validator    Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewSynthHandler creates a new synthetic data handler
func NewSynthHandler(service SynthService, validator Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *SynthHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SynthHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "synth")),
	}
}

// Generate handles POST /api/generate
func (h *SynthHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerationRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Generate(r.Context(), generationToDomain(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// Analysis handles POST /api/analysis
func (h *SynthHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	var req api.AnalysisRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	html, err := h.service.Report(r.Context(), req.Context, req.Results, req.Mock)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.AnalysisResponse{AnalysisHTML: html})
}
