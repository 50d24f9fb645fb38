package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "doelab/internal/errors"
	api "doelab/pkg/contracts/api/v1"
)

// StatsHandler handles estimation requests
type StatsHandler struct {
	service      StatisticsService
	validator    Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewStatsHandler creates a new statistics handler
func NewStatsHandler(service StatisticsService, validator Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *StatsHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "stats")),
	}
}

// Routes returns a chi router for statistics endpoints
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/estimation", h.Estimation)
	r.Post("/effect-size", h.EffectSize)
	r.Post("/advanced", h.Advanced)
	return r
}

// Estimation handles POST /api/stats/estimation
func (h *StatsHandler) Estimation(w http.ResponseWriter, r *http.Request) {
	var req api.EstimationRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Interval(r.Context(), req.Data, confidenceOf(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// EffectSize handles POST /api/stats/effect-size
func (h *StatsHandler) EffectSize(w http.ResponseWriter, r *http.Request) {
	var req api.EffectSizeRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.EffectSize(r.Context(), req.GroupA, req.GroupB)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// Advanced handles POST /api/stats/advanced
func (h *StatsHandler) Advanced(w http.ResponseWriter, r *http.Request) {
	var req api.AdvancedRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Advanced(r.Context(), req.Data, req.PriorMean, req.PriorStd)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}
