package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "doelab/internal/errors"
	"doelab/internal/middleware"
	api "doelab/pkg/contracts/api/v1"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

// SPCHandler handles process control requests
type SPCHandler struct {
	service      SPCService
	validator    Validator
	errorHandler *apierrors.ErrorHandler
	maxUpload    int64
	logger       *slog.Logger
}

// NewSPCHandler creates a new SPC handler. maxUpload bounds multipart bodies.
func NewSPCHandler(service SPCService, validator Validator, errorHandler *apierrors.ErrorHandler, maxUpload int64, logger *slog.Logger) *SPCHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SPCHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("handler", "spc")),
	}
}

// Routes returns a chi router for SPC endpoints
func (h *SPCHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Analyze)
	r.With(middleware.MaxBodySize(h.maxUpload)).Post("/upload", h.Upload)
	return r
}

// Analyze handles POST /api/spc
func (h *SPCHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req api.SPCRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Analyze(r.Context(), spcToDomain(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// Upload handles POST /api/spc/upload with a multipart form holding a CSV or
// XLSX "file" plus target_variable and optional factor_variable fields
func (h *SPCHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 && r.ContentLength > h.maxUpload {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			apierrors.CodePayloadTooLarge,
			"Upload exceeds maximum allowed size",
			map[string]any{
				"max_size": h.maxUpload,
				"size":     r.ContentLength,
			},
		))
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "file is required"))
		return
	}
	defer file.Close()

	form := api.SPCUploadForm{
		Filename:       header.Filename,
		TargetVariable: r.FormValue("target_variable"),
		FactorVariable: r.FormValue("factor_variable"),
	}
	if err := h.validator.ValidateStruct(&form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "spc upload received",
		slog.String("filename", form.Filename),
		slog.Int64("size", header.Size))

	res, err := h.service.AnalyzeUpload(r.Context(), form.Filename, file, form.TargetVariable, form.FactorVariable)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}
