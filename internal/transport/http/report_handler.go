package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "bangreport/internal/errors"
	"bangreport/internal/services"
)

// ReportHandler serves the generated report tables and analysis as JSON
type ReportHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the report routes to an existing router
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.GetTables)
	r.Get("/tables/{name}", h.GetTable)
	r.Get("/analysis", h.GetAnalysis)
}

// GetTables handles GET /api/tables
func (h *ReportHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.Tables(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
	})
}

// GetTable handles GET /api/tables/{name}
func (h *ReportHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.validate.Var(name, "required,max=64,printascii"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("name", err.Error()))
		return
	}

	table, err := h.service.Table(r.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrTableNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.TableNotFoundError(name, h.service.TableNames(r.Context())))
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   table,
	})
}

// GetAnalysis handles GET /api/analysis
func (h *ReportHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Analysis(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   res,
	})
}

// ServeReport handles GET / with the rendered HTML report
func (h *ReportHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.HTMLPath(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	serveHTML(w, r, path)
}

func (h *ReportHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrReportNotFound) {
		h.logger.WarnContext(r.Context(), "report requested before generation",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path))
		h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
		return
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		h.logger.ErrorContext(r.Context(), "report read failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("op", pathErr.Op),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("report read"))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
