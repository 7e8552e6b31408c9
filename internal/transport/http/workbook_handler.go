package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/giuliam-97/Stress-Test/internal/errors"
	mw "github.com/giuliam-97/Stress-Test/internal/middleware"
	"github.com/giuliam-97/Stress-Test/internal/services"
	api "github.com/giuliam-97/Stress-Test/pkg/contracts/api/v1"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to temporary files
const multipartMemory = 8 << 20

// WorkbookHandler handles workbook, analytics and export requests with
// RFC 7807 errors
type WorkbookHandler struct {
	service        WorkbookServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validator      *mw.ValidationMiddleware
	query          *mw.QueryParamValidator
	maxUploadBytes int64
}

// NewWorkbookHandler creates a new workbook handler
func NewWorkbookHandler(service WorkbookServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WorkbookHandler {
	return &WorkbookHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "workbook_handler")),
		errorHandler:   errorHandler,
		validator:      mw.NewValidationMiddleware(logger, errorHandler),
		query:          mw.NewQueryParamValidator(errorHandler),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the workbook routes
func (h *WorkbookHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(mw.MaxBodySize(h.maxUploadBytes)).Post("/", h.Upload)
	r.Get("/", h.List)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.validator.ValidateRequest)

		r.Get("/", h.Get)
		r.Delete("/", h.Remove)
		r.Get("/domain", h.Domain)
		r.Post("/facts", h.Facts)
		r.Post("/aggregates", h.Aggregates)
		r.Post("/peers", h.Peers)

		r.Route("/exports", func(r chi.Router) {
			r.Post("/portfolio/{portfolio}", h.ExportPortfolio)
			r.Post("/combined", h.ExportCombined)
			r.Post("/peers", h.ExportPeers)
			r.Post("/aggregates", h.ExportAggregates)
		})
	})

	return r
}

// Upload handles POST /api/workbooks?mode=detail|totals with a multipart
// "file" field
func (h *WorkbookHandler) Upload(w http.ResponseWriter, r *http.Request) {
	mode, ok := h.query.ValidateEnum(w, r, "mode", []string{string(domain.IngestModeDetail), string(domain.IngestModeTotals)}, "")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "a workbook must be uploaded in the file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "workbook uploaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file_name", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("mode", mode))

	summary, err := h.service.Ingest(r.Context(), header.Filename, data, domain.IngestMode(mode))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.Success(summary))
}

// List handles GET /api/workbooks
func (h *WorkbookHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.Success(h.service.List(r.Context())))
}

// Get handles GET /api/workbooks/{id}
func (h *WorkbookHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, summary, err)
}

// Remove handles DELETE /api/workbooks/{id}
func (h *WorkbookHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Domain handles GET /api/workbooks/{id}/domain
func (h *WorkbookHandler) Domain(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Domain(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, d, err)
}

// Facts handles POST /api/workbooks/{id}/facts
func (h *WorkbookHandler) Facts(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.decodeSelection(w, r)
	if !ok {
		return
	}
	res, err := h.service.Facts(r.Context(), chi.URLParam(r, "id"), sel)
	h.respond(w, r, res, err)
}

// Aggregates handles POST /api/workbooks/{id}/aggregates
func (h *WorkbookHandler) Aggregates(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.decodeSelection(w, r)
	if !ok {
		return
	}
	res, err := h.service.Aggregates(r.Context(), chi.URLParam(r, "id"), sel)
	h.respond(w, r, res, err)
}

// Peers handles POST /api/workbooks/{id}/peers
func (h *WorkbookHandler) Peers(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodePeerQuery(w, r)
	if !ok {
		return
	}
	res, err := h.service.Peers(r.Context(), chi.URLParam(r, "id"), q)
	h.respond(w, r, res, err)
}

// ExportPortfolio handles POST /api/workbooks/{id}/exports/portfolio/{portfolio}
func (h *WorkbookHandler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.decodeSelection(w, r)
	if !ok {
		return
	}
	portfolio := chi.URLParam(r, "portfolio")
	if err := h.validator.ValidateVar("portfolio", portfolio, "required,filename"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	exp, err := h.service.ExportPortfolio(r.Context(), chi.URLParam(r, "id"), sel, portfolio)
	h.sendExport(w, r, exp, err)
}

// ExportCombined handles POST /api/workbooks/{id}/exports/combined
func (h *WorkbookHandler) ExportCombined(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.decodeSelection(w, r)
	if !ok {
		return
	}
	exp, err := h.service.ExportCombined(r.Context(), chi.URLParam(r, "id"), sel)
	h.sendExport(w, r, exp, err)
}

// ExportPeers handles POST /api/workbooks/{id}/exports/peers
func (h *WorkbookHandler) ExportPeers(w http.ResponseWriter, r *http.Request) {
	q, ok := h.decodePeerQuery(w, r)
	if !ok {
		return
	}
	exp, err := h.service.ExportPeers(r.Context(), chi.URLParam(r, "id"), q)
	h.sendExport(w, r, exp, err)
}

// ExportAggregates handles POST /api/workbooks/{id}/exports/aggregates
func (h *WorkbookHandler) ExportAggregates(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.decodeSelection(w, r)
	if !ok {
		return
	}
	exp, err := h.service.ExportAggregatesCSV(r.Context(), chi.URLParam(r, "id"), sel)
	h.sendExport(w, r, exp, err)
}

func (h *WorkbookHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(data))
}

// sendExport streams the file back, or writes it server-side with ?save=true
func (h *WorkbookHandler) sendExport(w http.ResponseWriter, r *http.Request, exp services.Export, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		path, err := h.service.SaveExport(r.Context(), exp)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to save export",
				slog.String("file_name", exp.FileName),
				slog.String("error", err.Error()))
			h.errorHandler.HandleError(w, r, apierrors.ExportError(exp.FileName))
			return
		}
		render.JSON(w, r, api.Success(api.SavedExport{FileName: exp.FileName, Path: path, Bytes: len(exp.Data)}))
		return
	}

	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(exp.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			slog.String("file_name", exp.FileName),
			slog.String("error", err.Error()))
	}
}

// decodeSelection reads an optional Selection body. No body selects everything.
func (h *WorkbookHandler) decodeSelection(w http.ResponseWriter, r *http.Request) (domain.Selection, bool) {
	var sel domain.Selection
	if err := decodeOptionalJSON(r, &sel); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return domain.Selection{}, false
	}
	return sel, true
}

func (h *WorkbookHandler) decodePeerQuery(w http.ResponseWriter, r *http.Request) (services.PeerQuery, bool) {
	var req api.PeerComparisonRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return services.PeerQuery{}, false
	}
	if err := h.validator.ValidateStruct(req.PeerRequest); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return services.PeerQuery{}, false
	}
	return services.PeerQuery{Selection: req.Selection, PeerRequest: req.PeerRequest}, true
}

func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
