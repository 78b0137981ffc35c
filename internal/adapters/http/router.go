package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/config"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/ports"
	"github.com/kirillkom/shipment-docs-tracker/internal/observability/metrics"
	"github.com/rs/cors"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartMemory = 8 << 20
)

type Router struct {
	cfg       config.Config
	uploads   ports.UploadSubmitter
	dashboard ports.DashboardService
	metrics   *metrics.HTTPServerMetrics
	mcp       http.Handler
}

func NewRouter(cfg config.Config, uploads ports.UploadSubmitter, dashboard ports.DashboardService) *Router {
	return &Router{
		cfg:       cfg,
		uploads:   uploads,
		dashboard: dashboard,
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithMCP mounts a tool endpoint at /mcp.
func (rt *Router) WithMCP(h http.Handler) *Router {
	rt.mcp = h
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", serveOpenAPI)
	mux.HandleFunc("GET /v1/document-types", rt.listDocumentTypes)
	mux.HandleFunc("GET /v1/shipments", rt.listShipments)
	mux.HandleFunc("GET /v1/shipments/{shipment_id}", rt.getShipment)
	mux.HandleFunc("POST /v1/uploads", rt.submitUpload)
	mux.HandleFunc("GET /v1/activity", rt.listActivity)
	mux.HandleFunc("GET /v1/summary", rt.summary)
	mux.HandleFunc("GET /v1/export.xlsx", rt.exportWorkbook)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	if rt.mcp != nil {
		mux.Handle("/mcp", rt.mcp)
	}

	var rejections rejectionRecorder
	if rt.metrics != nil {
		rejections = rt.metrics
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrentRequests, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond, rejections)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rejections)
	handler = rt.corsHandler().Handler(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) corsHandler() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: rt.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
	})
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listDocumentTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documentTypes": domain.DocumentTypeCatalogue()})
}

func (rt *Router) listShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := rt.dashboard.ListShipments(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shipments": domain.ShipmentViews(shipments)})
}

func (rt *Router) getShipment(w http.ResponseWriter, r *http.Request) {
	sh, err := rt.dashboard.GetShipment(r.Context(), r.PathValue("shipment_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh.View())
}

func (rt *Router) submitUpload(w http.ResponseWriter, r *http.Request) {
	if limit := rt.cfg.MaxFileSizeBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds the size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	docType, err := domain.ParseDocumentType(r.FormValue("document_type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := rt.uploads.SubmitUpload(r.Context(), domain.UploadRequest{
		File: &domain.FileDescriptor{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Size:     header.Size,
		},
		Body:         file,
		ShipmentID:   strings.TrimSpace(r.FormValue("shipment_id")),
		DocumentType: docType,
		Comments:     strings.TrimSpace(r.FormValue("comments")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (rt *Router) listActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ActivityFilter{ShipmentID: strings.TrimSpace(q.Get("shipment_id"))}
	if raw := q.Get("document_type"); raw != "" {
		docType, err := domain.ParseDocumentType(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.DocumentType = docType
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		filter.Limit = limit
	}

	entries, err := rt.dashboard.ListActivity(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (rt *Router) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.dashboard.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rt.dashboard.ExportWorkbook(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="shipment-dashboard.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("export_write_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
