package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrShipmentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUploadInProgress):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides analysis causes and internal failures from clients.
func errorMessage(status int, err error) string {
	switch status {
	case http.StatusBadGateway:
		return domain.AnalysisFailedMessage
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return err.Error()
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": errorMessage(status, err)})
}
