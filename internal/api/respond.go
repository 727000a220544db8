package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/chat"
	"github.com/brandradar/visibility-dashboard/internal/dashboard"
	"github.com/brandradar/visibility-dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// badRequest marks errors caused by malformed client input
type badRequest struct {
	msg string
}

func (e badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...interface{}) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

// panelResponse wraps panel data with an explicit empty-state flag
type panelResponse struct {
	Data  interface{} `json:"data"`
	Empty bool        `json:"empty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writePanel(w http.ResponseWriter, data interface{}, empty bool) {
	writeJSON(w, http.StatusOK, panelResponse{Data: data, Empty: empty})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeDownload(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func errorStatus(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, dashboard.ErrInvalidStatus),
		errors.Is(err, dashboard.ErrInvalidReportName),
		errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, chat.ErrCompetitorNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrNoStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logrus.Debugf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return badRequestf("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequestf("invalid request body: %v", err)
	}
	return nil
}
