package api

import (
	"context"
	"net/http"

	"github.com/brandradar/visibility-dashboard/internal/dashboard"
	"github.com/brandradar/visibility-dashboard/internal/export"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type selectionRequest struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Range string `json:"range"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type selectionPatchRequest struct {
	Brand *string `json:"brand"`
	Model *string `json:"model"`
	Range string  `json:"range"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

type competitorChatRequest struct {
	CompetitorID string `json:"competitorId"`
	Message      string `json:"message"`
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	sel, version := s.dashboard.Selection()
	writeJSON(w, http.StatusOK, map[string]interface{}{"selection": sel, "version": version})
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sel, err := buildSelection(req.Brand, req.Model, req.Range, req.Start, req.End, s.config.DefaultTimeRange, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated := s.dashboard.SetSelection(sel)
	_, version := s.dashboard.Selection()
	writeJSON(w, http.StatusOK, map[string]interface{}{"selection": updated, "version": version})
}

func (s *Server) patchSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	change := dashboard.SelectionChange{BrandID: req.Brand, ModelID: req.Model}
	if req.Range != "" || req.Start != "" || req.End != "" {
		sel, err := buildSelection("", "", req.Range, req.Start, req.End, s.config.DefaultTimeRange, s.now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		change.Range = &sel.Range
	}

	updated := s.dashboard.UpdateSelection(change)
	_, version := s.dashboard.Selection()
	writeJSON(w, http.StatusOK, map[string]interface{}{"selection": updated, "version": version})
}

func (s *Server) dashboardView(w http.ResponseWriter, r *http.Request) {
	if boolParam(r, "refresh") {
		s.dashboard.Refresh(r.Context())
	}
	writeJSON(w, http.StatusOK, s.dashboard.View())
}

func (s *Server) triggerReport(w http.ResponseWriter, r *http.Request) {
	go func() {
		if _, err := s.dashboard.RunReport(context.Background()); err != nil {
			logrus.Errorf("Manual report trigger failed: %v", err)
		}
	}()

	writeMessage(w, http.StatusAccepted, "Report triggered successfully")
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.dashboard.ListReports(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, reports, len(reports) == 0)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	report, err := s.dashboard.GetReport(r.Context(), file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if boolParam(r, "download") {
		data, err := export.JSON(report)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeDownload(w, "application/json", file, data)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.dashboard.GetMetrics()))
}

func (s *Server) competitorChat(w http.ResponseWriter, r *http.Request) {
	var req competitorChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CompetitorID == "" {
		writeError(w, r, badRequestf("competitorId is required"))
		return
	}

	resp, err := s.chat.Analyze(r.Context(), req.CompetitorID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) chatExport(w http.ResponseWriter, r *http.Request) {
	history, err := s.chat.ExportHistory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := export.JSON(history)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDownload(w, "application/json", export.Filename("competitor-chats", "json", s.now()), data)
}
