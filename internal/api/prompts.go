package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/brandradar/visibility-dashboard/internal/export"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type createPromptRequest struct {
	BrandID string  `json:"brand_id"`
	Text    string  `json:"text"`
	Topic   *string `json:"topic"`
}

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.backend.ListPrompts(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if prompts == nil {
		prompts = []models.Prompt{}
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (s *Server) createPrompt(w http.ResponseWriter, r *http.Request) {
	var req createPromptRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.BrandID == "" || req.Text == "" {
		writeError(w, r, badRequestf("brand_id and text are required"))
		return
	}

	prompt, err := s.backend.CreatePrompt(r.Context(), models.Prompt{
		ID:        uuid.New().String(),
		BrandID:   req.BrandID,
		Text:      req.Text,
		Topic:     req.Topic,
		Active:    true,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, prompt)
}

func (s *Server) promptMetrics(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics, err := s.dashboard.PromptMetrics(r.Context(), r.URL.Query().Get("owner"), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, metrics, len(metrics) == 0)
}

func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := s.backend.GetPrompt(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

func (s *Server) promptSources(w http.ResponseWriter, r *http.Request) {
	promptID := mux.Vars(r)["id"]
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sources, err := s.backend.PromptSources(r.Context(), promptID, sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sources == nil {
		sources = []models.Source{}
	}

	if boolParam(r, "download") {
		data, err := export.JSON(sources)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeDownload(w, "application/json", export.Filename(fmt.Sprintf("prompt-%s-sources", promptID), "json", s.now()), data)
		return
	}
	writePanel(w, sources, len(sources) == 0)
}

func (s *Server) promptDomains(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	domains, err := s.dashboard.PromptDomains(r.Context(), mux.Vars(r)["id"], sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, domains, len(domains) == 0)
}
