package api

import (
	"net/http"
	"strings"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type tagRequest struct {
	BrandID string `json:"brand_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

type modelToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

type recommendationUpdateRequest struct {
	Status models.RecommendationStatus `json:"status"`
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.backend.ListTags(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.BrandID == "" || req.Name == "" {
		writeError(w, r, badRequestf("brand_id and name are required"))
		return
	}

	tag, err := s.backend.CreateTag(r.Context(), models.Tag{
		ID:        uuid.New().String(),
		BrandID:   req.BrandID,
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, badRequestf("name is required"))
		return
	}

	tag, err := s.backend.UpdateTag(r.Context(), models.Tag{ID: mux.Vars(r)["id"], Name: req.Name, Color: req.Color})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTag(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWorkspaceModels(w http.ResponseWriter, r *http.Request) {
	rows, err := s.backend.ListWorkspaceModels(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.WorkspaceModel{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) setModelEnabled(w http.ResponseWriter, r *http.Request) {
	var req modelToggleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Enabled == nil {
		writeError(w, r, badRequestf("enabled is required"))
		return
	}

	vars := mux.Vars(r)
	if err := s.backend.SetModelEnabled(r.Context(), vars["id"], vars["modelId"], *req.Enabled); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.WorkspaceModel{WorkspaceID: vars["id"], ModelID: vars["modelId"], Enabled: *req.Enabled})
}

func (s *Server) listRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := s.dashboard.Recommendations(r.Context(), q.Get("brand"), models.RecommendationStatus(q.Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	writePanel(w, recs, len(recs) == 0)
}

func (s *Server) updateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recommendationUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.dashboard.UpdateRecommendationStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Status)})
}
