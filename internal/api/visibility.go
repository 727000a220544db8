package api

import (
	"net/http"

	"github.com/brandradar/visibility-dashboard/internal/export"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/gorilla/mux"
)

func (s *Server) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.backend.ListBrands(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	writeJSON(w, http.StatusOK, brands)
}

func (s *Server) listCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors, err := s.backend.ListCompetitors(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if competitors == nil {
		competitors = []models.Competitor{}
	}
	writeJSON(w, http.StatusOK, competitors)
}

func (s *Server) listPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := s.backend.ListPlatforms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if platforms == nil {
		platforms = []models.Platform{}
	}
	writeJSON(w, http.StatusOK, platforms)
}

func (s *Server) dailyVisibility(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	series, err := s.dashboard.Visibility(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, series, len(series.Rows) == 0)
}

func (s *Server) visibilityPie(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slices, err := s.dashboard.Pie(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, slices, len(slices) == 0)
}

func (s *Server) ranking(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.dashboard.Ranking(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, entries, len(entries) == 0)
}

func (s *Server) rankingCSV(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.dashboard.Ranking(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDownload(w, "text/csv; charset=utf-8", export.Filename("ranking", "csv", s.now()),
		[]byte(export.RankingCSV(entries)))
}

func (s *Server) recentMentions(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", s.config.RecentMentionsLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mentions, err := s.dashboard.RecentMentions(r.Context(), sel, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if mentions == nil {
		mentions = []models.RecentMention{}
	}
	writePanel(w, mentions, len(mentions) == 0)
}

func (s *Server) exportMentions(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", s.config.RecentMentionsLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mentions, err := s.dashboard.RecentMentions(r.Context(), sel, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDownload(w, "text/csv; charset=utf-8", export.Filename("mentions", "csv", s.now()),
		[]byte(export.MentionsCSV(mentions)))
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	key := models.TripKey{
		RunID:    mux.Vars(r)["runId"],
		ModelID:  r.URL.Query().Get("model"),
		PromptID: r.URL.Query().Get("prompt"),
	}
	if key.ModelID == "" {
		writeError(w, r, badRequestf("model is required"))
		return
	}
	trip, err := s.backend.GetTrip(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) usage(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	usage, err := s.dashboard.Usage(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePanel(w, usage, len(usage) == 0)
}
