package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// buildSelection resolves a preset or an explicit start/end pair; start/end win
func buildSelection(brand, model, preset, start, end, defaultPreset string, now time.Time) (models.FilterSelection, error) {
	sel := models.FilterSelection{BrandID: brand, ModelID: model}

	switch {
	case start != "" || end != "":
		if start == "" || end == "" {
			return sel, badRequestf("start and end must be given together")
		}
		r, err := models.NewTimeRange(start, end)
		if err != nil {
			return sel, badRequestf("%v", err)
		}
		sel.Range = r
	default:
		if preset == "" {
			preset = defaultPreset
		}
		r, err := models.ParseTimeRange(preset, now)
		if err != nil {
			return sel, badRequestf("%v", err)
		}
		sel.Range = r
	}
	return sel, nil
}

func (s *Server) selection(r *http.Request) (models.FilterSelection, error) {
	q := r.URL.Query()
	return buildSelection(q.Get("brand"), q.Get("model"), q.Get("range"), q.Get("start"), q.Get("end"),
		s.config.DefaultTimeRange, s.now())
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, badRequestf("%s must be a positive integer", name)
	}
	return v, nil
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
