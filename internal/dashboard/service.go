package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/aggregation"
	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/brandradar/visibility-dashboard/internal/notifications"
	"github.com/brandradar/visibility-dashboard/internal/selection"
	"github.com/brandradar/visibility-dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrInvalidStatus is returned for a recommendation status outside the known set
var ErrInvalidStatus = errors.New("invalid recommendation status")

// Service computes dashboard views from the backend and keeps the live panels
type Service struct {
	config              *config.Config
	backend             backend.Backend
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	selection           *selection.Store

	visibility      *Panel[models.DailySeries]
	pie             *Panel[[]models.PieSlice]
	ranking         *Panel[[]models.RankingEntry]
	mentions        *Panel[[]models.RecentMention]
	recommendations *Panel[[]models.Recommendation]
	domains         *Panel[[]models.DomainCount]

	metrics *Metrics
	mu      sync.RWMutex
	now     func() time.Time
}

// Metrics holds report run metrics
type Metrics struct {
	ReportsGenerated int       `json:"reports_generated"`
	LastRun          time.Time `json:"last_run"`
	LastRunDuration  string    `json:"last_run_duration"`
	LastReportID     string    `json:"last_report_id,omitempty"`
	TotalMentions    int       `json:"total_mentions"`
	ErrorCount       int       `json:"error_count"`
	LastError        string    `json:"last_error,omitempty"`
}

// View is a snapshot of every panel plus the selection it was built for
type View struct {
	Selection       models.FilterSelection              `json:"selection"`
	Version         uint64                              `json:"version"`
	Visibility      PanelState[models.DailySeries]      `json:"visibility"`
	Pie             PanelState[[]models.PieSlice]       `json:"pie"`
	Ranking         PanelState[[]models.RankingEntry]   `json:"ranking"`
	Mentions        PanelState[[]models.RecentMention]  `json:"mentions"`
	Recommendations PanelState[[]models.Recommendation] `json:"recommendations"`
	Domains         PanelState[[]models.DomainCount]    `json:"domains"`
}

// NewService creates a dashboard service. storage and notificationService may be nil.
func NewService(cfg *config.Config, b backend.Backend, store storage.StorageInterface, notificationService notifications.NotificationInterface) (*Service, error) {
	initial, err := models.ParseTimeRange(cfg.DefaultTimeRange, time.Now())
	if err != nil {
		return nil, err
	}

	return &Service{
		config:              cfg,
		backend:             b,
		storage:             store,
		notificationService: notificationService,
		selection:           selection.NewStore(models.FilterSelection{Range: initial}),

		visibility:      NewPanel("visibility", func(d models.DailySeries) bool { return len(d.Rows) == 0 }),
		pie:             NewPanel("pie", func(s []models.PieSlice) bool { return len(s) == 0 }),
		ranking:         NewPanel("ranking", func(r []models.RankingEntry) bool { return len(r) == 0 }),
		mentions:        NewPanel("mentions", func(m []models.RecentMention) bool { return len(m) == 0 }),
		recommendations: NewPanel("recommendations", func(r []models.Recommendation) bool { return len(r) == 0 }),
		domains:         NewPanel("domains", func(d []models.DomainCount) bool { return len(d) == 0 }),

		metrics: &Metrics{},
		now:     time.Now,
	}, nil
}

// Selection returns the current selection and its version
func (s *Service) Selection() (models.FilterSelection, uint64) {
	return s.selection.Snapshot()
}

// SetSelection replaces the selection and reloads every panel in the background
func (s *Service) SetSelection(sel models.FilterSelection) models.FilterSelection {
	updated := s.selection.Set(sel)
	go s.Refresh(context.Background())
	return updated
}

// SelectionChange names the filters to update; nil fields keep their value
type SelectionChange struct {
	BrandID *string
	ModelID *string
	Range   *models.TimeRange
}

// UpdateSelection applies a partial change and reloads every panel in the background
func (s *Service) UpdateSelection(change SelectionChange) models.FilterSelection {
	updated, _ := s.selection.Snapshot()
	if change.BrandID != nil {
		updated = s.selection.SetBrand(*change.BrandID)
	}
	if change.ModelID != nil {
		updated = s.selection.SetModel(*change.ModelID)
	}
	if change.Range != nil {
		updated = s.selection.SetTimeRange(*change.Range)
	}
	go s.Refresh(context.Background())
	return updated
}

// Refresh reloads every panel concurrently for the current selection.
// A failing panel keeps its own error; the others still load. Panels drop
// results from a refresh that started on an older selection.
func (s *Service) Refresh(ctx context.Context) {
	sel, version := s.selection.Snapshot()
	s.refresh(ctx, sel, version)
}

func (s *Service) refresh(ctx context.Context, sel models.FilterSelection, version uint64) {
	logrus.Debugf("Refreshing dashboard panels (selection version %d)", version)

	var wg sync.WaitGroup
	load := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	load(func() {
		s.visibility.Load(ctx, version, func(ctx context.Context) (models.DailySeries, error) {
			return s.Visibility(ctx, sel)
		})
	})
	load(func() {
		s.pie.Load(ctx, version, func(ctx context.Context) ([]models.PieSlice, error) {
			return s.Pie(ctx, sel)
		})
	})
	load(func() {
		s.ranking.Load(ctx, version, func(ctx context.Context) ([]models.RankingEntry, error) {
			return s.Ranking(ctx, sel)
		})
	})
	load(func() {
		s.mentions.Load(ctx, version, func(ctx context.Context) ([]models.RecentMention, error) {
			return s.RecentMentions(ctx, sel, s.config.RecentMentionsLimit)
		})
	})
	load(func() {
		s.recommendations.Load(ctx, version, func(ctx context.Context) ([]models.Recommendation, error) {
			return s.Recommendations(ctx, sel.BrandID, "")
		})
	})
	load(func() {
		s.domains.Load(ctx, version, func(ctx context.Context) ([]models.DomainCount, error) {
			return s.TopDomains(ctx, sel)
		})
	})

	wg.Wait()
}

// View snapshots every panel
func (s *Service) View() View {
	sel, version := s.selection.Snapshot()
	return View{
		Selection:       sel,
		Version:         version,
		Visibility:      s.visibility.State(),
		Pie:             s.pie.State(),
		Ranking:         s.ranking.State(),
		Mentions:        s.mentions.State(),
		Recommendations: s.recommendations.State(),
		Domains:         s.domains.State(),
	}
}

// Directory loads every brand and competitor for name and color lookups
func (s *Service) Directory(ctx context.Context) (models.Directory, error) {
	brands, err := s.backend.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	competitors, err := s.backend.ListCompetitors(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	return models.NewDirectory(brands, competitors), nil
}

func (s *Service) dailyRows(ctx context.Context, sel models.FilterSelection) ([]models.DailyVisibilityRow, models.Directory, error) {
	rows, err := s.backend.DailyVisibility(ctx, sel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch daily visibility: %w", err)
	}
	dir, err := s.Directory(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rows, dir, nil
}

// Visibility builds the daily visibility series
func (s *Service) Visibility(ctx context.Context, sel models.FilterSelection) (models.DailySeries, error) {
	rows, dir, err := s.dailyRows(ctx, sel)
	if err != nil {
		return models.DailySeries{}, err
	}
	return aggregation.BuildDailySeries(rows, sel.BrandID, dir), nil
}

// Pie builds the share-of-mentions breakdown
func (s *Service) Pie(ctx context.Context, sel models.FilterSelection) ([]models.PieSlice, error) {
	rows, dir, err := s.dailyRows(ctx, sel)
	if err != nil {
		return nil, err
	}
	return aggregation.BuildPie(rows, sel.BrandID, dir), nil
}

// Ranking builds the industry ranking over all entities
func (s *Service) Ranking(ctx context.Context, sel models.FilterSelection) ([]models.RankingEntry, error) {
	rows, dir, err := s.dailyRows(ctx, sel)
	if err != nil {
		return nil, err
	}
	return aggregation.BuildRanking(rows, dir), nil
}

// PromptMetrics summarizes visibility for every prompt of owner (empty owner means all brands)
func (s *Service) PromptMetrics(ctx context.Context, owner string, sel models.FilterSelection) ([]models.PromptMetrics, error) {
	prompts, err := s.backend.ListPrompts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}

	ids := make([]string, 0, len(prompts))
	for _, p := range prompts {
		ids = append(ids, p.ID)
	}

	rows, err := s.backend.PromptMentionRows(ctx, ids, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prompt mentions: %w", err)
	}

	dir, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	return aggregation.BuildPromptMetrics(ids, rows, sel.BrandID, dir), nil
}

// PromptDomains rolls up the sources cited for one prompt
func (s *Service) PromptDomains(ctx context.Context, promptID string, sel models.FilterSelection) ([]models.DomainCount, error) {
	if _, err := s.backend.GetPrompt(ctx, promptID); err != nil {
		return nil, err
	}
	sources, err := s.backend.PromptSources(ctx, promptID, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sources for prompt %s: %w", promptID, err)
	}
	return aggregation.RollupDomains(sources), nil
}

// TopDomains rolls up the sources cited across the selected brand's prompts.
// A competitor or an empty selection covers every prompt.
func (s *Service) TopDomains(ctx context.Context, sel models.FilterSelection) ([]models.DomainCount, error) {
	owner := ""
	if !sel.AllBrands() {
		dir, err := s.Directory(ctx)
		if err != nil {
			return nil, err
		}
		if e, ok := dir[sel.BrandID]; ok && !e.IsCompetitor {
			owner = sel.BrandID
		}
	}

	prompts, err := s.backend.ListPrompts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}

	ids := make([]string, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID
	}
	sources, err := s.backend.SourcesForPrompts(ctx, ids, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prompt sources: %w", err)
	}
	return aggregation.RollupDomains(sources), nil
}

// Usage sums token usage and cost per model
func (s *Service) Usage(ctx context.Context, sel models.FilterSelection) ([]models.ModelUsage, error) {
	runs, err := s.backend.ListRuns(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	platforms, err := s.backend.ListPlatforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	return aggregation.BuildUsage(runs, platforms), nil
}

// RecentMentions returns the newest mentions for the selection
func (s *Service) RecentMentions(ctx context.Context, sel models.FilterSelection, limit int) ([]models.RecentMention, error) {
	if limit <= 0 {
		limit = s.config.RecentMentionsLimit
	}
	mentions, err := s.backend.RecentMentions(ctx, sel, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent mentions: %w", err)
	}
	return mentions, nil
}

// Recommendations lists recommendations for a brand, optionally filtered by status
func (s *Service) Recommendations(ctx context.Context, brandID string, status models.RecommendationStatus) ([]models.Recommendation, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	recs, err := s.backend.ListRecommendations(ctx, brandID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

// UpdateRecommendationStatus moves a recommendation to a new status
func (s *Service) UpdateRecommendationStatus(ctx context.Context, id string, status models.RecommendationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	return s.backend.UpdateRecommendationStatus(ctx, id, status)
}
