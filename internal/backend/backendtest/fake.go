// Package backendtest provides an in-memory Backend for tests.
package backendtest

import (
	"context"
	"sort"
	"sync"

	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/models"
)

// Fake serves canned rows and records writes. Reads apply the selection's
// range and model filters the way the hosted views do.
type Fake struct {
	mu sync.Mutex

	Brands          []models.Brand
	Competitors     []models.Competitor
	Platforms       []models.Platform
	Prompts         []models.Prompt
	Tags            []models.Tag
	WorkspaceModels []models.WorkspaceModel
	Daily           []models.DailyVisibilityRow
	PromptRows      []models.PromptMentionRow
	Mentions        []models.RecentMention
	Sources         []models.Source
	Runs            []models.Run
	Trips           map[models.TripKey]models.Trip
	Recommendations []models.Recommendation
	Chats           []models.ChatExchange

	// Errors forces a method, keyed by name, to fail
	Errors map[string]error

	// Tokens records the access token seen by each call
	Tokens []string
}

var _ backend.Backend = (*Fake)(nil)

func (f *Fake) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.Tokens = append(f.Tokens, backend.AccessToken(ctx))
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.Errors[method]
}

func inSelection(day, modelID string, sel models.FilterSelection) bool {
	if sel.Range.Start != "" && !sel.Range.Contains(day) {
		return false
	}
	return sel.AllModels() || modelID == sel.ModelID
}

func (f *Fake) ListBrands(ctx context.Context) ([]models.Brand, error) {
	if err := f.enter(ctx, "ListBrands"); err != nil {
		return nil, err
	}
	return append([]models.Brand(nil), f.Brands...), nil
}

func (f *Fake) ListCompetitors(ctx context.Context, brandID string) ([]models.Competitor, error) {
	if err := f.enter(ctx, "ListCompetitors"); err != nil {
		return nil, err
	}
	var out []models.Competitor
	for _, c := range f.Competitors {
		if brandID == "" || c.BrandID == brandID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *Fake) GetCompetitor(ctx context.Context, id string) (*models.Competitor, error) {
	if err := f.enter(ctx, "GetCompetitor"); err != nil {
		return nil, err
	}
	for _, c := range f.Competitors {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *Fake) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	if err := f.enter(ctx, "ListPlatforms"); err != nil {
		return nil, err
	}
	return append([]models.Platform(nil), f.Platforms...), nil
}

func (f *Fake) ListPrompts(ctx context.Context, brandID string) ([]models.Prompt, error) {
	if err := f.enter(ctx, "ListPrompts"); err != nil {
		return nil, err
	}
	var out []models.Prompt
	for _, p := range f.Prompts {
		if brandID == "" || p.BrandID == brandID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fake) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	if err := f.enter(ctx, "GetPrompt"); err != nil {
		return nil, err
	}
	for _, p := range f.Prompts {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *Fake) CreatePrompt(ctx context.Context, prompt models.Prompt) (*models.Prompt, error) {
	if err := f.enter(ctx, "CreatePrompt"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	return &prompt, nil
}

func (f *Fake) ListTags(ctx context.Context, brandID string) ([]models.Tag, error) {
	if err := f.enter(ctx, "ListTags"); err != nil {
		return nil, err
	}
	var out []models.Tag
	for _, t := range f.Tags {
		if brandID == "" || t.BrandID == brandID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *Fake) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	if err := f.enter(ctx, "CreateTag"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tags = append(f.Tags, tag)
	return &tag, nil
}

func (f *Fake) UpdateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	if err := f.enter(ctx, "UpdateTag"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Tags {
		if f.Tags[i].ID == tag.ID {
			f.Tags[i].Name = tag.Name
			f.Tags[i].Color = tag.Color
			updated := f.Tags[i]
			return &updated, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *Fake) DeleteTag(ctx context.Context, id string) error {
	if err := f.enter(ctx, "DeleteTag"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Tags {
		if f.Tags[i].ID == id {
			f.Tags = append(f.Tags[:i], f.Tags[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

func (f *Fake) ListWorkspaceModels(ctx context.Context, workspaceID string) ([]models.WorkspaceModel, error) {
	if err := f.enter(ctx, "ListWorkspaceModels"); err != nil {
		return nil, err
	}
	var out []models.WorkspaceModel
	for _, m := range f.WorkspaceModels {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *Fake) SetModelEnabled(ctx context.Context, workspaceID, modelID string, enabled bool) error {
	if err := f.enter(ctx, "SetModelEnabled"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.WorkspaceModels {
		if f.WorkspaceModels[i].WorkspaceID == workspaceID && f.WorkspaceModels[i].ModelID == modelID {
			f.WorkspaceModels[i].Enabled = enabled
			return nil
		}
	}
	f.WorkspaceModels = append(f.WorkspaceModels, models.WorkspaceModel{WorkspaceID: workspaceID, ModelID: modelID, Enabled: enabled})
	return nil
}

func (f *Fake) DailyVisibility(ctx context.Context, sel models.FilterSelection) ([]models.DailyVisibilityRow, error) {
	if err := f.enter(ctx, "DailyVisibility"); err != nil {
		return nil, err
	}
	var out []models.DailyVisibilityRow
	for _, row := range f.Daily {
		if inSelection(row.Day, row.ModelID, sel) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (f *Fake) PromptMentionRows(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.PromptMentionRow, error) {
	if err := f.enter(ctx, "PromptMentionRows"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(promptIDs))
	for _, id := range promptIDs {
		wanted[id] = true
	}
	var out []models.PromptMentionRow
	for _, row := range f.PromptRows {
		if promptIDs != nil && !wanted[row.PromptID] {
			continue
		}
		if inSelection(row.Day, row.ModelID, sel) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *Fake) RecentMentions(ctx context.Context, sel models.FilterSelection, limit int) ([]models.RecentMention, error) {
	if err := f.enter(ctx, "RecentMentions"); err != nil {
		return nil, err
	}
	var out []models.RecentMention
	for _, m := range f.Mentions {
		if !inSelection(m.Day, m.ModelID, sel) {
			continue
		}
		if !sel.AllBrands() && m.EntityID != sel.BrandID {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *Fake) PromptSources(ctx context.Context, promptID string, sel models.FilterSelection) ([]models.Source, error) {
	if err := f.enter(ctx, "PromptSources"); err != nil {
		return nil, err
	}
	var out []models.Source
	for _, s := range f.Sources {
		if s.PromptID != promptID {
			continue
		}
		if inSelection(s.CreatedAt.UTC().Format(models.DayLayout), s.ModelID, sel) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) SourcesForPrompts(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.Source, error) {
	if err := f.enter(ctx, "SourcesForPrompts"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(promptIDs))
	for _, id := range promptIDs {
		wanted[id] = true
	}
	var out []models.Source
	for _, s := range f.Sources {
		if wanted[s.PromptID] && inSelection(s.CreatedAt.UTC().Format(models.DayLayout), s.ModelID, sel) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) ListRuns(ctx context.Context, sel models.FilterSelection) ([]models.Run, error) {
	if err := f.enter(ctx, "ListRuns"); err != nil {
		return nil, err
	}
	var out []models.Run
	for _, r := range f.Runs {
		if inSelection(r.CreatedAt.UTC().Format(models.DayLayout), r.ModelID, sel) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fake) GetTrip(ctx context.Context, key models.TripKey) (*models.Trip, error) {
	if err := f.enter(ctx, "GetTrip"); err != nil {
		return nil, err
	}
	trip, ok := f.Trips[key]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &trip, nil
}

func (f *Fake) ListRecommendations(ctx context.Context, brandID string, status models.RecommendationStatus) ([]models.Recommendation, error) {
	if err := f.enter(ctx, "ListRecommendations"); err != nil {
		return nil, err
	}
	var out []models.Recommendation
	for _, r := range f.Recommendations {
		if brandID != "" && r.BrandID != brandID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *Fake) UpdateRecommendationStatus(ctx context.Context, id string, status models.RecommendationStatus) error {
	if err := f.enter(ctx, "UpdateRecommendationStatus"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Recommendations {
		if f.Recommendations[i].ID == id {
			f.Recommendations[i].Status = status
			return nil
		}
	}
	return backend.ErrNotFound
}

func (f *Fake) SaveChatExchange(ctx context.Context, exchange models.ChatExchange) error {
	if err := f.enter(ctx, "SaveChatExchange"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Chats = append(f.Chats, exchange)
	return nil
}

func (f *Fake) ListChatExchanges(ctx context.Context) ([]models.ChatExchange, error) {
	if err := f.enter(ctx, "ListChatExchanges"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatExchange(nil), f.Chats...), nil
}
