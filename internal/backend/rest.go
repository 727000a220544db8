package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	tableBrands          = "brands"
	tableCompetitors     = "competitors"
	tablePlatforms       = "platforms"
	tablePrompts         = "prompts"
	tableTags            = "tags"
	tableWorkspaceModels = "workspace_models"
	tableRuns            = "runs"
	tableMentions        = "mentions"
	tableSources         = "sources"
	tableRecommendations = "recommendations"
	tableChats           = "competitor_chats"
	viewDailyVisibility  = "daily_visibility_stats"
	viewPromptMentions   = "prompt_mention_stats"
	viewRecentMentions   = "recent_mentions_enriched"
)

const recommendationColumns = "*,recommendation_targets(*),recommendation_evidence(*),recommendation_changes(*),recommendation_experiments(*)"

// RESTClient talks to the hosted backend's REST interface
type RESTClient struct {
	client *resty.Client
	apiKey string
}

// Ensure RESTClient implements Backend
var _ Backend = (*RESTClient)(nil)

// NewRESTClient creates a client for the backend at baseURL (e.g. https://xyz.example.co)
func NewRESTClient(baseURL, apiKey string) *RESTClient {
	return &RESTClient{
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30*time.Second).
			SetHeader("apikey", apiKey).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "Visibility-Dashboard/1.0"),
	}
}

func (c *RESTClient) request(ctx context.Context) *resty.Request {
	token := AccessToken(ctx)
	if token == "" {
		token = c.apiKey
	}
	return c.client.R().SetContext(ctx).SetAuthToken(token)
}

func restPath(table string) string {
	return "/rest/v1/" + table
}

func checkResponse(resp *resty.Response, table string) error {
	if resp.IsError() {
		return fmt.Errorf("backend returned status %d for %s: %s", resp.StatusCode(), table, string(resp.Body()))
	}
	return nil
}

func (c *RESTClient) get(ctx context.Context, q *Query, out interface{}) error {
	resp, err := c.request(ctx).
		SetQueryParamsFromValues(q.Values()).
		Get(restPath(q.Table()))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", q.Table(), err)
	}
	if err := checkResponse(resp, q.Table()); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", q.Table(), err)
	}
	return nil
}

// getOne fetches the first matching row or ErrNotFound
func getOne[T any](ctx context.Context, c *RESTClient, q *Query) (*T, error) {
	var rows []T
	if err := c.get(ctx, q.Limit(1), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", q.Table(), ErrNotFound)
	}
	return &rows[0], nil
}

// write sends a mutation and decodes the returned representation into out when non-nil
func (c *RESTClient) write(ctx context.Context, method string, q *Query, body interface{}, out interface{}) error {
	req := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParamsFromValues(q.Values())
	if out != nil {
		req.SetHeader("Prefer", "return=representation")
	} else {
		req.SetHeader("Prefer", "return=minimal")
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, restPath(q.Table()))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", q.Table(), err)
	}
	if err := checkResponse(resp, q.Table()); err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to decode %s: %w", q.Table(), err)
		}
	}
	return nil
}

// writeOne performs a mutation expected to return exactly one row
func writeOne[T any](ctx context.Context, c *RESTClient, method string, q *Query, body interface{}) (*T, error) {
	var rows []T
	if err := c.write(ctx, method, q, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", q.Table(), ErrNotFound)
	}
	return &rows[0], nil
}

func (c *RESTClient) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := c.get(ctx, From(tableBrands).Order("is_primary", false).Order("name", true), &brands)
	return brands, err
}

func (c *RESTClient) ListCompetitors(ctx context.Context, brandID string) ([]models.Competitor, error) {
	var competitors []models.Competitor
	err := c.get(ctx, From(tableCompetitors).EqIfSet("brand_id", brandID).Order("name", true), &competitors)
	return competitors, err
}

func (c *RESTClient) GetCompetitor(ctx context.Context, id string) (*models.Competitor, error) {
	return getOne[models.Competitor](ctx, c, From(tableCompetitors).Eq("id", id))
}

func (c *RESTClient) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	var platforms []models.Platform
	err := c.get(ctx, From(tablePlatforms).Order("name", true), &platforms)
	return platforms, err
}

func (c *RESTClient) ListPrompts(ctx context.Context, brandID string) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := c.get(ctx, From(tablePrompts).EqIfSet("brand_id", brandID).Order("created_at", false), &prompts)
	return prompts, err
}

func (c *RESTClient) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	return getOne[models.Prompt](ctx, c, From(tablePrompts).Eq("id", id))
}

func (c *RESTClient) CreatePrompt(ctx context.Context, prompt models.Prompt) (*models.Prompt, error) {
	return writeOne[models.Prompt](ctx, c, resty.MethodPost, From(tablePrompts), prompt)
}

func (c *RESTClient) ListTags(ctx context.Context, brandID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := c.get(ctx, From(tableTags).EqIfSet("brand_id", brandID).Order("name", true), &tags)
	return tags, err
}

func (c *RESTClient) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	return writeOne[models.Tag](ctx, c, resty.MethodPost, From(tableTags), tag)
}

func (c *RESTClient) UpdateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	body := map[string]string{"name": tag.Name, "color": tag.Color}
	return writeOne[models.Tag](ctx, c, resty.MethodPatch, From(tableTags).Eq("id", tag.ID), body)
}

func (c *RESTClient) DeleteTag(ctx context.Context, id string) error {
	return c.write(ctx, resty.MethodDelete, From(tableTags).Eq("id", id), nil, nil)
}

func (c *RESTClient) ListWorkspaceModels(ctx context.Context, workspaceID string) ([]models.WorkspaceModel, error) {
	var rows []models.WorkspaceModel
	err := c.get(ctx, From(tableWorkspaceModels).Eq("workspace_id", workspaceID).Order("model_id", true), &rows)
	return rows, err
}

func (c *RESTClient) SetModelEnabled(ctx context.Context, workspaceID, modelID string, enabled bool) error {
	row := models.WorkspaceModel{WorkspaceID: workspaceID, ModelID: modelID, Enabled: enabled}
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetQueryParam("on_conflict", "workspace_id,model_id").
		SetBody(row).
		Post(restPath(tableWorkspaceModels))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", tableWorkspaceModels, err)
	}
	return checkResponse(resp, tableWorkspaceModels)
}

func (c *RESTClient) DailyVisibility(ctx context.Context, sel models.FilterSelection) ([]models.DailyVisibilityRow, error) {
	q := From(viewDailyVisibility).
		Select("day,entity_id,model_id,mention_count,total_runs,avg_position,avg_sentiment_score").
		Days("day", sel.Range).
		EqIfSet("model_id", sel.ModelID).
		Order("day", true)

	var rows []models.DailyVisibilityRow
	if err := c.get(ctx, q, &rows); err != nil {
		return nil, err
	}
	logrus.Debugf("Fetched %d daily visibility rows", len(rows))
	return rows, nil
}

func (c *RESTClient) PromptMentionRows(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.PromptMentionRow, error) {
	q := From(viewPromptMentions).
		Select("prompt_id,day,entity_id,model_id,mention_count,avg_position,avg_sentiment_score").
		Days("day", sel.Range).
		EqIfSet("model_id", sel.ModelID)
	if promptIDs != nil {
		if len(promptIDs) == 0 {
			return []models.PromptMentionRow{}, nil
		}
		q.In("prompt_id", promptIDs)
	}

	var rows []models.PromptMentionRow
	err := c.get(ctx, q, &rows)
	return rows, err
}

func (c *RESTClient) RecentMentions(ctx context.Context, sel models.FilterSelection, limit int) ([]models.RecentMention, error) {
	q := From(viewRecentMentions).
		Days("day", sel.Range).
		EqIfSet("model_id", sel.ModelID).
		EqIfSet("entity_id", sel.BrandID).
		Order("created_at", false).
		Limit(limit)

	var rows []models.RecentMention
	err := c.get(ctx, q, &rows)
	return rows, err
}

func (c *RESTClient) PromptSources(ctx context.Context, promptID string, sel models.FilterSelection) ([]models.Source, error) {
	q := From(tableSources).
		Eq("prompt_id", promptID).
		Timestamps("created_at", sel.Range).
		EqIfSet("model_id", sel.ModelID).
		Order("created_at", false)

	var rows []models.Source
	err := c.get(ctx, q, &rows)
	return rows, err
}

func (c *RESTClient) SourcesForPrompts(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.Source, error) {
	if len(promptIDs) == 0 {
		return []models.Source{}, nil
	}
	q := From(tableSources).
		In("prompt_id", promptIDs).
		Timestamps("created_at", sel.Range).
		EqIfSet("model_id", sel.ModelID).
		Order("created_at", false)

	var rows []models.Source
	err := c.get(ctx, q, &rows)
	return rows, err
}

func (c *RESTClient) ListRuns(ctx context.Context, sel models.FilterSelection) ([]models.Run, error) {
	q := From(tableRuns).
		Select("id,run_id,prompt_id,model_id,input_tokens,output_tokens,status,created_at").
		Timestamps("created_at", sel.Range).
		EqIfSet("model_id", sel.ModelID).
		Order("created_at", false)

	var rows []models.Run
	err := c.get(ctx, q, &rows)
	return rows, err
}

func (c *RESTClient) GetTrip(ctx context.Context, key models.TripKey) (*models.Trip, error) {
	run, err := getOne[models.Run](ctx, c, From(tableRuns).
		Eq("run_id", key.RunID).
		Eq("model_id", key.ModelID).
		EqIfSet("prompt_id", key.PromptID))
	if err != nil {
		return nil, err
	}

	trip := &models.Trip{Run: *run, Mentions: []models.Mention{}, Sources: []models.Source{}}
	if err := c.get(ctx, From(tableMentions).Eq("run_id", run.ID).Order("position", true), &trip.Mentions); err != nil {
		return nil, err
	}
	if err := c.get(ctx, From(tableSources).Eq("run_id", run.ID).Order("created_at", true), &trip.Sources); err != nil {
		return nil, err
	}
	return trip, nil
}

func (c *RESTClient) ListRecommendations(ctx context.Context, brandID string, status models.RecommendationStatus) ([]models.Recommendation, error) {
	q := From(tableRecommendations).
		Select(recommendationColumns).
		EqIfSet("brand_id", brandID).
		EqIfSet("status", string(status)).
		Order("priority", false).
		Order("created_at", false)

	var recs []models.Recommendation
	err := c.get(ctx, q, &recs)
	return recs, err
}

func (c *RESTClient) UpdateRecommendationStatus(ctx context.Context, id string, status models.RecommendationStatus) error {
	_, err := writeOne[models.Recommendation](ctx, c, resty.MethodPatch,
		From(tableRecommendations).Eq("id", id), map[string]string{"status": string(status)})
	return err
}

func (c *RESTClient) SaveChatExchange(ctx context.Context, exchange models.ChatExchange) error {
	return c.write(ctx, resty.MethodPost, From(tableChats), exchange, nil)
}

func (c *RESTClient) ListChatExchanges(ctx context.Context) ([]models.ChatExchange, error) {
	var rows []models.ChatExchange
	err := c.get(ctx, From(tableChats).Order("created_at", true), &rows)
	return rows, err
}
