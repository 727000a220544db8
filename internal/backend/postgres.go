package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

// PostgresClient queries the backend's database directly
type PostgresClient struct {
	db *sqlx.DB
}

// Ensure PostgresClient implements Backend
var _ Backend = (*PostgresClient)(nil)

// NewPostgresClient connects to the database and verifies the connection
func NewPostgresClient(dataSourceName string) (*PostgresClient, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to the database")
	return &PostgresClient{db: db}, nil
}

// Close releases the connection pool
func (p *PostgresClient) Close() error {
	return p.db.Close()
}

// where accumulates AND-ed conditions written with ? placeholders
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) addIfSet(cond, value string) {
	if value != "" {
		w.add(cond, value)
	}
}

func (w *where) days(column string, r models.TimeRange) {
	w.addIfSet(column+" >= ?::date", r.Start)
	w.addIfSet(column+" <= ?::date", r.End)
}

func (w *where) timestamps(column string, r models.TimeRange) {
	w.addIfSet(column+" >= ?::date", r.Start)
	w.addIfSet(column+" < ?::date + 1", r.End)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (p *PostgresClient) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := p.db.SelectContext(ctx, dest, p.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}

func (p *PostgresClient) getRow(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := p.db.GetContext(ctx, dest, p.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}

func (p *PostgresClient) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := p.db.ExecContext(ctx, p.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresClient) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands := []models.Brand{}
	err := p.selectRows(ctx, &brands, `SELECT id, name, coalesce(color, '') AS color, coalesce(logo_url, '') AS logo_url,
		coalesce(website, '') AS website, is_primary, created_at FROM brands ORDER BY is_primary DESC, name`)
	return brands, err
}

const competitorColumns = `id, brand_id, name, coalesce(color, '') AS color, coalesce(logo_url, '') AS logo_url,
	coalesce(website, '') AS website, created_at`

func (p *PostgresClient) ListCompetitors(ctx context.Context, brandID string) ([]models.Competitor, error) {
	var w where
	w.addIfSet("brand_id = ?", brandID)
	competitors := []models.Competitor{}
	err := p.selectRows(ctx, &competitors, "SELECT "+competitorColumns+" FROM competitors"+w.String()+" ORDER BY name", w.args...)
	return competitors, err
}

func (p *PostgresClient) GetCompetitor(ctx context.Context, id string) (*models.Competitor, error) {
	var c models.Competitor
	if err := p.getRow(ctx, &c, "SELECT "+competitorColumns+" FROM competitors WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *PostgresClient) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	platforms := []models.Platform{}
	err := p.selectRows(ctx, &platforms, `SELECT id, name, coalesce(logo_url, '') AS logo_url,
		coalesce(input_cost_per_token, 0) AS input_cost_per_token,
		coalesce(output_cost_per_token, 0) AS output_cost_per_token
		FROM platforms ORDER BY name`)
	return platforms, err
}

const promptColumns = "id, brand_id, text, topic, active, created_at"

func (p *PostgresClient) ListPrompts(ctx context.Context, brandID string) ([]models.Prompt, error) {
	var w where
	w.addIfSet("brand_id = ?", brandID)
	prompts := []models.Prompt{}
	err := p.selectRows(ctx, &prompts, "SELECT "+promptColumns+" FROM prompts"+w.String()+" ORDER BY created_at DESC", w.args...)
	return prompts, err
}

func (p *PostgresClient) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := p.getRow(ctx, &prompt, "SELECT "+promptColumns+" FROM prompts WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (p *PostgresClient) CreatePrompt(ctx context.Context, prompt models.Prompt) (*models.Prompt, error) {
	var created models.Prompt
	err := p.getRow(ctx, &created, `INSERT INTO prompts (id, brand_id, text, topic, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING `+promptColumns,
		prompt.ID, prompt.BrandID, prompt.Text, prompt.Topic, prompt.Active, prompt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

const tagColumns = "id, brand_id, name, coalesce(color, '') AS color, created_at"

func (p *PostgresClient) ListTags(ctx context.Context, brandID string) ([]models.Tag, error) {
	var w where
	w.addIfSet("brand_id = ?", brandID)
	tags := []models.Tag{}
	err := p.selectRows(ctx, &tags, "SELECT "+tagColumns+" FROM tags"+w.String()+" ORDER BY name", w.args...)
	return tags, err
}

func (p *PostgresClient) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	var created models.Tag
	err := p.getRow(ctx, &created, `INSERT INTO tags (id, brand_id, name, color, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING `+tagColumns,
		tag.ID, tag.BrandID, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *PostgresClient) UpdateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	var updated models.Tag
	err := p.getRow(ctx, &updated, "UPDATE tags SET name = ?, color = ? WHERE id = ? RETURNING "+tagColumns,
		tag.Name, tag.Color, tag.ID)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (p *PostgresClient) DeleteTag(ctx context.Context, id string) error {
	return p.execOne(ctx, "DELETE FROM tags WHERE id = ?", id)
}

func (p *PostgresClient) ListWorkspaceModels(ctx context.Context, workspaceID string) ([]models.WorkspaceModel, error) {
	rows := []models.WorkspaceModel{}
	err := p.selectRows(ctx, &rows, `SELECT workspace_id, model_id, enabled FROM workspace_models
		WHERE workspace_id = ? ORDER BY model_id`, workspaceID)
	return rows, err
}

func (p *PostgresClient) SetModelEnabled(ctx context.Context, workspaceID, modelID string, enabled bool) error {
	_, err := p.db.ExecContext(ctx, p.db.Rebind(`INSERT INTO workspace_models (workspace_id, model_id, enabled)
		VALUES (?, ?, ?) ON CONFLICT (workspace_id, model_id) DO UPDATE SET enabled = EXCLUDED.enabled`),
		workspaceID, modelID, enabled)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

func (p *PostgresClient) DailyVisibility(ctx context.Context, sel models.FilterSelection) ([]models.DailyVisibilityRow, error) {
	var w where
	w.days("day", sel.Range)
	w.addIfSet("model_id = ?", sel.ModelID)

	rows := []models.DailyVisibilityRow{}
	err := p.selectRows(ctx, &rows, `SELECT to_char(day, 'YYYY-MM-DD') AS day, entity_id, model_id,
		mention_count, total_runs, avg_position, avg_sentiment_score
		FROM daily_visibility_stats`+w.String()+" ORDER BY day", w.args...)
	return rows, err
}

func (p *PostgresClient) PromptMentionRows(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.PromptMentionRow, error) {
	rows := []models.PromptMentionRow{}
	if promptIDs != nil && len(promptIDs) == 0 {
		return rows, nil
	}

	var w where
	w.days("day", sel.Range)
	w.addIfSet("model_id = ?", sel.ModelID)
	if promptIDs != nil {
		w.add("prompt_id IN (?)", promptIDs)
	}

	query, args, err := sqlx.In(`SELECT prompt_id, to_char(day, 'YYYY-MM-DD') AS day, entity_id, model_id,
		mention_count, avg_position, avg_sentiment_score
		FROM prompt_mention_stats`+w.String(), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand prompt ids: %w", err)
	}
	err = p.selectRows(ctx, &rows, query, args...)
	return rows, err
}

func (p *PostgresClient) RecentMentions(ctx context.Context, sel models.FilterSelection, limit int) ([]models.RecentMention, error) {
	var w where
	w.days("day", sel.Range)
	w.addIfSet("model_id = ?", sel.ModelID)
	w.addIfSet("entity_id = ?", sel.BrandID)

	query := `SELECT id, created_at, to_char(day, 'YYYY-MM-DD') AS day, entity_id, entity_name, prompt_id,
		prompt_text, model_id, model_name, run_id, position, coalesce(sentiment, '') AS sentiment, sentence
		FROM recent_mentions_enriched` + w.String() + " ORDER BY created_at DESC"
	args := w.args
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows := []models.RecentMention{}
	err := p.selectRows(ctx, &rows, query, args...)
	return rows, err
}

const sourceColumns = "id, prompt_id, run_id, model_id, url, coalesce(title, '') AS title, created_at"

func (p *PostgresClient) PromptSources(ctx context.Context, promptID string, sel models.FilterSelection) ([]models.Source, error) {
	var w where
	w.add("prompt_id = ?", promptID)
	w.timestamps("created_at", sel.Range)
	w.addIfSet("model_id = ?", sel.ModelID)

	rows := []models.Source{}
	err := p.selectRows(ctx, &rows, "SELECT "+sourceColumns+" FROM sources"+w.String()+" ORDER BY created_at DESC", w.args...)
	return rows, err
}

func (p *PostgresClient) SourcesForPrompts(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.Source, error) {
	rows := []models.Source{}
	if len(promptIDs) == 0 {
		return rows, nil
	}

	var w where
	w.add("prompt_id IN (?)", promptIDs)
	w.timestamps("created_at", sel.Range)
	w.addIfSet("model_id = ?", sel.ModelID)

	query, args, err := sqlx.In("SELECT "+sourceColumns+" FROM sources"+w.String()+" ORDER BY created_at DESC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand prompt ids: %w", err)
	}
	err = p.selectRows(ctx, &rows, query, args...)
	return rows, err
}

func (p *PostgresClient) ListRuns(ctx context.Context, sel models.FilterSelection) ([]models.Run, error) {
	var w where
	w.timestamps("created_at", sel.Range)
	w.addIfSet("model_id = ?", sel.ModelID)

	rows := []models.Run{}
	err := p.selectRows(ctx, &rows, `SELECT id, run_id, prompt_id, model_id, '' AS response, input_tokens, output_tokens,
		status, created_at FROM runs`+w.String()+" ORDER BY created_at DESC", w.args...)
	return rows, err
}

func (p *PostgresClient) GetTrip(ctx context.Context, key models.TripKey) (*models.Trip, error) {
	var w where
	w.add("run_id = ?", key.RunID)
	w.add("model_id = ?", key.ModelID)
	w.addIfSet("prompt_id = ?", key.PromptID)

	var run models.Run
	if err := p.getRow(ctx, &run, `SELECT id, run_id, prompt_id, model_id, coalesce(response, '') AS response,
		input_tokens, output_tokens, status, created_at FROM runs`+w.String()+" LIMIT 1", w.args...); err != nil {
		return nil, err
	}

	trip := &models.Trip{Run: run, Mentions: []models.Mention{}, Sources: []models.Source{}}
	if err := p.selectRows(ctx, &trip.Mentions, `SELECT id, run_id, prompt_id, model_id, entity_id, sentence, position,
		coalesce(sentiment, '') AS sentiment, created_at FROM mentions WHERE run_id = ? ORDER BY position`, run.ID); err != nil {
		return nil, err
	}
	if err := p.selectRows(ctx, &trip.Sources, "SELECT "+sourceColumns+" FROM sources WHERE run_id = ? ORDER BY created_at", run.ID); err != nil {
		return nil, err
	}
	return trip, nil
}

func (p *PostgresClient) ListRecommendations(ctx context.Context, brandID string, status models.RecommendationStatus) ([]models.Recommendation, error) {
	var w where
	w.addIfSet("brand_id = ?", brandID)
	w.addIfSet("status = ?", string(status))

	recs := []models.Recommendation{}
	if err := p.selectRows(ctx, &recs, `SELECT id, brand_id, title, coalesce(description, '') AS description,
		priority, effort, impact, confidence, status, created_at
		FROM recommendations`+w.String()+" ORDER BY priority DESC, created_at DESC", w.args...); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}

	ids := make([]string, len(recs))
	index := make(map[string]int, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
		index[r.ID] = i
	}

	var targets []models.RecommendationTarget
	if err := p.selectIn(ctx, &targets, "SELECT id, recommendation_id, prompt_id, entity_id FROM recommendation_targets WHERE recommendation_id IN (?)", ids); err != nil {
		return nil, err
	}
	for _, t := range targets {
		recs[index[t.RecommendationID]].Targets = append(recs[index[t.RecommendationID]].Targets, t)
	}

	var evidence []models.RecommendationEvidence
	if err := p.selectIn(ctx, &evidence, "SELECT id, recommendation_id, kind, coalesce(url, '') AS url, coalesce(note, '') AS note FROM recommendation_evidence WHERE recommendation_id IN (?)", ids); err != nil {
		return nil, err
	}
	for _, e := range evidence {
		recs[index[e.RecommendationID]].Evidence = append(recs[index[e.RecommendationID]].Evidence, e)
	}

	var changes []models.RecommendationChange
	if err := p.selectIn(ctx, &changes, "SELECT id, recommendation_id, description, changed_at FROM recommendation_changes WHERE recommendation_id IN (?) ORDER BY changed_at", ids); err != nil {
		return nil, err
	}
	for _, c := range changes {
		recs[index[c.RecommendationID]].Changes = append(recs[index[c.RecommendationID]].Changes, c)
	}

	var experiments []models.RecommendationExperiment
	if err := p.selectIn(ctx, &experiments, `SELECT id, recommendation_id, hypothesis, baseline_value, result_value, started_at, ended_at
		FROM recommendation_experiments WHERE recommendation_id IN (?) ORDER BY started_at`, ids); err != nil {
		return nil, err
	}
	for _, e := range experiments {
		recs[index[e.RecommendationID]].Experiments = append(recs[index[e.RecommendationID]].Experiments, e)
	}

	return recs, nil
}

func (p *PostgresClient) selectIn(ctx context.Context, dest interface{}, query string, ids []string) error {
	expanded, args, err := sqlx.In(query, ids)
	if err != nil {
		return fmt.Errorf("failed to expand ids: %w", err)
	}
	return p.selectRows(ctx, dest, expanded, args...)
}

func (p *PostgresClient) UpdateRecommendationStatus(ctx context.Context, id string, status models.RecommendationStatus) error {
	return p.execOne(ctx, "UPDATE recommendations SET status = ? WHERE id = ?", string(status), id)
}

func (p *PostgresClient) SaveChatExchange(ctx context.Context, exchange models.ChatExchange) error {
	_, err := p.db.NamedExecContext(ctx, `INSERT INTO competitor_chats (id, competitor_id, competitor_name, message, response, created_at)
		VALUES (:id, :competitor_id, :competitor_name, :message, :response, :created_at)`, exchange)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

func (p *PostgresClient) ListChatExchanges(ctx context.Context) ([]models.ChatExchange, error) {
	rows := []models.ChatExchange{}
	err := p.selectRows(ctx, &rows, `SELECT id, competitor_id, competitor_name, message, response, created_at
		FROM competitor_chats ORDER BY created_at`)
	return rows, err
}
