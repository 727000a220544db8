package backend

import (
	"context"
	"errors"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// ErrNotFound is returned when a single-row lookup matches nothing
var ErrNotFound = errors.New("not found")

// Backend defines the query surface of the hosted relational backend.
// Reads take an explicit FilterSelection; writes touch a single row.
type Backend interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListCompetitors(ctx context.Context, brandID string) ([]models.Competitor, error)
	GetCompetitor(ctx context.Context, id string) (*models.Competitor, error)
	ListPlatforms(ctx context.Context) ([]models.Platform, error)

	ListPrompts(ctx context.Context, brandID string) ([]models.Prompt, error)
	GetPrompt(ctx context.Context, id string) (*models.Prompt, error)
	CreatePrompt(ctx context.Context, prompt models.Prompt) (*models.Prompt, error)

	ListTags(ctx context.Context, brandID string) ([]models.Tag, error)
	CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error)
	UpdateTag(ctx context.Context, tag models.Tag) (*models.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	ListWorkspaceModels(ctx context.Context, workspaceID string) ([]models.WorkspaceModel, error)
	SetModelEnabled(ctx context.Context, workspaceID, modelID string, enabled bool) error

	DailyVisibility(ctx context.Context, sel models.FilterSelection) ([]models.DailyVisibilityRow, error)
	PromptMentionRows(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.PromptMentionRow, error)
	RecentMentions(ctx context.Context, sel models.FilterSelection, limit int) ([]models.RecentMention, error)
	PromptSources(ctx context.Context, promptID string, sel models.FilterSelection) ([]models.Source, error)
	SourcesForPrompts(ctx context.Context, promptIDs []string, sel models.FilterSelection) ([]models.Source, error)
	ListRuns(ctx context.Context, sel models.FilterSelection) ([]models.Run, error)
	GetTrip(ctx context.Context, key models.TripKey) (*models.Trip, error)

	ListRecommendations(ctx context.Context, brandID string, status models.RecommendationStatus) ([]models.Recommendation, error)
	UpdateRecommendationStatus(ctx context.Context, id string, status models.RecommendationStatus) error

	SaveChatExchange(ctx context.Context, exchange models.ChatExchange) error
	ListChatExchanges(ctx context.Context) ([]models.ChatExchange, error)
}

type tokenKey struct{}

// WithAccessToken attaches the caller's token so row-level security applies to its queries
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken returns the caller's token, if any
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
