package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the fake backend received
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

func newFakeBackend(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestQuery_Values(t *testing.T) {
	q := From("daily_visibility_stats").
		Select("day,entity_id").
		Days("day", models.TimeRange{Start: "2024-01-01", End: "2024-01-07"}).
		EqIfSet("model_id", "").
		EqIfSet("entity_id", "A").
		In("prompt_id", []string{"p1", "p,2"}).
		Order("day", true).
		Order("entity_id", false).
		Limit(50)

	values := q.Values()

	assert.Equal(t, []string{"gte.2024-01-01", "lte.2024-01-07"}, values["day"])
	assert.Empty(t, values.Get("model_id"))
	assert.Equal(t, "eq.A", values.Get("entity_id"))
	assert.Equal(t, `in.("p1","p,2")`, values.Get("prompt_id"))
	assert.Equal(t, "day,entity_id", values.Get("select"))
	assert.Equal(t, "day.asc,entity_id.desc", values.Get("order"))
	assert.Equal(t, "50", values.Get("limit"))
}

func TestQuery_OpenRange(t *testing.T) {
	values := From("runs").Timestamps("created_at", models.TimeRange{End: "2024-01-07"}).Values()
	assert.Equal(t, []string{"lte.2024-01-07T23:59:59.999Z"}, values["created_at"])
}

func TestRESTClient_DailyVisibility(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusOK, `[
		{"day":"2024-01-01","entity_id":"A","model_id":"gpt","mention_count":3,"total_runs":5,"avg_position":1.5,"avg_sentiment_score":null}
	]`)
	client := NewRESTClient(server.URL, "anon-key")

	sel := models.FilterSelection{
		ModelID: "gpt",
		Range:   models.TimeRange{Start: "2024-01-01", End: "2024-01-31"},
	}
	rows, err := client.DailyVisibility(context.Background(), sel)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Mentions)
	require.NotNil(t, rows[0].AvgPosition)
	assert.Equal(t, 1.5, *rows[0].AvgPosition)
	assert.Nil(t, rows[0].AvgSentimentScore)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/rest/v1/daily_visibility_stats", req.Path)
	assert.Equal(t, "eq.gpt", req.Query.Get("model_id"))
	assert.Equal(t, []string{"gte.2024-01-01", "lte.2024-01-31"}, req.Query["day"])
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", req.Header.Get("Authorization"))
}

func TestRESTClient_ForwardsCallerToken(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusOK, `[]`)
	client := NewRESTClient(server.URL, "anon-key")

	ctx := WithAccessToken(context.Background(), "user-jwt")
	_, err := client.ListBrands(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Bearer user-jwt", (*requests)[0].Header.Get("Authorization"))
	assert.Equal(t, "anon-key", (*requests)[0].Header.Get("apikey"))
}

func TestRESTClient_GetPromptNotFound(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusOK, `[]`)
	client := NewRESTClient(server.URL, "key")

	_, err := client.GetPrompt(context.Background(), "missing")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "eq.missing", (*requests)[0].Query.Get("id"))
	assert.Equal(t, "1", (*requests)[0].Query.Get("limit"))
}

func TestRESTClient_ErrorStatus(t *testing.T) {
	server, _ := newFakeBackend(t, http.StatusInternalServerError, `{"message":"boom"}`)
	client := NewRESTClient(server.URL, "key")

	_, err := client.ListPlatforms(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestRESTClient_PromptMentionRowsNoPrompts(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusOK, `[]`)
	client := NewRESTClient(server.URL, "key")

	rows, err := client.PromptMentionRows(context.Background(), []string{}, models.FilterSelection{})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, *requests, "no request for an empty prompt list")
}

func TestRESTClient_SourcesForPrompts(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusOK, `[{"id":"s1","url":"https://example.com","prompt_id":"p1"}]`)
	client := NewRESTClient(server.URL, "key")

	sel := models.FilterSelection{ModelID: "gpt", Range: models.TimeRange{Start: "2024-01-01", End: "2024-01-07"}}
	sources, err := client.SourcesForPrompts(context.Background(), []string{"p1", "p2"}, sel)

	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/rest/v1/sources", req.Path)
	assert.Equal(t, `in.("p1","p2")`, req.Query.Get("prompt_id"))
	assert.Equal(t, "eq.gpt", req.Query.Get("model_id"))

	none, err := client.SourcesForPrompts(context.Background(), nil, sel)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Len(t, *requests, 1, "no request for an empty prompt list")
}

func TestRESTClient_CreatePrompt(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusCreated, `[{"id":"p1","brand_id":"A","text":"best crm?","active":true}]`)
	client := NewRESTClient(server.URL, "key")

	created, err := client.CreatePrompt(context.Background(), models.Prompt{ID: "p1", BrandID: "A", Text: "best crm?", Active: true})

	require.NoError(t, err)
	assert.Equal(t, "p1", created.ID)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, "best crm?", body["text"])
}

func TestRESTClient_SetModelEnabled(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusCreated, ``)
	client := NewRESTClient(server.URL, "key")

	err := client.SetModelEnabled(context.Background(), "ws1", "gpt", false)

	require.NoError(t, err)
	req := (*requests)[0]
	assert.Equal(t, "/rest/v1/workspace_models", req.Path)
	assert.Equal(t, "workspace_id,model_id", req.Query.Get("on_conflict"))
	assert.Contains(t, req.Header.Get("Prefer"), "merge-duplicates")
	assert.JSONEq(t, `{"workspace_id":"ws1","model_id":"gpt","enabled":false}`, req.Body)
}

func TestRESTClient_UpdateRecommendationStatusNotFound(t *testing.T) {
	server, requests := newFakeBackend(t, http.StatusOK, `[]`)
	client := NewRESTClient(server.URL, "key")

	err := client.UpdateRecommendationStatus(context.Background(), "r1", models.StatusDone)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, http.MethodPatch, (*requests)[0].Method)
	assert.JSONEq(t, `{"status":"done"}`, (*requests)[0].Body)
}

func TestRESTClient_GetTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/v1/runs":
			assert.Equal(t, "eq.trip-1", r.URL.Query().Get("run_id"))
			assert.Equal(t, "eq.gpt", r.URL.Query().Get("model_id"))
			w.Write([]byte(`[{"id":"row-9","run_id":"trip-1","model_id":"gpt","prompt_id":"p1","response":"Acme is great"}]`))
		case "/rest/v1/mentions":
			assert.Equal(t, "eq.row-9", r.URL.Query().Get("run_id"))
			w.Write([]byte(`[{"id":"m1","entity_id":"A","position":1}]`))
		case "/rest/v1/sources":
			w.Write([]byte(`[{"id":"s1","url":"https://example.com"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	client := NewRESTClient(server.URL, "key")

	trip, err := client.GetTrip(context.Background(), models.TripKey{RunID: "trip-1", ModelID: "gpt"})

	require.NoError(t, err)
	assert.Equal(t, "Acme is great", trip.Run.Response)
	require.Len(t, trip.Mentions, 1)
	assert.Equal(t, 1, *trip.Mentions[0].Position)
	require.Len(t, trip.Sources, 1)
}
