package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/backend/backendtest"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	answer string
	err    error
	system string
	user   string
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.answer, s.err
}

func newFake() *backendtest.Fake {
	return &backendtest.Fake{
		Competitors: []models.Competitor{
			{ID: "c1", BrandID: "A", Name: "Globex", Website: "https://globex.example"},
		},
	}
}

func TestAnalyze(t *testing.T) {
	fake := newFake()
	completer := &stubCompleter{answer: "Globex leads on price."}
	svc := NewService(fake, completer)

	resp, err := svc.Analyze(context.Background(), "c1", "How do they price?")

	require.NoError(t, err)
	assert.Equal(t, &AnalysisResponse{Response: "Globex leads on price.", CompetitorName: "Globex"}, resp)
	assert.Contains(t, completer.system, `"Globex"`)
	assert.Equal(t, "How do they price?", completer.user)

	require.Len(t, fake.Chats, 1)
	assert.NotEmpty(t, fake.Chats[0].ID)
	assert.Equal(t, "c1", fake.Chats[0].CompetitorID)
	assert.Equal(t, "Globex leads on price.", fake.Chats[0].Response)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := NewService(newFake(), nil).Analyze(context.Background(), "c1", "hi")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewService(newFake(), &stubCompleter{}).Analyze(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrCompetitorNotFound)

	_, err = NewService(newFake(), &stubCompleter{}).Analyze(context.Background(), "c1", "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	fake := newFake()
	_, err = NewService(fake, &stubCompleter{err: errors.New("rate limited")}).Analyze(context.Background(), "c1", "hi")
	assert.EqualError(t, err, "rate limited")
	assert.Empty(t, fake.Chats)
}

func TestExportHistory(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := &backendtest.Fake{Chats: []models.ChatExchange{
		{ID: "1", CompetitorID: "c2", CompetitorName: "Initech", CreatedAt: base},
		{ID: "2", CompetitorID: "c1", CompetitorName: "Globex", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "3", CompetitorID: "c1", CompetitorName: "Globex", CreatedAt: base.Add(time.Hour)},
	}}
	svc := NewService(fake, nil)

	export, err := svc.ExportHistory(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, export.TotalExchanges)
	require.Len(t, export.Competitors, 2)
	assert.Equal(t, "c1", export.Competitors[0].CompetitorID)
	assert.Equal(t, 2, export.Competitors[0].Count)
	assert.Equal(t, "3", export.Competitors[0].Exchanges[0].ID)
	assert.Equal(t, "c2", export.Competitors[1].CompetitorID)
}

func TestExportHistory_Empty(t *testing.T) {
	export, err := NewService(&backendtest.Fake{}, nil).ExportHistory(context.Background())

	require.NoError(t, err)
	assert.Zero(t, export.TotalExchanges)
	assert.NotNil(t, export.Competitors)
}

func TestCompletionClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewCompletionClient(server.URL+"/v1/", "sk-test", "gpt-4o-mini")

	answer, err := client.Complete(context.Background(), "be brief", "hi")

	require.NoError(t, err)
	assert.Equal(t, "hello", answer)
}

func TestCompletionClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := NewCompletionClient(server.URL, "bad", "gpt-4o-mini").Complete(context.Background(), "s", "u")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}
