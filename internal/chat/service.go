package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingAPIKey is returned when no chat-completion key is configured
	ErrMissingAPIKey = errors.New("OpenAI API key not configured")
	// ErrCompetitorNotFound is returned for an unknown competitor id
	ErrCompetitorNotFound = errors.New("competitor not found")
	// ErrEmptyMessage is returned when the question is blank
	ErrEmptyMessage = errors.New("message is required")
)

// Completer produces a chat completion for a system and user message
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AnalysisResponse is the answer to one competitor question
type AnalysisResponse struct {
	Response       string `json:"response"`
	CompetitorName string `json:"competitorName"`
}

// CompetitorHistory groups the exchanges about one competitor
type CompetitorHistory struct {
	CompetitorID   string                `json:"competitor_id"`
	CompetitorName string                `json:"competitor_name"`
	Count          int                   `json:"count"`
	Exchanges      []models.ChatExchange `json:"exchanges"`
}

// HistoryExport summarizes every stored exchange
type HistoryExport struct {
	ExportedAt     time.Time           `json:"exported_at"`
	TotalExchanges int                 `json:"total_exchanges"`
	Competitors    []CompetitorHistory `json:"competitors"`
}

// Service answers competitor-analysis questions and exports their history
type Service struct {
	backend   backend.Backend
	completer Completer
	now       func() time.Time
}

// NewService creates a chat service; a nil completer makes Analyze fail with ErrMissingAPIKey
func NewService(b backend.Backend, completer Completer) *Service {
	return &Service{backend: b, completer: completer, now: time.Now}
}

func systemPrompt(c *models.Competitor) string {
	var b strings.Builder
	b.WriteString("You are a competitive intelligence analyst. ")
	b.WriteString(fmt.Sprintf("Answer questions about the competitor %q", c.Name))
	if c.Website != "" {
		b.WriteString(fmt.Sprintf(" (%s)", c.Website))
	}
	b.WriteString(". Focus on positioning, strengths, weaknesses and how AI assistants are likely to describe them. ")
	b.WriteString("Be concise and factual, and say so when you are unsure.")
	return b.String()
}

// Analyze asks the completion API about one competitor and stores the exchange
func (s *Service) Analyze(ctx context.Context, competitorID, message string) (*AnalysisResponse, error) {
	if s.completer == nil {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	competitor, err := s.backend.GetCompetitor(ctx, competitorID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to load competitor: %w", err)
	}

	answer, err := s.completer.Complete(ctx, systemPrompt(competitor), message)
	if err != nil {
		logrus.Errorf("Competitor analysis for %s failed: %v", competitor.Name, err)
		return nil, err
	}

	exchange := models.ChatExchange{
		ID:             uuid.New().String(),
		CompetitorID:   competitor.ID,
		CompetitorName: competitor.Name,
		Message:        message,
		Response:       answer,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.backend.SaveChatExchange(ctx, exchange); err != nil {
		logrus.Errorf("Failed to persist chat exchange %s: %v", exchange.ID, err)
		return nil, fmt.Errorf("failed to save chat exchange: %w", err)
	}

	return &AnalysisResponse{Response: answer, CompetitorName: competitor.Name}, nil
}

// ExportHistory groups all stored exchanges per competitor, busiest first
func (s *Service) ExportHistory(ctx context.Context) (*HistoryExport, error) {
	exchanges, err := s.backend.ListChatExchanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat exchanges: %w", err)
	}

	groups := make(map[string]*CompetitorHistory)
	for _, ex := range exchanges {
		g, ok := groups[ex.CompetitorID]
		if !ok {
			g = &CompetitorHistory{CompetitorID: ex.CompetitorID, CompetitorName: ex.CompetitorName}
			groups[ex.CompetitorID] = g
		}
		g.Exchanges = append(g.Exchanges, ex)
		g.Count++
	}

	export := &HistoryExport{
		ExportedAt:     s.now().UTC(),
		TotalExchanges: len(exchanges),
		Competitors:    make([]CompetitorHistory, 0, len(groups)),
	}
	for _, g := range groups {
		sort.SliceStable(g.Exchanges, func(i, j int) bool {
			return g.Exchanges[i].CreatedAt.Before(g.Exchanges[j].CreatedAt)
		})
		export.Competitors = append(export.Competitors, *g)
	}
	sort.Slice(export.Competitors, func(i, j int) bool {
		a, b := export.Competitors[i], export.Competitors[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.CompetitorID < b.CompetitorID
	})

	return export, nil
}
