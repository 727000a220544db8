package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// EscapeField quotes a CSV field when it contains a comma, quote or line break,
// doubling any embedded quotes
func EscapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// CSV renders a header and rows, one record per line
func CSV(header []string, rows [][]string) string {
	var b strings.Builder
	writeRecord(&b, header)
	for _, row := range rows {
		writeRecord(&b, row)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeField(f))
	}
	b.WriteByte('\n')
}

// MentionsCSV renders the recent-mentions table
func MentionsCSV(mentions []models.RecentMention) string {
	header := []string{"Date", "Brand", "Model", "Prompt", "Position", "Sentiment", "Sentence"}
	rows := make([][]string, 0, len(mentions))
	for _, m := range mentions {
		position := ""
		if m.Position != nil {
			position = strconv.Itoa(*m.Position)
		}
		date := m.Day
		if date == "" && !m.CreatedAt.IsZero() {
			date = m.CreatedAt.UTC().Format(models.DayLayout)
		}
		rows = append(rows, []string{
			date, m.EntityName, m.ModelName, m.PromptText, position, m.Sentiment, m.Sentence,
		})
	}
	return CSV(header, rows)
}

// RankingCSV renders the ranking table; missing averages become an em-dash
func RankingCSV(entries []models.RankingEntry) string {
	header := []string{"Rank", "Brand", "Mentions", "Visibility %", "Avg Position", "Sentiment"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Name,
			strconv.Itoa(e.Mentions),
			strconv.Itoa(e.Visibility),
			e.PositionLabel(),
			e.SentimentLabel(),
		})
	}
	return CSV(header, rows)
}

// JSON pretty-prints v with two-space indentation and a trailing newline
func JSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return append(data, '\n'), nil
}

// Filename names a download such as "mentions-2024-01-31.csv"
func Filename(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", kind, now.UTC().Format(models.DayLayout), ext)
}
