package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers visibility reports to Teams and email
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendReport sends a report via every configured channel
func (s *Service) SendReport(report *models.Report) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(report); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent report to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(report *models.Report) error {
	message := BuildTeamsMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func reportTitle(report *models.Report) string {
	name := report.BrandName
	if name == "" {
		name = "All brands"
	}
	return fmt.Sprintf("AI Visibility Report - %s (%s)", name, titleCase(report.Period))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// BuildTeamsMessage renders the report as a message card
func BuildTeamsMessage(report *models.Report) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   reportTitle(report),
		Text: fmt.Sprintf("%d mentions between %s and %s",
			report.TotalMentions, report.Selection.Range.Start, report.Selection.Range.End),
	}

	facts := []TeamsFact{
		{Name: "Total Mentions", Value: fmt.Sprintf("%d", report.TotalMentions)},
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{Name: "Open Recommendations", Value: fmt.Sprintf("%d", report.Recommendations.Open())},
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.Ranking) > 0 {
		var lines []string
		for i, entry := range report.Ranking {
			if i >= 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. **%s** - %d%% visibility, position %s, sentiment %s",
				entry.Rank, entry.Name, entry.Visibility, entry.PositionLabel(), entry.SentimentLabel()))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Ranking",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	if len(report.TopDomains) > 0 {
		var domains []string
		for _, d := range report.TopDomains {
			domains = append(domains, fmt.Sprintf("%s (%d)", d.Domain, d.Count))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Cited Domains",
			ActivityText:  strings.Join(domains, ", "),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("%s - %d mentions", reportTitle(report), report.TotalMentions)

	htmlBody, err := BuildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", BuildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{title .}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #4F46E5; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #e5e7eb; }
        .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 5px; margin-right: 6px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{title .}}</h1>
        <p>{{.Selection.Range.Start}} to {{.Selection.Range.End}}, generated {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <p><strong>Total Mentions:</strong> {{.TotalMentions}}</p>
        <p><strong>Open Recommendations:</strong> {{.Recommendations.Open}}</p>
    </div>

    {{if .Ranking}}
    <h2>Ranking</h2>
    <table>
        <tr><th>#</th><th>Brand</th><th>Visibility</th><th>Avg Position</th><th>Sentiment</th></tr>
        {{range .Ranking}}
        <tr>
            <td>{{.Rank}}</td>
            <td><span class="swatch" style="background-color: {{.Color}}"></span>{{.Name}}</td>
            <td>{{.Visibility}}%</td>
            <td>{{.PositionLabel}}</td>
            <td>{{.SentimentLabel}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    {{if .TopDomains}}
    <h2>Top Cited Domains</h2>
    <ul>
    {{range .TopDomains}}<li>{{.Domain}} ({{.Count}})</li>{{end}}
    </ul>
    {{end}}

    <hr>
    <p><small>This report was generated automatically by the visibility dashboard.</small></p>
</body>
</html>
`

// BuildEmailHTML renders the HTML email body
func BuildEmailHTML(report *models.Report) (string, error) {
	t, err := template.New("email").Funcs(template.FuncMap{
		"title": reportTitle,
	}).Parse(emailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// BuildEmailText renders the plain-text email body
func BuildEmailText(report *models.Report) string {
	var text strings.Builder

	text.WriteString(reportTitle(report) + "\n")
	text.WriteString(fmt.Sprintf("Range: %s to %s\n", report.Selection.Range.Start, report.Selection.Range.End))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Mentions: %d\n", report.TotalMentions))
	text.WriteString(fmt.Sprintf("Open Recommendations: %d\n", report.Recommendations.Open()))

	if len(report.Ranking) > 0 {
		text.WriteString("\nRANKING\n")
		text.WriteString("=======\n")
		for _, entry := range report.Ranking {
			text.WriteString(fmt.Sprintf("%2d. %-24s %3d%%  position %-4s sentiment %s\n",
				entry.Rank, entry.Name, entry.Visibility, entry.PositionLabel(), entry.SentimentLabel()))
		}
	}

	if len(report.TopDomains) > 0 {
		text.WriteString("\nTOP CITED DOMAINS\n")
		text.WriteString("=================\n")
		for _, d := range report.TopDomains {
			text.WriteString(fmt.Sprintf("%s (%d)\n", d.Domain, d.Count))
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the visibility dashboard.\n")

	return text.String()
}
