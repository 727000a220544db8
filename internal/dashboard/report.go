package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/aggregation"
	"github.com/brandradar/visibility-dashboard/internal/export"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// reportRange covers the last completed day ("daily") or the seven days ending
// on it ("weekly")
func reportRange(period string, now time.Time) models.TimeRange {
	end := now.UTC().AddDate(0, 0, -1)
	start := end
	if period == "weekly" {
		start = end.AddDate(0, 0, -6)
	}
	return models.TimeRange{
		Preset: period,
		Start:  start.Format(models.DayLayout),
		End:    end.Format(models.DayLayout),
	}
}

// GenerateReport builds a visibility report for sel
func (s *Service) GenerateReport(ctx context.Context, sel models.FilterSelection, period string) (*models.Report, error) {
	rows, dir, err := s.dailyRows(ctx, sel)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:          uuid.New().String(),
		GeneratedAt: s.now().UTC(),
		Period:      period,
		Selection:   sel,
		Ranking:     aggregation.BuildRanking(rows, dir),
		Share:       aggregation.BuildPie(rows, sel.BrandID, dir),
	}
	if !sel.AllBrands() {
		report.BrandName = dir.Name(sel.BrandID)
	}

	for _, row := range rows {
		if sel.AllBrands() || row.EntityID == sel.BrandID {
			report.TotalMentions += row.Mentions
		}
	}

	if report.TopDomains, err = s.TopDomains(ctx, sel); err != nil {
		return nil, err
	}

	recs, err := s.Recommendations(ctx, sel.BrandID, "")
	if err != nil {
		return nil, err
	}
	report.Recommendations = aggregation.SummarizeRecommendations(recs)

	if report.RecentMentions, err = s.RecentMentions(ctx, sel, s.config.RecentMentionsLimit); err != nil {
		return nil, err
	}

	return report, nil
}

// RunReport generates the scheduled report, stores its snapshots and sends it
func (s *Service) RunReport(ctx context.Context) (*models.Report, error) {
	start := time.Now()
	period := s.config.ReportSchedule
	logrus.Infof("Starting %s report run", period)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	sel := models.FilterSelection{
		BrandID: s.config.ReportBrandID,
		Range:   reportRange(period, s.now()),
	}

	report, err := s.GenerateReport(ctx, sel, period)
	if err != nil {
		s.recordRun(nil, time.Since(start), err)
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	logrus.Infof("Generated report %s with %d mentions across %d entities", report.ID, report.TotalMentions, len(report.Ranking))

	var runErr error
	if err := s.storeSnapshots(ctx, report); err != nil {
		logrus.Errorf("Failed to store report snapshots: %v", err)
		runErr = err
	} else if s.storage != nil && s.config.ReportRetention > 0 {
		if _, err := s.PruneReports(ctx, s.config.ReportRetention); err != nil {
			logrus.Warnf("Failed to prune old reports: %v", err)
		}
	}

	if s.notificationService != nil {
		if err := s.notificationService.SendReport(report); err != nil {
			logrus.Errorf("Failed to send report: %v", err)
			runErr = err
		}
	}

	s.recordRun(report, time.Since(start), runErr)
	logrus.Infof("Report run completed in %v", time.Since(start))
	return report, runErr
}

func (s *Service) storeSnapshots(ctx context.Context, report *models.Report) error {
	if s.storage == nil {
		return nil
	}

	data, err := export.JSON(report)
	if err != nil {
		return err
	}
	name := ReportSnapshotName(report, "json")
	if err := s.storage.Store(ctx, name, data); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	if len(report.RecentMentions) == 0 {
		return nil
	}
	csvName := exportPrefix + export.Filename("mentions", "csv", report.GeneratedAt)
	if err := s.storage.Store(ctx, csvName, []byte(export.MentionsCSV(report.RecentMentions))); err != nil {
		return fmt.Errorf("failed to store mentions export: %w", err)
	}
	return nil
}

func (s *Service) recordRun(report *models.Report, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = s.now()
	s.metrics.LastRunDuration = duration.String()
	if err != nil {
		s.metrics.ErrorCount++
		s.metrics.LastError = err.Error()
	} else {
		s.metrics.LastError = ""
	}
	if report != nil {
		s.metrics.ReportsGenerated++
		s.metrics.LastReportID = report.ID
		s.metrics.TotalMentions = report.TotalMentions
	}
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
