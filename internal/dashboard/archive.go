package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/export"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	reportPrefix     = "reports/"
	exportPrefix     = "exports/"
	snapshotTimeForm = "2006-01-02-15-04-05"
)

// ErrNoStorage is returned by archive operations when no snapshot storage is configured
var ErrNoStorage = errors.New("report storage not configured")

// ErrInvalidReportName is returned for names outside the report archive
var ErrInvalidReportName = errors.New("invalid report name")

// StoredReport describes one archived report snapshot
type StoredReport struct {
	Name        string    `json:"name"`
	Period      string    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ReportSnapshotName is the archive name of a report, e.g. "reports/weekly-2024-01-08-09-00-00.json"
func ReportSnapshotName(report *models.Report, ext string) string {
	return fmt.Sprintf("%s%s-%s.%s", reportPrefix, report.Period, report.GeneratedAt.UTC().Format(snapshotTimeForm), ext)
}

// parseReportName reverses ReportSnapshotName for JSON snapshots
func parseReportName(name string) (StoredReport, bool) {
	base := strings.TrimPrefix(name, reportPrefix)
	if base == name || path.Ext(base) != ".json" || strings.Contains(base, "/") {
		return StoredReport{}, false
	}
	base = strings.TrimSuffix(base, ".json")

	period, stamp, ok := strings.Cut(base, "-")
	if !ok {
		return StoredReport{}, false
	}
	at, err := time.Parse(snapshotTimeForm, stamp)
	if err != nil {
		return StoredReport{}, false
	}
	return StoredReport{Name: name, Period: period, GeneratedAt: at}, true
}

// ListReports returns archived report snapshots, newest first
func (s *Service) ListReports(ctx context.Context) ([]StoredReport, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}

	names, err := s.storage.List(ctx, reportPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := []StoredReport{}
	for _, name := range names {
		if r, ok := parseReportName(name); ok {
			reports = append(reports, r)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].GeneratedAt.Equal(reports[j].GeneratedAt) {
			return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
		}
		return reports[i].Name < reports[j].Name
	})
	return reports, nil
}

// GetReport loads an archived report. file is the base name, e.g. "weekly-2024-01-08-09-00-00.json".
func (s *Service) GetReport(ctx context.Context, file string) (*models.Report, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}

	name := reportPrefix + file
	if _, ok := parseReportName(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReportName, file)
	}

	data, err := s.storage.Retrieve(ctx, name)
	if err != nil {
		return nil, err
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", name, err)
	}
	return &report, nil
}

// PruneReports deletes all but the newest keep report snapshots, together
// with the mentions export of each day no kept report shares. It returns
// how many reports were deleted.
func (s *Service) PruneReports(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	reports, err := s.ListReports(ctx)
	if err != nil {
		return 0, err
	}
	if len(reports) <= keep {
		return 0, nil
	}

	keptDays := make(map[string]bool)
	for _, r := range reports[:keep] {
		keptDays[r.GeneratedAt.Format(models.DayLayout)] = true
	}

	deleted := 0
	for _, r := range reports[keep:] {
		if err := s.storage.Delete(ctx, r.Name); err != nil {
			return deleted, fmt.Errorf("failed to prune %s: %w", r.Name, err)
		}
		deleted++

		day := r.GeneratedAt.Format(models.DayLayout)
		if keptDays[day] {
			continue
		}
		keptDays[day] = true
		if err := s.storage.Delete(ctx, exportPrefix+export.Filename("mentions", "csv", r.GeneratedAt)); err != nil {
			return deleted, fmt.Errorf("failed to prune export for %s: %w", day, err)
		}
	}

	logrus.Infof("Pruned %d reports, keeping the newest %d", deleted, keep)
	return deleted, nil
}
