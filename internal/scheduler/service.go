package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReportRunner produces and delivers one scheduled report
type ReportRunner interface {
	RunReport(ctx context.Context) (*models.Report, error)
}

// Service handles scheduling of report runs
type Service struct {
	config *config.Config
	runner ReportRunner
	cron   *cron.Cron
}

// NewService creates a new scheduler service running in the configured time zone
func NewService(cfg *config.Config, runner ReportRunner) (*Service, error) {
	location := time.UTC
	if cfg.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.TimeZone, err)
		}
		location = loc
	}

	return &Service{
		config: cfg,
		runner: runner,
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(location)),
	}, nil
}

// CronExpression returns the seconds-precision schedule for a report period
func CronExpression(schedule string) string {
	switch schedule {
	case "daily":
		// Run daily at 9 AM
		return "0 0 9 * * *"
	default:
		// Run weekly on Monday at 9 AM
		return "0 0 9 * * MON"
	}
}

// Start begins the scheduled report runs
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(CronExpression(s.config.ReportSchedule), s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s report schedule", s.config.ReportSchedule)
	return nil
}

func (s *Service) run() {
	logrus.Info("Starting scheduled report run")
	if _, err := s.runner.RunReport(context.Background()); err != nil {
		logrus.Errorf("Scheduled report run failed: %v", err)
	}
}

// Stop stops the scheduler and waits for a running report to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
