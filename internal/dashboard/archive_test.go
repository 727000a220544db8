package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/brandradar/visibility-dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseReportName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		ok     bool
		period string
	}{
		{name: "weekly json", input: "reports/weekly-2024-01-08-09-00-00.json", ok: true, period: "weekly"},
		{name: "daily json", input: "reports/daily-2024-01-07-09-30-00.json", ok: true, period: "daily"},
		{name: "html rendition", input: "reports/weekly-2024-01-08-09-00-00.html"},
		{name: "mentions export", input: "exports/mentions-2024-01-08.csv"},
		{name: "nested path", input: "reports/old/weekly-2024-01-08-09-00-00.json"},
		{name: "bad timestamp", input: "reports/weekly-yesterday.json"},
		{name: "escape attempt", input: "reports/../secrets.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseReportName(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.period, got.Period)
				assert.Equal(t, tt.input, got.Name)
			}
		})
	}
}

func TestReportSnapshotName(t *testing.T) {
	report := &models.Report{Period: "weekly", GeneratedAt: time.Date(2024, 1, 8, 9, 5, 0, 0, time.UTC)}

	name := ReportSnapshotName(report, "json")

	assert.Equal(t, "reports/weekly-2024-01-08-09-05-00.json", name)
	parsed, ok := parseReportName(name)
	require.True(t, ok)
	assert.True(t, report.GeneratedAt.Equal(parsed.GeneratedAt))
}

func TestService_ListReports(t *testing.T) {
	store := &MockStorage{}
	svc := newTestService(t, newFake(), store, nil)
	store.On("List", mock.Anything, "reports/").Return([]string{
		"reports/daily-2024-01-07-09-00-00.json",
		"reports/weekly-2024-01-08-09-00-00.html",
		"reports/weekly-2024-01-08-09-00-00.json",
	}, nil)

	reports, err := svc.ListReports(context.Background())

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "reports/weekly-2024-01-08-09-00-00.json", reports[0].Name)
	assert.Equal(t, "daily", reports[1].Period)
	store.AssertExpectations(t)
}

func TestService_ArchiveWithoutStorage(t *testing.T) {
	svc := newTestService(t, newFake(), nil, nil)

	_, err := svc.ListReports(context.Background())
	assert.ErrorIs(t, err, ErrNoStorage)

	_, err = svc.GetReport(context.Background(), "weekly-2024-01-08-09-00-00.json")
	assert.ErrorIs(t, err, ErrNoStorage)
}

func TestService_GetReport(t *testing.T) {
	store := &MockStorage{}
	svc := newTestService(t, newFake(), store, nil)

	data, err := json.Marshal(models.Report{ID: "r-1", Period: "weekly", TotalMentions: 7})
	require.NoError(t, err)
	store.On("Retrieve", mock.Anything, "reports/weekly-2024-01-08-09-00-00.json").Return(data, nil)
	store.On("Retrieve", mock.Anything, "reports/weekly-2024-01-01-09-00-00.json").
		Return([]byte(nil), storage.ErrNotFound)

	report, err := svc.GetReport(context.Background(), "weekly-2024-01-08-09-00-00.json")
	require.NoError(t, err)
	assert.Equal(t, "r-1", report.ID)
	assert.Equal(t, 7, report.TotalMentions)

	_, err = svc.GetReport(context.Background(), "weekly-2024-01-01-09-00-00.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.GetReport(context.Background(), "../config.json")
	assert.ErrorIs(t, err, ErrInvalidReportName)
	store.AssertExpectations(t)
}

func TestService_PruneReports(t *testing.T) {
	store := &MockStorage{}
	svc := newTestService(t, newFake(), store, nil)
	store.On("List", mock.Anything, "reports/").Return([]string{
		"reports/weekly-2023-12-25-09-00-00.json",
		"reports/weekly-2024-01-01-09-00-00.json",
		"reports/daily-2024-01-08-08-00-00.json",
		"reports/weekly-2024-01-08-09-00-00.json",
		"reports/weekly-2024-01-08-09-00-00.html",
	}, nil)
	store.On("Delete", mock.Anything, "reports/weekly-2024-01-01-09-00-00.json").Return(nil)
	store.On("Delete", mock.Anything, "exports/mentions-2024-01-01.csv").Return(nil)
	store.On("Delete", mock.Anything, "reports/weekly-2023-12-25-09-00-00.json").Return(nil)
	store.On("Delete", mock.Anything, "exports/mentions-2023-12-25.csv").Return(nil)

	deleted, err := svc.PruneReports(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete", mock.Anything, "exports/mentions-2024-01-08.csv")
}

func TestService_PruneReportsStopsOnError(t *testing.T) {
	store := &MockStorage{}
	svc := newTestService(t, newFake(), store, nil)
	store.On("List", mock.Anything, "reports/").Return([]string{
		"reports/weekly-2024-01-01-09-00-00.json",
		"reports/weekly-2024-01-08-09-00-00.json",
	}, nil)
	store.On("Delete", mock.Anything, "reports/weekly-2024-01-01-09-00-00.json").Return(errors.New("forbidden"))

	deleted, err := svc.PruneReports(context.Background(), 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
	assert.Zero(t, deleted)
}

func TestService_PruneReportsKeepAll(t *testing.T) {
	store := &MockStorage{}
	svc := newTestService(t, newFake(), store, nil)

	deleted, err := svc.PruneReports(context.Background(), 0)

	require.NoError(t, err)
	assert.Zero(t, deleted)
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestService_RunReportAppliesRetention(t *testing.T) {
	store := &MockStorage{}
	svc := newTestService(t, newFake(), store, nil)
	svc.config.ReportRetention = 1

	store.On("Store", mock.Anything, "reports/weekly-2024-01-08-10-00-00.json", mock.Anything).Return(nil)
	store.On("Store", mock.Anything, "exports/mentions-2024-01-08.csv", mock.Anything).Return(nil)
	store.On("List", mock.Anything, "reports/").Return([]string{
		"reports/weekly-2024-01-01-10-00-00.json",
		"reports/weekly-2024-01-08-10-00-00.json",
	}, nil)
	store.On("Delete", mock.Anything, "reports/weekly-2024-01-01-10-00-00.json").Return(nil)
	store.On("Delete", mock.Anything, "exports/mentions-2024-01-01.csv").Return(nil)

	_, err := svc.RunReport(context.Background())

	require.NoError(t, err)
	store.AssertExpectations(t)
}
