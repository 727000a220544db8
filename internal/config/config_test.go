package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://backend.example.com/")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendREST, cfg.BackendMode)
	assert.Equal(t, "https://backend.example.com", cfg.BackendURL)
	assert.Equal(t, "30d", cfg.DefaultTimeRange)
	assert.Equal(t, "weekly", cfg.ReportSchedule)
	assert.Equal(t, 50, cfg.RecentMentionsLimit)
	assert.True(t, cfg.RequireAuth)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "rest mode without url",
			env:     map[string]string{"BACKEND_MODE": "rest"},
			wantErr: "BACKEND_URL",
		},
		{
			name:    "postgres mode without dsn",
			env:     map[string]string{"BACKEND_MODE": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown mode",
			env:     map[string]string{"BACKEND_MODE": "graphql"},
			wantErr: "BACKEND_MODE",
		},
		{
			name:    "bad range",
			env:     map[string]string{"BACKEND_URL": "http://x", "DEFAULT_TIME_RANGE": "1y"},
			wantErr: "DEFAULT_TIME_RANGE",
		},
		{
			name:    "bad schedule",
			env:     map[string]string{"BACKEND_URL": "http://x", "REPORT_SCHEDULE": "hourly"},
			wantErr: "REPORT_SCHEDULE",
		},
		{
			name:    "postgres with auth but no token secret",
			env:     map[string]string{"BACKEND_MODE": "postgres", "DATABASE_URL": "postgres://localhost/db", "JWT_SECRET": ""},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "negative retention",
			env:     map[string]string{"BACKEND_URL": "http://x", "REPORT_RETENTION": "-1"},
			wantErr: "REPORT_RETENTION",
		},
		{
			name:    "email without smtp",
			env:     map[string]string{"BACKEND_URL": "http://x", "NOTIFICATION_EMAIL": "team@example.com"},
			wantErr: "SMTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BACKEND_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_PostgresMode(t *testing.T) {
	t.Setenv("BACKEND_MODE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/visibility?sslmode=disable")
	t.Setenv("TEAMS_WEBHOOK_URL", "https://teams.example.com/hook")
	t.Setenv("REQUIRE_AUTH", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.BackendMode)
	assert.False(t, cfg.RequireAuth)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_PostgresModeWithAuth(t *testing.T) {
	t.Setenv("BACKEND_MODE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/visibility?sslmode=disable")
	t.Setenv("JWT_SECRET", "signing-key")
	t.Setenv("REPORT_RETENTION", "12")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, "signing-key", cfg.JWTSecret)
	assert.Equal(t, 12, cfg.ReportRetention)
}
