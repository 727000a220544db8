package backend

import (
	"fmt"

	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/sirupsen/logrus"
)

// Open connects to the backend selected by cfg.BackendMode. The returned
// close function releases any pooled connections.
func Open(cfg *config.Config) (Backend, func(), error) {
	switch cfg.BackendMode {
	case config.BackendPostgres:
		client, err := NewPostgresClient(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logrus.Info("Using direct Postgres backend")
		return client, func() {
			if err := client.Close(); err != nil {
				logrus.Warnf("Failed to close database: %v", err)
			}
		}, nil
	case config.BackendREST:
		logrus.Infof("Using REST backend at %s", cfg.BackendURL)
		return NewRESTClient(cfg.BackendURL, cfg.BackendAPIKey), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend mode %q", cfg.BackendMode)
	}
}
