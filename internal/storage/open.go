package storage

import (
	"context"
	"path"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/sirupsen/logrus"
)

// Open picks Azure Blob Storage when an account is configured, then a local
// snapshot directory. It returns nil when neither is set.
func Open(cfg *config.Config) (StorageInterface, error) {
	switch {
	case cfg.StorageAccount != "":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		azure, err := NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			return nil, err
		}
		return azure, nil
	case cfg.SnapshotDir != "":
		files, err := NewFileStorage(cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
		return files, nil
	default:
		logrus.Info("No snapshot storage configured")
		return nil, nil
	}
}

// contentType maps a snapshot name to the MIME type it is served with
func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
