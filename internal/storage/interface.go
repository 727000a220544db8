package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Retrieve when no snapshot has the given name
var ErrNotFound = errors.New("snapshot not found")

// StorageInterface defines the contract for report and export snapshots.
// Names are slash-separated, e.g. "reports/weekly-2024-01-08-09-00-00.json".
type StorageInterface interface {
	Store(ctx context.Context, name string, data []byte) error
	Retrieve(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}
