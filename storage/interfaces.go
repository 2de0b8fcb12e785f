package storage

import (
	"context"
	"errors"

	"pledge-insights/models"
)

var (
	// ErrMissingHeaders is returned when an input file lacks a required column.
	ErrMissingHeaders = errors.New("missing required headers")
	// ErrSnapshotNotFound is returned by Load for an unknown snapshot id.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// RecordReader loads unvalidated household rows from a file.
type RecordReader interface {
	Read(path string) ([]models.ImportRow, error)
}

// EnrichedWriter is the interface any enriched-record export must satisfy.
type EnrichedWriter interface {
	Write(records []models.EnrichedRecord) error
	Close() error
}

// SnapshotRepository persists dated copies of a raw dataset.
type SnapshotRepository interface {
	Save(ctx context.Context, s *models.Snapshot) error
	Load(ctx context.Context, id string) (*models.Snapshot, error)
	List(ctx context.Context) ([]models.Snapshot, error)
	Close() error
}
