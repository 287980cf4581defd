package atlas

import (
	"context"
	"time"

	"github.com/i474232898/participant-map/internal/dataset"
)

// Source abstracts where the dataset comes from.
type Source interface {
	Name() string
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Store is the contract the in-memory snapshot store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest() (Snapshot, error)
	GetRange(from, to time.Time) ([]Snapshot, error)
}

// FileSource reads the dataset from a JSON file on disk.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string {
	return f.Path
}

func (f FileSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dataset.Load(f.Path)
}
