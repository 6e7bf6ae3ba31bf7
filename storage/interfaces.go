package storage

import (
	"context"

	"airbnb-pricer/dataset"
)

// TableSource is the interface any raw listings backend must satisfy.
type TableSource interface {
	Load(ctx context.Context) (*dataset.Table, error)
}

// TableWriter is the interface for persisting encoded feature tables.
// Successive writes append rows; all tables must share one column layout.
type TableWriter interface {
	Write(ctx context.Context, t *dataset.Table) error
	Close() error
}
