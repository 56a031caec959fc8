// Package sources normalizes the importers' input shapes (delimited text,
// spreadsheet workbooks, cloud-stored files, in-memory record lists) into a
// single forward pass of raw rows. The adapter is the only place that knows
// the input format.
package sources

import (
	"context"
	"errors"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
)

const (
	ERR_SOURCE_EMPTY_HEADER = "source: header row is missing or empty"
	ERR_SOURCE_EXHAUSTED    = "source: iterator already exhausted"
)

var (
	ErrSourceEmptyHeader = errors.New(ERR_SOURCE_EMPTY_HEADER)
	ErrSourceExhausted   = errors.New(ERR_SOURCE_EXHAUSTED)
)

// RowIterator is a finite, non-restartable sequence of raw rows.
// Next returns io.EOF once the source is exhausted; re-reading requires a
// fresh BuildIterator.
type RowIterator interface {
	Next(ctx context.Context) (*ingest.RawRow, error)
	Close(ctx context.Context) error
	Name() string
}

// SourceConfig knows how to build a RowIterator for one input shape.
// A structurally unreadable input surfaces as *ingest.StructuralParseError
// from BuildIterator, before any row is emitted.
type SourceConfig interface {
	BuildIterator(ctx context.Context) (RowIterator, error)
	Name() string
}

// RowCountEstimator is implemented by sources that know their row count
// up front; the coordinator uses it to pick sync vs deferred handling.
type RowCountEstimator interface {
	EstimateRows() int
}
