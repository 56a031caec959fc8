package sources

import (
	"context"
	"io"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
)

const RecordListSource = "record-list-source"

// Record list source wraps a caller-supplied list of maps directly, e.g.
// the manual-entry submission form. No parsing.
type recordListSource struct {
	records []map[string]any
	pos     int
}

// Name of the source.
func (s *recordListSource) Name() string { return RecordListSource }

// Close marks the iterator exhausted.
func (s *recordListSource) Close(ctx context.Context) error {
	s.pos = len(s.records)
	return nil
}

// EstimateRows reports the list length.
func (s *recordListSource) EstimateRows() int { return len(s.records) }

// Next returns the next list element as a raw row.
func (s *recordListSource) Next(ctx context.Context) (*ingest.RawRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++

	return &ingest.RawRow{Index: s.pos, Values: rec}, nil
}

// Record list source config.
type RecordListConfig struct {
	Records []map[string]any
}

// Name of the source.
func (c RecordListConfig) Name() string { return RecordListSource }

// EstimateRows reports the list length, known before any iteration.
func (c RecordListConfig) EstimateRows() int { return len(c.Records) }

// BuildIterator wraps the record list. A nil list is a valid, empty source.
func (c RecordListConfig) BuildIterator(ctx context.Context) (RowIterator, error) {
	return &recordListSource{records: c.Records}, nil
}
