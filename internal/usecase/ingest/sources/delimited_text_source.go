package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/pkg/utils/strutil"
)

const DelimitedTextSource = "delimited-text-source"

const (
	ERR_DELIMITED_READER_REQUIRED = "delimited text: reader is required"
)

var ErrDelimitedReaderRequired = errors.New(ERR_DELIMITED_READER_REQUIRED)

// Delimited text source. Streams line-by-line; the first line defines the
// column headers.
type delimitedTextSource struct {
	reader  *csv.Reader
	closer  io.Closer
	headers []string
	index   int
	done    bool
}

// Name of the source.
func (s *delimitedTextSource) Name() string { return DelimitedTextSource }

// Close closes the underlying reader when it is closeable.
func (s *delimitedTextSource) Close(ctx context.Context) error {
	s.done = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Next returns the next data row. Empty lines are skipped, values are
// trimmed and numeric-looking values are cast. A line the CSV reader cannot
// parse is emitted as a row carrying a parse error; it never aborts the pass.
func (s *delimitedTextSource) Next(ctx context.Context) (*ingest.RawRow, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		// allow cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := s.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				return nil, io.EOF
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				s.index++
				return &ingest.RawRow{
					Index: s.index,
					Err:   fmt.Sprintf("unreadable row: %v", err),
				}, nil
			}
			s.done = true
			return nil, fmt.Errorf("delimited text: read: %w", err)
		}

		if isBlankRecord(rec) {
			continue
		}

		values := make(map[string]any, len(s.headers))
		for i, h := range s.headers {
			if i >= len(rec) {
				break
			}
			values[h] = strutil.CastNumeric(strings.TrimSpace(rec[i]))
		}

		s.index++
		return &ingest.RawRow{Index: s.index, Values: values}, nil
	}
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Delimited text source config.
type DelimitedTextConfig struct {
	Reader    io.Reader
	Delimiter rune // defaults to ','
}

// Name of the source.
func (c DelimitedTextConfig) Name() string { return DelimitedTextSource }

// BuildIterator reads and validates the header line, then returns a
// streaming iterator over the remaining lines.
func (c DelimitedTextConfig) BuildIterator(ctx context.Context) (RowIterator, error) {
	if c.Reader == nil {
		return nil, ErrDelimitedReaderRequired
	}

	delim := c.Delimiter
	if delim == 0 {
		delim = ','
	}

	r := csv.NewReader(c.Reader)
	r.Comma = delim
	r.FieldsPerRecord = -1

	headers, err := readHeader(r)
	if err != nil {
		return nil, &ingest.StructuralParseError{Stage: "header", Err: err}
	}

	var closer io.Closer
	if cl, ok := c.Reader.(io.Closer); ok {
		closer = cl
	}

	return &delimitedTextSource{
		reader:  r,
		closer:  closer,
		headers: headers,
	}, nil
}

// readHeader consumes the first non-blank line and validates it carries at
// least one named column.
func readHeader(r *csv.Reader) ([]string, error) {
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrSourceEmptyHeader
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		if isBlankRecord(rec) {
			continue
		}

		headers := make([]string, len(rec))
		named := 0
		for i, h := range rec {
			headers[i] = strings.TrimSpace(h)
			if headers[i] != "" {
				named++
			}
		}
		if named == 0 {
			return nil, ErrSourceEmptyHeader
		}
		return headers, nil
	}
}
