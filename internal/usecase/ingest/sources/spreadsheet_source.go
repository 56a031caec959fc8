package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
)

const SpreadsheetSource = "spreadsheet-source"

const (
	ERR_SPREADSHEET_EMPTY_INPUT = "spreadsheet: input bytes are required"
	ERR_SPREADSHEET_NO_SHEET    = "spreadsheet: workbook has no sheets"
)

var (
	ErrSpreadsheetEmptyInput = errors.New(ERR_SPREADSHEET_EMPTY_INPUT)
	ErrSpreadsheetNoSheet    = errors.New(ERR_SPREADSHEET_NO_SHEET)
)

// Spreadsheet source. The first sheet is read in full up front; workbooks
// are bounded in size in practice.
type spreadsheetSource struct {
	headers []string
	rows    [][]string
	pos     int
	index   int
}

// Name of the source.
func (s *spreadsheetSource) Name() string { return SpreadsheetSource }

// Close releases nothing; the workbook is already fully decoded.
func (s *spreadsheetSource) Close(ctx context.Context) error {
	s.pos = len(s.rows)
	return nil
}

// EstimateRows reports the number of data rows in the first sheet.
func (s *spreadsheetSource) EstimateRows() int { return len(s.rows) }

// Next returns the next non-blank sheet row keyed by the header row.
// Short rows are padded empty; extra cells beyond the header are dropped.
func (s *spreadsheetSource) Next(ctx context.Context) (*ingest.RawRow, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.pos >= len(s.rows) {
			return nil, io.EOF
		}
		rec := s.rows[s.pos]
		s.pos++

		if isBlankRecord(rec) {
			continue
		}

		values := make(map[string]any, len(s.headers))
		for i, h := range s.headers {
			if h == "" {
				continue
			}
			var cell string
			if i < len(rec) {
				cell = strings.TrimSpace(rec[i])
			}
			values[h] = cell
		}

		s.index++
		return &ingest.RawRow{Index: s.index, Values: values}, nil
	}
}

// Spreadsheet source config.
type SpreadsheetConfig struct {
	Data []byte // workbook bytes (.xlsx)
}

// Name of the source.
func (c SpreadsheetConfig) Name() string { return SpreadsheetSource }

// BuildIterator decodes the workbook's first sheet and validates its header
// row. A corrupt workbook or a missing header fails the whole batch.
func (c SpreadsheetConfig) BuildIterator(ctx context.Context) (RowIterator, error) {
	if len(c.Data) == 0 {
		return nil, &ingest.StructuralParseError{Stage: "workbook", Err: ErrSpreadsheetEmptyInput}
	}

	f, err := excelize.OpenReader(bytes.NewReader(c.Data))
	if err != nil {
		return nil, &ingest.StructuralParseError{Stage: "workbook", Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ingest.StructuralParseError{Stage: "workbook", Err: ErrSpreadsheetNoSheet}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ingest.StructuralParseError{Stage: "workbook", Err: fmt.Errorf("read sheet %s: %w", sheets[0], err)}
	}

	// Skip leading blank rows ahead of the header.
	start := 0
	for start < len(rows) && isBlankRecord(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil, &ingest.StructuralParseError{Stage: "header", Err: ErrSourceEmptyHeader}
	}

	headers := make([]string, len(rows[start]))
	named := 0
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			named++
		}
	}
	if named == 0 {
		return nil, &ingest.StructuralParseError{Stage: "header", Err: ErrSourceEmptyHeader}
	}

	return &spreadsheetSource{
		headers: headers,
		rows:    rows[start+1:],
	}, nil
}
