package sources_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest/sources"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err, "error building cell coordinates")
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row), "error setting sheet row")
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err, "error serializing workbook")
	return buf.Bytes()
}

func Test_SpreadsheetConfig_BuildIterator_Next(t *testing.T) {
	ctx := testContext(t)

	data := buildWorkbook(t, [][]any{
		{"Name", "Email", "University"},
		{"Dr. Kay", "kay@uni.edu", "State University"},
		{"", "", ""},
		{"Dr. Lee", "lee@uni.edu", "State University"},
	})

	cfg := sources.SpreadsheetConfig{Data: data}
	it, err := cfg.BuildIterator(ctx)
	require.NoError(t, err, "error building spreadsheet iterator")
	defer it.Close(ctx)

	row, err := it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, row.Index)
	require.Equal(t, "Dr. Kay", row.Values["Name"])
	require.Equal(t, "kay@uni.edu", row.Values["Email"])

	// Blank sheet row is skipped.
	row, err = it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, row.Index)
	require.Equal(t, "Dr. Lee", row.Values["Name"])

	_, err = it.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func Test_SpreadsheetConfig_ShortRowsPadded(t *testing.T) {
	ctx := testContext(t)

	data := buildWorkbook(t, [][]any{
		{"title", "instructor", "duration"},
		{"Algorithms", "Dr. Kay"},
	})

	it, err := sources.SpreadsheetConfig{Data: data}.BuildIterator(ctx)
	require.NoError(t, err, "error building spreadsheet iterator")
	defer it.Close(ctx)

	row, err := it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "", row.Values["duration"], "missing trailing cell reads as empty")
}

func Test_SpreadsheetConfig_StructuralFailures(t *testing.T) {
	ctx := testContext(t)

	cases := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"corrupt workbook", []byte("not a workbook")},
		{"header only blanks", buildWorkbook(t, [][]any{{"", ""}})},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := sources.SpreadsheetConfig{Data: c.data}.BuildIterator(ctx)
			require.Error(t, err)
			require.True(t, ingest.IsStructuralParseError(err), "unreadable workbook is a structural failure")
		})
	}
}
