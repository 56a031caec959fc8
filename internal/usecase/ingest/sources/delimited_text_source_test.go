package sources_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comfforts/logger"

	"github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest/sources"
)

func testContext(t *testing.T) context.Context {
	l := logger.GetSlogLogger()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)
	return logger.WithLogger(ctx, l)
}

func Test_DelimitedTextConfig_BuildIterator_Next(t *testing.T) {
	ctx := testContext(t)

	data := "title, duration ,score\n" +
		"Algorithms, 10 weeks ,95\n" +
		"\n" +
		"Databases,12 weeks,88.5\n"

	cfg := sources.DelimitedTextConfig{Reader: strings.NewReader(data)}
	it, err := cfg.BuildIterator(ctx)
	require.NoError(t, err, "error building delimited text iterator")
	defer func() {
		require.NoError(t, it.Close(ctx), "error closing delimited text iterator")
	}()

	row, err := it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, row.Index)
	require.Equal(t, "Algorithms", row.Values["title"])
	require.Equal(t, "10 weeks", row.Values["duration"], "values are trimmed")
	require.Equal(t, int64(95), row.Values["score"], "numeric values are cast")

	// Blank line is skipped, not emitted.
	row, err = it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, row.Index)
	require.Equal(t, "Databases", row.Values["title"])
	require.Equal(t, 88.5, row.Values["score"])

	_, err = it.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func Test_DelimitedTextConfig_CustomDelimiter(t *testing.T) {
	ctx := testContext(t)

	data := "name|email\nDr. Kay|kay@uni.edu\n"
	cfg := sources.DelimitedTextConfig{Reader: strings.NewReader(data), Delimiter: '|'}
	it, err := cfg.BuildIterator(ctx)
	require.NoError(t, err, "error building pipe-delimited iterator")
	defer it.Close(ctx)

	row, err := it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "Dr. Kay", row.Values["name"])
	require.Equal(t, "kay@uni.edu", row.Values["email"])
}

func Test_DelimitedTextConfig_MissingHeader(t *testing.T) {
	ctx := testContext(t)

	cases := []struct {
		name string
		data string
	}{
		{"empty input", ""},
		{"blank lines only", "\n\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := sources.DelimitedTextConfig{Reader: strings.NewReader(c.data)}
			_, err := cfg.BuildIterator(ctx)
			require.Error(t, err)
			require.True(t, ingest.IsStructuralParseError(err), "missing header is a structural failure")
			require.ErrorIs(t, err, sources.ErrSourceEmptyHeader)
		})
	}
}

func Test_DelimitedTextConfig_UnparseableRow(t *testing.T) {
	ctx := testContext(t)

	// Second data line carries an unterminated quote.
	data := "title,instructor\n" +
		"Algorithms,Dr. Kay\n" +
		"\"Databases,Dr. Lee\n"

	cfg := sources.DelimitedTextConfig{Reader: strings.NewReader(data)}
	it, err := cfg.BuildIterator(ctx)
	require.NoError(t, err, "error building delimited text iterator")
	defer it.Close(ctx)

	row, err := it.Next(ctx)
	require.NoError(t, err)
	require.Empty(t, row.Err)

	// The malformed line is emitted as a row carrying a parse error,
	// not as an iterator error.
	row, err = it.Next(ctx)
	require.NoError(t, err, "a malformed row must not abort the pass")
	require.Equal(t, 2, row.Index)
	require.NotEmpty(t, row.Err)
}

func Test_DelimitedTextConfig_NilReader(t *testing.T) {
	ctx := testContext(t)

	_, err := sources.DelimitedTextConfig{}.BuildIterator(ctx)
	require.ErrorIs(t, err, sources.ErrDelimitedReaderRequired)
}
