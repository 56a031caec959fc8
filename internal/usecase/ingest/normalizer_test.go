package ingest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest"
)

func Test_Normalize_AliasMatching(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityCourse)
	require.NoError(t, err)

	raw := &domain.RawRow{
		Index: 1,
		Values: map[string]any{
			"Course Title": "Algorithms",
			"TAUGHT_BY":    "Dr. Kay",
			"Details":      "  Intro to algorithms  ",
		},
	}

	rec := ingest.Normalize(raw, schema)
	require.Equal(t, 1, rec.Origin)
	require.Equal(t, "Algorithms", rec.String("title"), "alias match is case and punctuation insensitive")
	require.Equal(t, "Dr. Kay", rec.String("instructor"))
	require.Equal(t, "Intro to algorithms", rec.String("description"), "scalar values are trimmed")
}

func Test_Normalize_ListAndDefault(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityCourse)
	require.NoError(t, err)

	raw := &domain.RawRow{
		Index: 1,
		Values: map[string]any{
			"title":   "Algorithms",
			"content": "arrays; graphs;;trees",
		},
	}

	rec := ingest.Normalize(raw, schema)
	require.Equal(t, []string{"arrays", "graphs", "trees"}, rec.List("content"))
	require.Equal(t, "english", rec.String("language"), "absent field takes its declared default")
}

func Test_Normalize_DateParsing(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityCourse)
	require.NoError(t, err)

	raw := &domain.RawRow{
		Index:  1,
		Values: map[string]any{"start date": "2026-09-01"},
	}
	rec := ingest.Normalize(raw, schema)
	dt, ok := rec.Fields["startDate"].(time.Time)
	require.True(t, ok, "expected startDate to parse as time.Time")
	require.Equal(t, 2026, dt.Year())

	// Unparseable dates stay as the raw string so validation sees them.
	raw = &domain.RawRow{
		Index:  2,
		Values: map[string]any{"start date": "next fall"},
	}
	rec = ingest.Normalize(raw, schema)
	require.Equal(t, "next fall", rec.Fields["startDate"])
}

func Test_Normalize_EmptyValuesAbsent(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityInstructor)
	require.NoError(t, err)

	raw := &domain.RawRow{
		Index: 1,
		Values: map[string]any{
			"name":  "Dr. Kay",
			"email": "   ",
		},
	}

	rec := ingest.Normalize(raw, schema)
	require.True(t, rec.Has("name"))
	require.False(t, rec.Has("email"), "whitespace-only value is treated as absent")
}
