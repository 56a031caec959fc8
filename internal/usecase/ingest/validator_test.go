package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest"
)

func Test_Validate_CollectsAllViolations(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityInstructor)
	require.NoError(t, err)

	rec := &domain.NormalizedRecord{
		Fields: map[string]any{"name": "Dr. Kay"},
	}

	msgs := ingest.Validate(rec, schema.Rules)
	require.Len(t, msgs, 4, "every missing required field is reported")
	require.Contains(t, msgs, "email is required")
	require.Contains(t, msgs, "university is required")
	require.Contains(t, msgs, "department is required")
	require.Contains(t, msgs, "position is required")
}

func Test_Validate_ConditionalAfterUnconditional(t *testing.T) {
	rules := []domain.Rule{
		domain.RequiredWhen("department", "courseType", "academic"),
		domain.Required("title"),
	}

	rec := &domain.NormalizedRecord{
		Fields: map[string]any{"courseType": "academic"},
	}

	msgs := ingest.Validate(rec, rules)
	require.Equal(t, []string{
		"title is required",
		"department is required when courseType is academic",
	}, msgs, "unconditional violations come first regardless of rule order")
}

func Test_Validate_ConditionalNotTriggered(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityCourse)
	require.NoError(t, err)

	rec := &domain.NormalizedRecord{
		Fields: map[string]any{
			"title":         "Public Speaking",
			"description":   "Workshop",
			"instructor":    "Dr. Kay",
			"content":       []string{"voice", "posture"},
			"duration":      "2 weeks",
			"courseType":    "professional",
			"courseSegment": []string{"open"},
		},
	}

	msgs := ingest.Validate(rec, schema.Rules)
	require.Empty(t, msgs, "department is only required for academic courses")
}

func Test_Validate_PassingRecord(t *testing.T) {
	schema, err := domain.SchemaFor(domain.EntityInstructor)
	require.NoError(t, err)

	rec := &domain.NormalizedRecord{
		Fields: map[string]any{
			"name":       "Dr. Kay",
			"email":      "kay@uni.edu",
			"university": "State University",
			"department": "CS",
			"position":   "Professor",
		},
	}

	require.Empty(t, ingest.Validate(rec, schema.Rules))
}
