package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comfforts/logger"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/infra/mongostore"
	"github.com/campushub/batch-ingest/internal/repo/catalog"
	envutils "github.com/campushub/batch-ingest/pkg/utils/environment"
)

func TestCatalogRepoCourseCRUD(t *testing.T) {
	if os.Getenv("MONGO_HOST_NAME") == "" {
		t.Skip("MONGO_HOST_NAME not set, skipping mongo integration test")
	}

	// Initialize logger
	l := logger.GetSlogLogger()
	t.Log("TestCatalogRepo Logger initialized")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	ctx = logger.WithLogger(ctx, l)

	// Get MongoDB configuration
	nmCfg := envutils.BuildMongoStoreConfig(true)
	ms, err := mongostore.NewMongoStore(ctx, nmCfg)
	require.NoError(t, err)

	defer func() {
		err := ms.Close(ctx)
		require.NoError(t, err)
	}()

	// Initialize catalog repository
	cr, err := catalog.NewCatalogRepo(ctx, ms)
	require.NoError(t, err)
	t.Log("Catalog repository initialized successfully")

	rec := &domain.NormalizedRecord{
		Origin: 1,
		Fields: map[string]any{
			"title":         "Integration Testing 101",
			"description":   "Course used by the catalog repo integration test",
			"instructor":    "Dr. Integration",
			"content":       []string{"setup", "teardown"},
			"duration":      "1 week",
			"courseType":    "professional",
			"courseSegment": []string{"open"},
		},
	}

	schema, err := domain.SchemaFor(domain.EntityCourse)
	require.NoError(t, err)
	key := schema.DuplicateKeyFor(rec)

	// Fresh key should not exist yet
	exists, err := cr.FindByKey(ctx, domain.EntityCourse, key)
	require.NoError(t, err)
	require.False(t, exists, "course should not exist before creation")

	// Test creating a course
	id, err := cr.Create(ctx, domain.EntityCourse, rec, "integration-test")
	require.NoError(t, err)
	require.NotEmpty(t, id, "created course ID should not be empty")
	t.Logf("Course created successfully with ID: %s", id)

	// Lookup now finds the natural key
	exists, err = cr.FindByKey(ctx, domain.EntityCourse, key)
	require.NoError(t, err)
	require.True(t, exists, "course should exist after creation")

	// A second write with the same natural key hits the unique index
	_, err = cr.Create(ctx, domain.EntityCourse, rec, "integration-test")
	require.Error(t, err)
	require.Equal(t, catalog.ErrDuplicateEntity, err, "expected duplicate entity error")

	// Cleanup
	_, err = ms.Store().Collection(schema.Collection).DeleteMany(ctx, map[string]any{
		"created_by": "integration-test",
	})
	require.NoError(t, err)
	t.Log("Test courses cleaned up successfully")
}
