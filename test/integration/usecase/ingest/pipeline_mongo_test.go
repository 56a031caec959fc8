package ingest_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comfforts/logger"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/infra/mongostore"
	"github.com/campushub/batch-ingest/internal/repo/batchrun"
	"github.com/campushub/batch-ingest/internal/repo/catalog"
	"github.com/campushub/batch-ingest/internal/usecase/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest/sources"
	envutils "github.com/campushub/batch-ingest/pkg/utils/environment"
)

func TestPipelineDelimitedTextToMongo(t *testing.T) {
	if os.Getenv("MONGO_HOST_NAME") == "" {
		t.Skip("MONGO_HOST_NAME not set, skipping mongo integration test")
	}

	// Initialize logger
	l := logger.GetSlogLogger()
	t.Log("TestPipeline Logger initialized")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
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

	catRepo, err := catalog.NewCatalogRepo(ctx, ms)
	require.NoError(t, err)

	runRepo, err := batchrun.NewBatchRunRepo(ms)
	require.NoError(t, err)

	coord, err := ingest.NewCoordinator(catRepo, runRepo)
	require.NoError(t, err)

	data := "name,email,university,department,position\n" +
		"Dr. Pipeline,pipeline@uni.edu,Integration University,CS,Professor\n" +
		"Dr. Pipeline,pipeline@uni.edu,Integration University,CS,Professor\n" +
		"Dr. Nameless,,Integration University,CS,Professor\n"

	// A streaming source with a status store runs deferred; the returned
	// summary is a poll-able handle.
	src := sources.DelimitedTextConfig{Reader: strings.NewReader(data)}
	handle, err := coord.Submit(ctx, domain.EntityInstructor, src, "integration-test")
	require.NoError(t, err)
	require.NotEmpty(t, handle.BatchId)
	t.Logf("Batch submitted: %s", handle.BatchId)

	require.Eventually(t, func() bool {
		s, err := coord.BatchStatus(ctx, handle.BatchId)
		return err == nil && (s.State == domain.BatchCompleted || s.State == domain.BatchFailed)
	}, 30*time.Second, 200*time.Millisecond, "batch did not reach a terminal state")

	summary, err := coord.BatchStatus(ctx, handle.BatchId)
	require.NoError(t, err)
	require.Equal(t, domain.BatchCompleted, summary.State)
	require.Equal(t, 3, summary.TotalRows)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 1, summary.Duplicates, "second identical row should be a duplicate")
	require.Equal(t, 1, summary.Failed, "row without email should fail validation")

	// The summary is addressable through the status store
	got, err := coord.BatchStatus(ctx, summary.BatchId)
	require.NoError(t, err)
	require.Equal(t, summary.TotalRows, got.TotalRows)

	// Cleanup
	schema, err := domain.SchemaFor(domain.EntityInstructor)
	require.NoError(t, err)
	_, err = ms.Store().Collection(schema.Collection).DeleteMany(ctx, map[string]any{
		"created_by": "integration-test",
	})
	require.NoError(t, err)

	err = runRepo.DeleteSummary(ctx, summary.BatchId)
	require.NoError(t, err)
	t.Log("Pipeline test data cleaned up successfully")
}
