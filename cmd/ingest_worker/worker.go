package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/comfforts/logger"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/infra/mongostore"
	"github.com/campushub/batch-ingest/internal/infra/observability"
	"github.com/campushub/batch-ingest/internal/repo/batchrun"
	"github.com/campushub/batch-ingest/internal/repo/catalog"
	"github.com/campushub/batch-ingest/internal/usecase/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest/sources"
	envutils "github.com/campushub/batch-ingest/pkg/utils/environment"
)

const POLL_INTERVAL = 2 * time.Second

func main() {
	fmt.Println("Starting ingest worker - setting up logger instance")
	l := logger.GetSlogLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, l)

	wCfg, err := envutils.BuildIngestWorkerConfig()
	if err != nil {
		l.Error("error building ingest worker config", "error", err.Error())
		os.Exit(1)
	}

	// setup startup context with timeout for infra connections
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	startupCtx = logger.WithLogger(startupCtx, l)

	mCfg := envutils.BuildMongoStoreConfig(true)
	ms, err := mongostore.NewMongoStore(startupCtx, mCfg)
	if err != nil {
		l.Error("error connecting to mongo store", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ms.Close(logger.WithLogger(closeCtx, l)); err != nil {
			l.Error("error closing mongo store", "error", err.Error())
		}
	}()

	catRepo, err := catalog.NewCatalogRepo(startupCtx, ms)
	if err != nil {
		l.Error("error building catalog repo", "error", err.Error())
		os.Exit(1)
	}

	runRepo, err := batchrun.NewBatchRunRepo(ms)
	if err != nil {
		l.Error("error building batch run repo", "error", err.Error())
		os.Exit(1)
	}

	shutdown, err := observability.Serve(ctx, observability.InitOptions{
		MetricsAddr: wCfg.MetricsAddr,
	})
	if err != nil {
		l.Error("error serving metrics", "error", err.Error())
	}
	defer func() {
		if shutdown != nil {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutCtx); err != nil {
				l.Error("error shutting down metrics server", "error", err.Error())
			}
		}
	}()

	coord, err := ingest.NewCoordinator(catRepo, runRepo)
	if err != nil {
		l.Error("error building coordinator", "error", err.Error())
		os.Exit(1)
	}

	src, cleanup, err := buildSource(wCfg)
	if err != nil {
		l.Error("error building source", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	summary, err := coord.Submit(ctx, wCfg.Entity, src, wCfg.Actor)
	if err != nil {
		l.Error("batch submission failed", "entity", wCfg.Entity, "error", err.Error())
		os.Exit(1)
	}

	// Deferred batches are polled until they reach a terminal state.
	for summary.State != domain.BatchCompleted && summary.State != domain.BatchFailed {
		select {
		case <-ctx.Done():
			l.Info("interrupted, batch continues server-side", "batch-id", summary.BatchId)
			return
		case <-time.After(POLL_INTERVAL):
		}

		summary, err = coord.BatchStatus(ctx, summary.BatchId)
		if err != nil {
			l.Error("error polling batch status", "error", err.Error())
			os.Exit(1)
		}
	}

	l.Info("batch finished",
		"batch-id", summary.BatchId,
		"entity", summary.EntityType,
		"state", string(summary.State),
		"total", summary.TotalRows,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duplicates", summary.Duplicates)

	for _, o := range summary.Outcomes {
		if o.Status == domain.StatusSuccess {
			continue
		}
		l.Info("row outcome", "row", o.RowIndex, "label", o.Label, "status", string(o.Status), "detail", o.Detail)
	}

	if summary.State == domain.BatchFailed {
		os.Exit(1)
	}
}

// buildSource picks the source adapter from the worker config: a bucket
// object, a spreadsheet file or a delimited text file.
func buildSource(cfg envutils.IngestWorkerConfig) (sources.SourceConfig, func(), error) {
	noop := func() {}

	if cfg.FilePath == "" {
		return sources.CloudTextConfig{
			Bucket:    cfg.Bucket,
			Object:    cfg.Object,
			Delimiter: cfg.Delimiter,
		}, noop, nil
	}

	if strings.EqualFold(filepath.Ext(cfg.FilePath), ".xlsx") {
		data, err := os.ReadFile(cfg.FilePath)
		if err != nil {
			return nil, noop, fmt.Errorf("read workbook %s: %w", cfg.FilePath, err)
		}
		return sources.SpreadsheetConfig{Data: data}, noop, nil
	}

	f, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, noop, fmt.Errorf("open file %s: %w", cfg.FilePath, err)
	}
	return sources.DelimitedTextConfig{
		Reader:    f,
		Delimiter: cfg.Delimiter,
	}, func() { f.Close() }, nil
}
