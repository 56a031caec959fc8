// Package ingest implements the batch tabular ingestion pipeline: one
// generic per-row flow (normalize, validate, duplicate-check, persist)
// parameterized by entity schema, replacing the per-entity import copies.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/comfforts/logger"
	"github.com/google/uuid"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/usecase/ingest/sources"
)

const (
	DefaultDeferThreshold = 200
	DefaultSnapshotEvery  = 25
)

const (
	ERR_NIL_ENTITY_STORE = "coordinator: entity store is required"
	ERR_NO_STATUS_STORE  = "coordinator: no status store configured"
	ERR_SOURCE_BREAKDOWN = "coordinator: source failed mid-batch"
)

var (
	ErrNilEntityStore  = errors.New(ERR_NIL_ENTITY_STORE)
	ErrNoStatusStore   = errors.New(ERR_NO_STATUS_STORE)
	ErrSourceBreakdown = errors.New(ERR_SOURCE_BREAKDOWN)
)

// Coordinator orchestrates one batch end to end. Rows are processed
// strictly sequentially in emission order; a row's outcome is recorded
// before the next row starts. Batches are independent of each other.
type Coordinator struct {
	store          domain.EntityStore
	status         domain.StatusStore
	deferThreshold int
	snapshotEvery  int
}

type CoordinatorOption func(*Coordinator)

// WithDeferThreshold sets the estimated-row-count ceiling for synchronous
// handling.
func WithDeferThreshold(n int) CoordinatorOption {
	return func(c *Coordinator) { c.deferThreshold = n }
}

// WithSnapshotEvery sets how many outcomes are recorded between status
// store snapshots of a deferred batch.
func WithSnapshotEvery(n int) CoordinatorOption {
	return func(c *Coordinator) { c.snapshotEvery = n }
}

// NewCoordinator builds a coordinator over the given entity store. The
// status store may be nil, in which case every batch runs synchronously.
func NewCoordinator(store domain.EntityStore, status domain.StatusStore, opts ...CoordinatorOption) (*Coordinator, error) {
	if store == nil {
		return nil, ErrNilEntityStore
	}

	c := &Coordinator{
		store:          store,
		status:         status,
		deferThreshold: DefaultDeferThreshold,
		snapshotEvery:  DefaultSnapshotEvery,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit runs one batch for the given entity type. Small sources (row count
// known and under the defer threshold) are processed before returning; other
// sources are registered in the status store and processed on a detached
// task, and the returned summary is a handle whose state is polled via
// BatchStatus. Only a structural parse failure is returned as an error;
// per-row failures land in the summary.
func (c *Coordinator) Submit(ctx context.Context, entityType string, src sources.SourceConfig, actorId string) (*domain.BatchSummary, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	schema, err := domain.SchemaFor(entityType)
	if err != nil {
		return nil, err
	}

	agg := NewAggregator(uuid.NewString(), entityType, actorId)

	if !c.deferred(src) {
		return c.run(ctx, schema, src, actorId, agg, false)
	}

	handle := agg.Snapshot()
	if err := c.status.SaveSummary(ctx, handle); err != nil {
		return nil, fmt.Errorf("coordinator: register batch %s: %w", handle.BatchId, err)
	}

	// Detached from the caller's deadline; the batch stays addressable
	// through the status store.
	bgCtx := logger.WithLogger(context.WithoutCancel(ctx), l)
	go func() {
		if _, err := c.run(bgCtx, schema, src, actorId, agg, true); err != nil {
			l.Error("deferred batch failed",
				"batch-id", handle.BatchId,
				"entity", entityType,
				"error", err.Error())
		}
	}()

	return handle, nil
}

// BatchStatus returns the current summary for a batch id.
func (c *Coordinator) BatchStatus(ctx context.Context, batchId string) (*domain.BatchSummary, error) {
	if c.status == nil {
		return nil, ErrNoStatusStore
	}
	return c.status.GetSummary(ctx, batchId)
}

// deferred decides the response semantics for a source: sync when the row
// count is known and small, deferred otherwise. Without a status store the
// batch has nowhere to be polled, so it always runs inline.
func (c *Coordinator) deferred(src sources.SourceConfig) bool {
	if c.status == nil {
		return false
	}
	est, ok := src.(sources.RowCountEstimator)
	if !ok {
		return true
	}
	return est.EstimateRows() > c.deferThreshold
}

func (c *Coordinator) run(
	ctx context.Context,
	schema *domain.EntitySchema,
	src sources.SourceConfig,
	actorId string,
	agg *Aggregator,
	deferred bool,
) (*domain.BatchSummary, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	start := time.Now()

	agg.SetState(domain.BatchParsing)
	c.saveStatus(ctx, agg.Snapshot())

	it, err := src.BuildIterator(ctx)
	if err != nil {
		// Structural failure: the whole batch fails before any row.
		summary := agg.Fail(err)
		c.saveStatus(ctx, summary)
		batchesTotal.WithLabelValues(schema.Name, string(domain.BatchFailed)).Inc()
		l.Error("batch failed before row processing",
			"batch-id", summary.BatchId, "source", src.Name(), "error", err.Error())
		return summary, err
	}
	defer func() {
		if cerr := it.Close(ctx); cerr != nil {
			l.Error("error closing source iterator", "source", it.Name(), "error", cerr.Error())
		}
	}()

	agg.SetState(domain.BatchProcessing)

	for {
		// Cancellation only prevents further rows from starting.
		if ctx.Err() != nil {
			l.Info("batch cancelled, no further rows started",
				"batch-id", agg.Snapshot().BatchId, "rows-done", agg.Snapshot().TotalRows)
			break
		}

		raw, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			summary := agg.Fail(fmt.Errorf("%w: %v", ErrSourceBreakdown, err))
			c.saveStatus(ctx, summary)
			batchesTotal.WithLabelValues(schema.Name, string(domain.BatchFailed)).Inc()
			return summary, err
		}

		outcome := c.processRow(ctx, schema, raw, actorId)
		agg.Record(outcome)
		rowsProcessed.WithLabelValues(schema.Name, string(outcome.Status)).Inc()

		if deferred && c.snapshotEvery > 0 && agg.Snapshot().TotalRows%c.snapshotEvery == 0 {
			c.saveStatus(ctx, agg.Snapshot())
		}
	}

	summary := agg.Finalize()
	c.saveStatus(ctx, summary)

	batchesTotal.WithLabelValues(schema.Name, string(summary.State)).Inc()
	batchDuration.WithLabelValues(schema.Name).Observe(time.Since(start).Seconds())

	l.Info("batch completed",
		"batch-id", summary.BatchId,
		"entity", summary.EntityType,
		"total", summary.TotalRows,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duplicates", summary.Duplicates)

	return summary, nil
}

// processRow runs the per-row sub-flow to a terminal outcome. No outcome
// ever aborts the batch.
func (c *Coordinator) processRow(
	ctx context.Context,
	schema *domain.EntitySchema,
	raw *domain.RawRow,
	actorId string,
) domain.RowOutcome {
	if raw.Err != "" {
		return domain.RowOutcome{
			RowIndex: raw.Index - 1,
			Status:   domain.StatusValidationError,
			Detail:   raw.Err,
		}
	}

	rec := Normalize(raw, schema)
	label := schema.LabelFor(rec)

	if msgs := Validate(rec, schema.Rules); len(msgs) > 0 {
		return domain.RowOutcome{
			RowIndex: raw.Index - 1,
			Label:    label,
			Status:   domain.StatusValidationError,
			Detail:   strings.Join(msgs, "; "),
		}
	}

	key := schema.DuplicateKeyFor(rec)
	exists, err := c.store.FindByKey(ctx, schema.Name, key)
	if err != nil {
		return domain.RowOutcome{
			RowIndex: raw.Index - 1,
			Label:    label,
			Status:   domain.StatusPersistenceError,
			Detail:   fmt.Sprintf("duplicate lookup: %v", err),
		}
	}
	if exists {
		return domain.RowOutcome{
			RowIndex: raw.Index - 1,
			Label:    label,
			Status:   domain.StatusDuplicate,
			Detail:   key.String(),
		}
	}

	id, err := c.store.Create(ctx, schema.Name, rec, actorId)
	if err != nil {
		// Includes a uniqueness race lost between lookup and write.
		return domain.RowOutcome{
			RowIndex: raw.Index - 1,
			Label:    label,
			Status:   domain.StatusPersistenceError,
			Detail:   err.Error(),
		}
	}

	return domain.RowOutcome{
		RowIndex: raw.Index - 1,
		Label:    label,
		Status:   domain.StatusSuccess,
		Detail:   id,
	}
}

func (c *Coordinator) saveStatus(ctx context.Context, summary *domain.BatchSummary) {
	if c.status == nil {
		return
	}
	if err := c.status.SaveSummary(ctx, summary); err != nil {
		l, lerr := logger.LoggerFromContext(ctx)
		if lerr != nil {
			l = logger.GetSlogLogger()
		}
		l.Error("error saving batch summary", "batch-id", summary.BatchId, "error", err.Error())
	}
}
