package batchrun

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comfforts/logger"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/domain/infra"
)

const SUMMARY_COLLECTION = "ingest.batch_runs"

const (
	ERR_MISSING_BATCH_ID = "error missing batch ID"
	ERR_MISSING_SUMMARY  = "error missing batch summary"
	ERR_NOT_FOUND        = "error no batch found for the given batch ID"
)

var (
	ErrMissingBatchId = errors.New(ERR_MISSING_BATCH_ID)
	ErrMissingSummary = errors.New(ERR_MISSING_SUMMARY)
	ErrNotFound       = errors.New(ERR_NOT_FOUND)
)

// BatchRunRepo is the Mongo-backed status store: batch summaries addressable
// by batch id, upserted as processing advances and polled by callers.
type BatchRunRepo interface {
	SaveSummary(ctx context.Context, summary *domain.BatchSummary) error
	GetSummary(ctx context.Context, batchId string) (*domain.BatchSummary, error)
	DeleteSummary(ctx context.Context, batchId string) error
	Close(ctx context.Context) error
}

type batchRunRepo struct {
	infra.DBStore
}

func NewBatchRunRepo(rc infra.DBStore) (*batchRunRepo, error) {
	return &batchRunRepo{
		DBStore: rc,
	}, nil
}

// SaveSummary upserts the summary under its batch id.
func (br *batchRunRepo) SaveSummary(ctx context.Context, summary *domain.BatchSummary) error {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		return fmt.Errorf("error getting logger from context: %w", err)
	}

	if summary == nil {
		return ErrMissingSummary
	}
	if summary.BatchId == "" {
		return ErrMissingBatchId
	}

	coll := br.Store().Collection(SUMMARY_COLLECTION)
	filter := bson.M{"batch_id": summary.BatchId}

	_, err = coll.ReplaceOne(ctx, filter, summary, options.Replace().SetUpsert(true))
	if err != nil {
		l.Error("SaveSummary error", "error", err.Error(), "batch_id", summary.BatchId)
		return fmt.Errorf("error saving batch summary: %w", err)
	}
	return nil
}

// GetSummary fetches the summary for a batch id.
func (br *batchRunRepo) GetSummary(ctx context.Context, batchId string) (*domain.BatchSummary, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting logger from context: %w", err)
	}

	if batchId == "" {
		return nil, ErrMissingBatchId
	}

	coll := br.Store().Collection(SUMMARY_COLLECTION)
	filter := bson.M{"batch_id": batchId}

	res := coll.FindOne(ctx, filter)

	var summary domain.BatchSummary
	if err := res.Decode(&summary); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		l.Error("GetSummary error", "error", err.Error(), "batch_id", batchId)
		return nil, fmt.Errorf("error fetching batch summary: %w", err)
	}
	return &summary, nil
}

// DeleteSummary removes a batch's summary.
func (br *batchRunRepo) DeleteSummary(ctx context.Context, batchId string) error {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		return fmt.Errorf("error getting logger from context: %w", err)
	}

	if batchId == "" {
		return ErrMissingBatchId
	}

	coll := br.Store().Collection(SUMMARY_COLLECTION)
	filter := bson.M{"batch_id": batchId}

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		l.Error("DeleteSummary error", "error", err.Error(), "batch_id", batchId)
		return fmt.Errorf("error deleting batch summary: %w", err)
	}

	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
