package ingest

import (
	"time"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
)

// Aggregator accumulates per-row outcomes into a batch summary. Pure
// bookkeeping; outcomes are appended in row order and counts stay
// consistent with the outcome list at all times.
type Aggregator struct {
	summary *domain.BatchSummary
}

func NewAggregator(batchId, entityType, actorId string) *Aggregator {
	return &Aggregator{
		summary: &domain.BatchSummary{
			BatchId:    batchId,
			EntityType: entityType,
			ActorId:    actorId,
			State:      domain.BatchCreated,
			StartedAt:  time.Now().UTC(),
			Outcomes:   []domain.RowOutcome{},
		},
	}
}

// SetState advances the batch lifecycle state.
func (a *Aggregator) SetState(state domain.BatchState) {
	a.summary.State = state
}

// Record appends one row outcome and updates the counters.
func (a *Aggregator) Record(o domain.RowOutcome) {
	a.summary.Outcomes = append(a.summary.Outcomes, o)
	a.summary.TotalRows++

	switch o.Status {
	case domain.StatusSuccess:
		a.summary.Succeeded++
	case domain.StatusDuplicate:
		a.summary.Duplicates++
	default:
		a.summary.Failed++
	}
}

// Snapshot returns a copy of the in-progress summary.
func (a *Aggregator) Snapshot() *domain.BatchSummary {
	return a.summary.Clone()
}

// Fail terminally marks the batch failed before row processing produced a
// usable summary (structural parse failure, source breakdown).
func (a *Aggregator) Fail(err error) *domain.BatchSummary {
	a.summary.State = domain.BatchFailed
	a.summary.Error = err.Error()
	a.summary.CompletedAt = time.Now().UTC()
	return a.summary
}

// Finalize freezes the summary; after this the batch is complete and
// succeeded + failed + duplicates == totalRows holds.
func (a *Aggregator) Finalize() *domain.BatchSummary {
	a.summary.State = domain.BatchCompleted
	a.summary.CompletedAt = time.Now().UTC()
	return a.summary
}
