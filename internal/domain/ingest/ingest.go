package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RawRow is one input unit as emitted by a source adapter, keyed by
// source column name. Index is the adapter-assigned 1-based emission order.
type RawRow struct {
	Index  int
	Values map[string]any
	Err    string // set when the adapter could not parse the row
}

// NormalizedRecord maps canonical field names to typed values
// (string, []string or time.Time). Built per-row, never persisted as-is.
type NormalizedRecord struct {
	Origin int
	Fields map[string]any
}

// Has reports whether the field carries a non-empty value.
func (r *NormalizedRecord) Has(field string) bool {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return false
	}
	switch tv := v.(type) {
	case string:
		return strings.TrimSpace(tv) != ""
	case []string:
		return len(tv) > 0
	case time.Time:
		return !tv.IsZero()
	default:
		return true
	}
}

// String returns the field value rendered as a string.
func (r *NormalizedRecord) String(field string) string {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	case []string:
		return strings.Join(tv, ";")
	default:
		return fmt.Sprint(tv)
	}
}

// List returns the field value as a string list.
func (r *NormalizedRecord) List(field string) []string {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return nil
	}
	if lv, ok := v.([]string); ok {
		return lv
	}
	return []string{r.String(field)}
}

// RowStatus is the terminal classification of one row's processing.
type RowStatus string

const (
	StatusSuccess          RowStatus = "success"
	StatusValidationError  RowStatus = "validationError"
	StatusDuplicate        RowStatus = "duplicate"
	StatusPersistenceError RowStatus = "persistenceError"
)

// BatchState tracks a batch through its lifecycle.
type BatchState string

const (
	BatchCreated    BatchState = "CREATED"
	BatchParsing    BatchState = "PARSING"
	BatchProcessing BatchState = "PROCESSING"
	BatchCompleted  BatchState = "COMPLETED"
	BatchFailed     BatchState = "FAILED"
)

// RowOutcome records how a single row terminated. Immutable once produced.
// RowIndex is the row's 0-based position in the adapter's emission order.
type RowOutcome struct {
	RowIndex int       `json:"rowIndex" bson:"row_index"`
	Label    string    `json:"label" bson:"label"`
	Status   RowStatus `json:"status" bson:"status"`
	Detail   string    `json:"detail" bson:"detail"`
}

// BatchSummary is the single source of truth for one batch invocation.
// Outcomes grow append-only in row order and freeze once the batch completes.
type BatchSummary struct {
	BatchId     string       `json:"batchId" bson:"batch_id"`
	EntityType  string       `json:"entityType" bson:"entity_type"`
	ActorId     string       `json:"actorId" bson:"actor_id"`
	State       BatchState   `json:"state" bson:"state"`
	TotalRows   int          `json:"totalRows" bson:"total_rows"`
	Succeeded   int          `json:"succeeded" bson:"succeeded"`
	Failed      int          `json:"failed" bson:"failed"`
	Duplicates  int          `json:"duplicates" bson:"duplicates"`
	Error       string       `json:"error,omitempty" bson:"error"`
	Outcomes    []RowOutcome `json:"outcomes" bson:"outcomes"`
	StartedAt   time.Time    `json:"startedAt" bson:"started_at"`
	CompletedAt time.Time    `json:"completedAt,omitempty" bson:"completed_at"`
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (s *BatchSummary) Clone() *BatchSummary {
	cp := *s
	cp.Outcomes = make([]RowOutcome, len(s.Outcomes))
	copy(cp.Outcomes, s.Outcomes)
	return &cp
}

// KeyField is one component of a composite natural key.
type KeyField struct {
	Field string
	Value string
}

// DuplicateKey is the ordered natural-key tuple used for duplicate lookup.
type DuplicateKey []KeyField

func (k DuplicateKey) String() string {
	parts := make([]string, len(k))
	for i, kf := range k {
		parts[i] = kf.Field + "=" + kf.Value
	}
	return strings.Join(parts, "|")
}

// StructuralParseError marks input that is unreadable before any row is
// processed. It is the only error kind that fails a whole batch.
type StructuralParseError struct {
	Stage string // e.g. "header", "workbook", "object"
	Err   error
}

func (e *StructuralParseError) Error() string {
	return fmt.Sprintf("structural parse error at %s: %v", e.Stage, e.Err)
}

func (e *StructuralParseError) Unwrap() error { return e.Err }

// IsStructuralParseError reports whether err wraps a StructuralParseError.
func IsStructuralParseError(err error) bool {
	var spe *StructuralParseError
	return errors.As(err, &spe)
}

// EntityStore is the pipeline's narrow view of the persistent store.
type EntityStore interface {
	// FindByKey reports whether an entity with the given natural key exists.
	FindByKey(ctx context.Context, entityType string, key DuplicateKey) (bool, error)
	// Create persists one validated, non-duplicate record and returns the
	// created entity's identifier.
	Create(ctx context.Context, entityType string, rec *NormalizedRecord, actorId string) (string, error)
}

// StatusStore holds batch summaries addressable by batch id.
type StatusStore interface {
	SaveSummary(ctx context.Context, summary *BatchSummary) error
	GetSummary(ctx context.Context, batchId string) (*BatchSummary, error)
}
