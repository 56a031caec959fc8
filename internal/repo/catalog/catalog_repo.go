package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/internal/domain/infra"
	"github.com/campushub/batch-ingest/internal/infra/mongostore"
)

const (
	ERR_MISSING_RECORD   = "error missing record"
	ERR_MISSING_KEY      = "error missing natural key"
	ERR_DUPLICATE_ENTITY = "error entity already exists"
)

var (
	ErrMissingRecord   = errors.New(ERR_MISSING_RECORD)
	ErrMissingKey      = errors.New(ERR_MISSING_KEY)
	ErrDuplicateEntity = errors.New(ERR_DUPLICATE_ENTITY)
)

// CatalogRepo persists platform entities (courses, instructors) and serves
// the pipeline's duplicate lookups. Each registered entity gets a composite
// unique index over its natural-key fields, so a write losing the race
// between lookup and insert is rejected by the store, not silently doubled.
type CatalogRepo interface {
	FindByKey(ctx context.Context, entityType string, key domain.DuplicateKey) (bool, error)
	Create(ctx context.Context, entityType string, rec *domain.NormalizedRecord, actorId string) (string, error)
	Close(ctx context.Context) error
}

type catalogRepo struct {
	infra.DBStore
}

func NewCatalogRepo(ctx context.Context, rc infra.DBStore) (*catalogRepo, error) {
	for _, schema := range domain.RegisteredSchemas() {
		if len(schema.KeyFields) == 0 {
			continue
		}

		keys := bson.D{}
		for _, f := range schema.KeyFields {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		idxs := []mongo.IndexModel{
			{
				Keys:    keys,
				Options: options.Index().SetUnique(true), // Composite unique index
			},
		}

		if err := rc.EnsureIndexes(ctx, schema.Collection, idxs); err != nil {
			return nil, fmt.Errorf("error adding %s indexes: %w", schema.Name, err)
		}
	}

	return &catalogRepo{
		DBStore: rc,
	}, nil
}

// FindByKey reports whether an entity with the given natural key exists.
func (cr *catalogRepo) FindByKey(ctx context.Context, entityType string, key domain.DuplicateKey) (bool, error) {
	if len(key) == 0 {
		return false, ErrMissingKey
	}

	schema, err := domain.SchemaFor(entityType)
	if err != nil {
		return false, err
	}

	filter := make(map[string]any, len(key))
	for _, kf := range key {
		filter[kf.Field] = kf.Value
	}

	if _, err := cr.FindCollectionDoc(ctx, schema.Collection, filter); err != nil {
		if errors.Is(err, mongostore.ErrNoDocFound) {
			return false, nil
		}
		return false, fmt.Errorf("error fetching %s by key: %w", entityType, err)
	}
	return true, nil
}

// Create persists one normalized record, stamping the creating actor. The
// store stamps timestamps. A unique-index rejection surfaces as
// ErrDuplicateEntity.
func (cr *catalogRepo) Create(ctx context.Context, entityType string, rec *domain.NormalizedRecord, actorId string) (string, error) {
	if rec == nil || len(rec.Fields) == 0 {
		return "", ErrMissingRecord
	}

	schema, err := domain.SchemaFor(entityType)
	if err != nil {
		return "", err
	}

	doc := make(map[string]any, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		doc[k] = v
	}
	doc["created_by"] = actorId

	id, err := cr.AddCollectionDoc(ctx, schema.Collection, doc)
	if err != nil {
		if errors.Is(err, mongostore.ErrDuplicateRecord) {
			return "", ErrDuplicateEntity
		}
		return "", fmt.Errorf("error creating %s: %w", entityType, err)
	}
	return id, nil
}
