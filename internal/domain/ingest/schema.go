package ingest

import (
	"errors"
	"fmt"
	"sync"
)

const (
	ERR_UNKNOWN_ENTITY   = "unknown entity type"
	ERR_SCHEMA_NO_NAME   = "entity schema: name is required"
	ERR_SCHEMA_NO_FIELDS = "entity schema: at least one field is required"
)

var (
	ErrUnknownEntity  = errors.New(ERR_UNKNOWN_ENTITY)
	ErrSchemaNoName   = errors.New(ERR_SCHEMA_NO_NAME)
	ErrSchemaNoFields = errors.New(ERR_SCHEMA_NO_FIELDS)
)

// FieldKind declares how a source value maps onto a canonical field.
type FieldKind string

const (
	KindScalar FieldKind = "scalar"
	KindList   FieldKind = "list" // delimiter-split multi-value field
	KindDate   FieldKind = "date"
)

// FieldSpec declares one canonical field: the source-column aliases it
// accepts, its kind and an optional default applied when absent.
type FieldSpec struct {
	Name    string
	Aliases []string
	Kind    FieldKind
	Default string
}

// Rule is one validation predicate over a normalized record. Check returns
// an empty string when the record passes. Rules are pure; Conditional rules
// (applicability depends on another field) run after unconditional ones.
type Rule struct {
	Field       string
	Conditional bool
	Check       func(rec *NormalizedRecord) string
}

// Required builds an unconditional required-field rule.
func Required(field string) Rule {
	return Rule{
		Field: field,
		Check: func(rec *NormalizedRecord) string {
			if !rec.Has(field) {
				return fmt.Sprintf("%s is required", field)
			}
			return ""
		},
	}
}

// RequiredWhen builds a conditional rule: field is required only when
// another field carries the given value.
func RequiredWhen(field, when, equals string) Rule {
	return Rule{
		Field:       field,
		Conditional: true,
		Check: func(rec *NormalizedRecord) string {
			if rec.String(when) != equals {
				return ""
			}
			if !rec.Has(field) {
				return fmt.Sprintf("%s is required when %s is %s", field, when, equals)
			}
			return ""
		},
	}
}

// EntitySchema is the only entity-specific configuration the pipeline
// consumes: field mapping, rule set, natural key and target collection.
type EntitySchema struct {
	Name       string
	Collection string
	Fields     []FieldSpec
	Rules      []Rule
	KeyFields  []string
	LabelField string
}

// DuplicateKeyFor extracts the record's natural key in declared order.
func (s *EntitySchema) DuplicateKeyFor(rec *NormalizedRecord) DuplicateKey {
	key := make(DuplicateKey, 0, len(s.KeyFields))
	for _, f := range s.KeyFields {
		key = append(key, KeyField{Field: f, Value: rec.String(f)})
	}
	return key
}

// LabelFor returns the row's human-readable identifying label.
func (s *EntitySchema) LabelFor(rec *NormalizedRecord) string {
	if s.LabelField == "" {
		return ""
	}
	return rec.String(s.LabelField)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*EntitySchema{}
)

// RegisterSchema adds an entity schema to the registry, replacing any
// schema previously registered under the same name.
func RegisterSchema(s *EntitySchema) error {
	if s == nil || s.Name == "" {
		return ErrSchemaNoName
	}
	if len(s.Fields) == 0 {
		return ErrSchemaNoFields
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Name] = s
	return nil
}

// SchemaFor resolves the schema registered for an entity type.
func SchemaFor(entityType string) (*EntitySchema, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entityType)
	}
	return s, nil
}

// RegisteredSchemas returns a snapshot of all registered schemas.
func RegisteredSchemas() []*EntitySchema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*EntitySchema, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	return out
}
