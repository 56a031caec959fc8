package ingest

import (
	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
)

// Validate evaluates the rule set against one normalized record and returns
// every violation, unconditional rules first. Nothing short-circuits within
// a row: the caller sees all of the row's problems in one outcome.
func Validate(rec *domain.NormalizedRecord, rules []domain.Rule) []string {
	var msgs []string

	for _, rule := range rules {
		if rule.Conditional {
			continue
		}
		if msg := rule.Check(rec); msg != "" {
			msgs = append(msgs, msg)
		}
	}

	for _, rule := range rules {
		if !rule.Conditional {
			continue
		}
		if msg := rule.Check(rec); msg != "" {
			msgs = append(msgs, msg)
		}
	}

	return msgs
}
