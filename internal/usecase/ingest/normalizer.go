package ingest

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/campushub/batch-ingest/internal/domain/ingest"
	"github.com/campushub/batch-ingest/pkg/utils/strutil"
)

// ListDelimiter joins multi-value fields in source files.
const ListDelimiter = ";"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
	time.RFC3339,
}

// Normalize maps a raw row onto the entity's canonical fields. Source column
// matching is case-, spacing- and punctuation-insensitive via the field's
// aliases. Normalization never fails; an absent required field stays absent
// and is caught by validation.
func Normalize(raw *domain.RawRow, schema *domain.EntitySchema) *domain.NormalizedRecord {
	rec := &domain.NormalizedRecord{
		Origin: raw.Index,
		Fields: make(map[string]any, len(schema.Fields)),
	}

	byCanonical := make(map[string]any, len(raw.Values))
	for k, v := range raw.Values {
		ck := strutil.CanonicalToken(k)
		if ck == "" {
			continue
		}
		if _, taken := byCanonical[ck]; !taken {
			byCanonical[ck] = v
		}
	}

	for _, fs := range schema.Fields {
		v, ok := lookupAlias(byCanonical, fs)
		if !ok || isEmptyValue(v) {
			if fs.Default != "" {
				rec.Fields[fs.Name] = fs.Default
			}
			continue
		}

		switch fs.Kind {
		case domain.KindList:
			rec.Fields[fs.Name] = toList(v)
		case domain.KindDate:
			rec.Fields[fs.Name] = toDate(v)
		default:
			rec.Fields[fs.Name] = toScalar(v)
		}
	}

	return rec
}

func lookupAlias(byCanonical map[string]any, fs domain.FieldSpec) (any, bool) {
	if v, ok := byCanonical[strutil.CanonicalToken(fs.Name)]; ok {
		return v, true
	}
	for _, alias := range fs.Aliases {
		if v, ok := byCanonical[strutil.CanonicalToken(alias)]; ok {
			return v, true
		}
	}
	return nil, false
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toScalar(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

func toList(v any) []string {
	switch tv := v.(type) {
	case []string:
		var out []string
		for _, item := range tv {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range tv {
			s := strings.TrimSpace(fmt.Sprint(item))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strutil.SplitList(tv, ListDelimiter)
	default:
		return strutil.SplitList(fmt.Sprint(tv), ListDelimiter)
	}
}

// toDate parses known layouts; an unparseable value is kept as the raw
// string so validation still sees the field as present.
func toDate(v any) any {
	if t, ok := v.(time.Time); ok {
		return t
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}
