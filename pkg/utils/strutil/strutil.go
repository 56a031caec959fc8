package strutil

import (
	"strconv"
	"strings"
	"unicode"
)

// CanonicalToken normalizes a header or alias for matching: lowercased,
// runs of non-alphanumeric characters collapsed to a single space, trimmed.
func CanonicalToken(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			prevSpace = false
			continue
		}
		if !prevSpace && b.Len() > 0 {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// MapTokens maps each token to its value in the mapping; tokens without a
// mapping keep their original value.
func MapTokens(tokens []string, mapping map[string]string) []string {
	mapped := make([]string, len(tokens))
	for i, token := range tokens {
		if m, exists := mapping[token]; exists {
			mapped[i] = m
		} else {
			mapped[i] = token
		}
	}
	return mapped
}

// CastNumeric converts a numeric-looking string to int64 or float64.
// Anything else comes back unchanged as a string.
func CastNumeric(s string) any {
	t := strings.TrimSpace(s)
	if t == "" || !startsNumeric(t) {
		return s
	}
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return i
	}
	if strings.Contains(t, ".") {
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return s
}

func startsNumeric(s string) bool {
	r := rune(s[0])
	return unicode.IsDigit(r) || ((r == '-' || r == '+') && len(s) > 1)
}

// SplitList splits a delimiter-joined multi-value field. Items are trimmed,
// whitespace-only items dropped, duplicates preserved.
func SplitList(s string, delim string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, delim) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
