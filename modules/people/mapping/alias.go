package mapping

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// RawRecord is one externally authored record: a key/value bag whose keys are
// literal column headers or extraction keys. Scalar values are strings (or
// numbers from JSON decoding); structured blocks arrive as nested objects.
// The RawKey entry carries the verbatim source row for diagnostics.
type RawRecord map[string]any

const RawKey = "_raw"

// Headers returns the record's keys in sorted order, excluding the raw
// passthrough. Used to build actionable error messages for bad uploads.
func (r RawRecord) Headers() []string {
	headers := make([]string, 0, len(r))
	for key := range r {
		if key == RawKey {
			continue
		}
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

var labelStrip = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NormalizeLabel makes a human-authored header comparable: trims surrounding
// whitespace (including non-breaking space), collapses internal whitespace
// runs to a single underscore, strips everything outside [A-Za-z0-9_], and
// lowercases. Deterministic so the first listed alias always wins.
func NormalizeLabel(label string) string {
	fields := strings.FieldsFunc(label, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	joined := strings.Join(fields, "_")
	joined = labelStrip.ReplaceAllString(joined, "")
	return strings.ToLower(joined)
}

// Resolve finds the value for a canonical field given its ordered candidate
// aliases. Each candidate is tried as an exact key first, then by normalized
// comparison against the bag's normalized keys, before the next candidate is
// considered at all. The first candidate with a non-empty value wins, so an
// earlier candidate matching only after normalization beats a later candidate
// matching exactly. Near-duplicate candidates are harmless.
func Resolve(bag RawRecord, candidates []string) (string, bool) {
	raw, ok := resolveAny(bag, candidates)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(stringify(raw))
	if value == "" {
		return "", false
	}
	return value, true
}

func resolveAny(bag RawRecord, candidates []string) (any, bool) {
	normalized := normalizedView(bag)
	for _, candidate := range candidates {
		if value, ok := bag[candidate]; ok && present(value) {
			return value, true
		}
		key := NormalizeLabel(candidate)
		if key == "" {
			continue
		}
		if value, ok := normalized[key]; ok && present(value) {
			return value, true
		}
	}
	return nil, false
}

// normalizedView indexes the bag by normalized key. When two raw keys
// normalize identically the lexicographically smaller raw key wins, keeping
// resolution deterministic.
func normalizedView(bag RawRecord) map[string]any {
	keys := make([]string, 0, len(bag))
	for key := range bag {
		if key == RawKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	view := make(map[string]any, len(keys))
	for _, key := range keys {
		norm := NormalizeLabel(key)
		if norm == "" {
			continue
		}
		if _, taken := view[norm]; !taken {
			view[norm] = bag[key]
		}
	}
	return view
}

func present(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
