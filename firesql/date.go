package firesql

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// TimeISOFormat is the layout timestamps render to on egress.
const TimeISOFormat = "2006-01-02T15:04:05"

// iso8601Pattern is the strict gate for promoting a string literal to a
// timestamp: YYYY-MM-DDThh:mm:ss with optional fraction and zone.
var iso8601Pattern = regexp.MustCompile(
	`^(-?(?:[1-9][0-9]*)?[0-9]{4})-(1[0-2]|0[1-9])-(3[01]|0[1-9]|[12][0-9])` +
		`T(2[0-3]|[01][0-9]):([0-5][0-9]):([0-5][0-9])(\.[0-9]+)?` +
		`(Z|[+-](?:2[0-3]|[01][0-9]):[0-5][0-9])?$`)

// ValidateISO8601 reports whether s is a strict ISO-8601 timestamp.
func ValidateISO8601(s string) bool {
	return iso8601Pattern.MatchString(s)
}

// ParseTime parses an ISO-8601 timestamp string. Timestamps without a
// zone designator are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		TimeISOFormat,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp: %q", s)
}

// FormatTime renders a timestamp in the egress layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeISOFormat)
}

// PromoteValue promotes ISO-8601 strings to time.Time, recursing into
// lists and sub-mappings. Non-matching values pass through unchanged.
// The same literal text always produces the same typed value, whether
// it arrives through a WHERE clause or an INSERT/UPDATE value list.
func PromoteValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if ValidateISO8601(v) {
			if t, err := ParseTime(v); err == nil {
				return t
			}
		}
		return v
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = PromoteValue(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			out[k] = PromoteValue(e)
		}
		return out
	default:
		return value
	}
}

// RenderValue is the inverse of PromoteValue for egress: timestamps
// become ISO strings, recursing into lists and sub-mappings.
func RenderValue(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return FormatTime(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = RenderValue(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			out[k] = RenderValue(e)
		}
		return out
	default:
		return value
	}
}

// DocumentToJSON encodes a document with timestamps rendered as ISO
// strings.
func DocumentToJSON(doc Document) ([]byte, error) {
	rendered := RenderValue(map[string]interface{}(doc))
	return json.Marshal(rendered)
}

// JSONToDocument decodes a JSON object into a document, promoting
// ISO-8601 strings back to timestamps.
func JSONToDocument(data []byte) (Document, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return PromoteValue(raw).(map[string]interface{}), nil
}
