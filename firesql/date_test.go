package firesql

import (
	"testing"
	"time"
)

func TestValidateISO8601(t *testing.T) {
	valid := []string{
		"2022-01-15T10:30:00",
		"2022-01-15T10:30:00.123",
		"2022-01-15T10:30:00Z",
		"2022-01-15T10:30:00+05:00",
		"2022-12-31T23:59:59.999999-08:00",
	}
	for _, s := range valid {
		if !ValidateISO8601(s) {
			t.Errorf("expected %q to validate", s)
		}
	}

	invalid := []string{
		"2022-01-15",
		"2022-13-01T10:30:00",
		"2022-01-32T10:30:00",
		"2022-01-15T24:30:00",
		"2022-01-15 10:30:00",
		"not a date",
		"",
	}
	for _, s := range invalid {
		if ValidateISO8601(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestParseTimeZoneless(t *testing.T) {
	ts, err := ParseTime("2022-01-15T10:30:00")
	if err != nil {
		t.Fatalf("ParseTime failed: %v", err)
	}
	if ts.Location() != time.UTC {
		t.Errorf("zoneless timestamp should be UTC, got %v", ts.Location())
	}
	if ts.Hour() != 10 || ts.Minute() != 30 {
		t.Errorf("wrong time: %v", ts)
	}
}

func TestPromoteValue(t *testing.T) {
	promoted := PromoteValue("2022-01-15T10:30:00")
	if _, ok := promoted.(time.Time); !ok {
		t.Fatalf("expected time.Time, got %T", promoted)
	}

	// Non-matching strings pass through untouched.
	if v := PromoteValue("hello"); v != "hello" {
		t.Errorf("plain string changed: %v", v)
	}
	if v := PromoteValue("2022-01-15"); v != "2022-01-15" {
		t.Errorf("date-only string should not promote: %v", v)
	}

	// Recursion into lists and sub-mappings.
	nested := PromoteValue(map[string]interface{}{
		"when": "2022-01-15T10:30:00",
		"tags": []interface{}{"a", "2023-06-01T00:00:00"},
	})
	m := nested.(map[string]interface{})
	if _, ok := m["when"].(time.Time); !ok {
		t.Errorf("nested value not promoted: %T", m["when"])
	}
	list := m["tags"].([]interface{})
	if _, ok := list[1].(time.Time); !ok {
		t.Errorf("list element not promoted: %T", list[1])
	}
}

func TestRenderValueInvertsPromote(t *testing.T) {
	original := "2022-01-15T10:30:00"
	promoted := PromoteValue(original)
	rendered := RenderValue(promoted)
	if rendered != original {
		t.Errorf("round trip changed value: %v", rendered)
	}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := Document{
		"name":    "Alice",
		"signup":  PromoteValue("2022-01-15T10:30:00"),
		"scores":  []interface{}{float64(1), float64(2)},
		"profile": map[string]interface{}{"city": "NYC"},
	}

	data, err := DocumentToJSON(doc)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := JSONToDocument(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if _, ok := decoded["signup"].(time.Time); !ok {
		t.Errorf("timestamp not restored: %T", decoded["signup"])
	}
	if decoded["name"] != "Alice" {
		t.Errorf("name lost: %v", decoded["name"])
	}
	profile := decoded["profile"].(map[string]interface{})
	if profile["city"] != "NYC" {
		t.Errorf("nested field lost: %v", profile)
	}
}
