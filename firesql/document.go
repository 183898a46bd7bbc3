package firesql

import "strings"

// FieldValue reads a possibly dotted field path from a document,
// walking nested sub-mappings segment by segment.
func FieldValue(doc Document, field string) (interface{}, bool) {
	if !strings.Contains(field, ".") {
		v, ok := doc[field]
		return v, ok
	}

	var current interface{} = map[string]interface{}(doc)
	for _, segment := range strings.Split(field, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// FieldValueOrEmpty reads a dotted field path; a missing segment
// terminates with the empty string, which is what projection emits for
// absent fields.
func FieldValueOrEmpty(doc Document, field string) interface{} {
	v, ok := FieldValue(doc, field)
	if !ok {
		return ""
	}
	return v
}
