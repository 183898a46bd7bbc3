package executor

import (
	"sort"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

// expandStarFields resolves a wildcard in a part's field list by
// sampling one fetched document: explicit fields keep their position,
// then the synthetic docid unless already selected, then the remaining
// sampled keys in sorted order. The plan's column list and rename map
// are extended so output naming stays consistent. With no fetched
// documents the wildcard expands to docid alone.
func expandStarFields(plan *planner.Plan, part string, docs firesql.Documents) {
	fields := plan.CollectionFields[part]
	hasStar := false
	for _, f := range fields {
		if f == "*" {
			hasStar = true
			break
		}
	}
	if !hasStar {
		return
	}

	explicit := make([]string, 0, len(fields))
	seen := map[string]bool{}
	for _, f := range fields {
		if f == "*" {
			continue
		}
		explicit = append(explicit, f)
		seen[f] = true
	}

	var sample firesql.Document
	for _, id := range sortedIDs(docs) {
		sample = docs[id]
		break
	}

	var discovered []string
	for key := range sample {
		if !seen[key] {
			discovered = append(discovered, key)
		}
	}
	sort.Strings(discovered)
	if !seen[firesql.DocID] {
		discovered = append([]string{firesql.DocID}, discovered...)
	}

	plan.CollectionFields[part] = append(explicit, discovered...)
	if plan.ColumnNameMap[part] == nil {
		plan.ColumnNameMap[part] = map[string]string{}
	}
	for _, key := range discovered {
		if _, ok := plan.ColumnNameMap[part][key]; !ok {
			plan.ColumnNameMap[part][key] = key
		}
		plan.Columns = append(plan.Columns, query.ColumnRef{Table: part, Column: key})
	}
}

// projectDocument builds one output row from a document: the part's
// selected fields under their output names, with the synthetic docid
// injected from the map key and absent fields as empty strings. Docid
// honors the rename map too, so selecting both sides' docids in a join
// yields distinct columns. Unexpanded wildcards are skipped.
func projectDocument(plan *planner.Plan, part, docID string, doc firesql.Document) firesql.Document {
	row := firesql.Document{}
	for _, field := range plan.CollectionFields[part] {
		if field == "*" {
			continue
		}
		name := field
		if mapped, ok := plan.ColumnNameMap[part][field]; ok {
			name = mapped
		}
		if field == firesql.DocID {
			row[name] = docID
			continue
		}
		row[name] = firesql.FieldValueOrEmpty(doc, field)
	}
	return row
}

// projectPart projects every document of a part, in docid order.
func projectPart(plan *planner.Plan, part string, docs firesql.Documents) []firesql.Document {
	rows := make([]firesql.Document, 0, len(docs))
	for _, id := range sortedIDs(docs) {
		rows = append(rows, projectDocument(plan, part, id, docs[id]))
	}
	return rows
}

func sortedIDs(docs firesql.Documents) []string {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
