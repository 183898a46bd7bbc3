package executor

import (
	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
)

// innerJoin hash-joins the two fetched sides of the plan's join spec.
// The larger side is hashed, the smaller side probes. Documents
// missing the join field are dropped. Merged rows carry the left
// side's projected fields overlaid with the right side's, so when both
// sides select docid the right one wins.
func innerJoin(plan *planner.Plan, partDocs map[string]firesql.Documents) []firesql.Document {
	on := plan.On
	leftDocs := partDocs[on.LeftPart]
	rightDocs := partDocs[on.RightPart]

	hashPart, hashField, hashDocs := on.LeftPart, on.LeftField, leftDocs
	probeField, probeDocs := on.RightField, rightDocs
	if len(rightDocs) > len(leftDocs) {
		hashPart, hashField, hashDocs = on.RightPart, on.RightField, rightDocs
		probeField, probeDocs = on.LeftField, leftDocs
	}

	buckets := map[string][]string{}
	for _, id := range sortedIDs(hashDocs) {
		value, ok := firesql.FieldValue(hashDocs[id], hashField)
		if !ok {
			continue
		}
		key := firesql.JoinKey(value)
		buckets[key] = append(buckets[key], id)
	}

	var rows []firesql.Document
	for _, probeID := range sortedIDs(probeDocs) {
		value, ok := firesql.FieldValue(probeDocs[probeID], probeField)
		if !ok {
			continue
		}
		for _, hashID := range buckets[firesql.JoinKey(value)] {
			leftID, leftDoc := hashID, hashDocs[hashID]
			rightID, rightDoc := probeID, probeDocs[probeID]
			if hashPart != on.LeftPart {
				leftID, leftDoc = probeID, probeDocs[probeID]
				rightID, rightDoc = hashID, hashDocs[hashID]
			}

			row := projectDocument(plan, on.LeftPart, leftID, leftDoc)
			for k, v := range projectDocument(plan, on.RightPart, rightID, rightDoc) {
				row[k] = v
			}
			rows = append(rows, row)
		}
	}
	return rows
}
