package executor

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

func (e *Engine) executeInsert(ctx context.Context, ins *query.Insert) ([]firesql.Document, error) {
	doc, fields, err := insertDocument(ins)
	if err != nil {
		return nil, err
	}

	collection := ins.Table.Collection
	docID, err := e.client.GenerateDocumentID(ctx, collection)
	if err != nil {
		return nil, err
	}
	if err := e.client.SetDocument(ctx, collection, docID, doc); err != nil {
		return nil, err
	}

	e.logger.Info("inserted document",
		zap.String("collection", collection),
		zap.String("docid", docID))

	e.selectFields = append([]string{firesql.DocID}, fields...)
	row := firesql.Document{firesql.DocID: docID}
	for k, v := range doc {
		row[k] = v
	}
	return []firesql.Document{row}, nil
}

// insertDocument materializes the INSERT column/value lists into a
// document. The (*) form takes a single JSON object string and uses
// its keys, sorted, as the field list; otherwise columns pair with
// values positionally. ISO-8601 strings promote to timestamps either
// way.
func insertDocument(ins *query.Insert) (firesql.Document, []string, error) {
	if len(ins.Columns) == 1 && ins.Columns[0].Column == "*" {
		if len(ins.Values) != 1 || ins.Values[0].Kind != query.LiteralString {
			return nil, nil, firesql.NewError(firesql.PlanError, "INSERT (*) expects a single JSON object value")
		}
		doc, err := firesql.JSONToDocument([]byte(ins.Values[0].Str))
		if err != nil {
			return nil, nil, firesql.NewError(firesql.TypeError, "INSERT (*) value is not a JSON object: %v", err)
		}
		fields := make([]string, 0, len(doc))
		for k := range doc {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		return doc, fields, nil
	}

	if len(ins.Columns) != len(ins.Values) {
		return nil, nil, firesql.NewError(firesql.PlanError,
			"INSERT has %d columns but %d values", len(ins.Columns), len(ins.Values))
	}

	doc := firesql.Document{}
	fields := make([]string, 0, len(ins.Columns))
	for i, col := range ins.Columns {
		doc[col.Column] = firesql.PromoteValue(ins.Values[i].Native())
		fields = append(fields, col.Column)
	}
	return doc, fields, nil
}
