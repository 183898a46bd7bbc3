package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

func (e *Engine) executeDelete(ctx context.Context, del *query.Delete) ([]firesql.Document, error) {
	plan, err := planner.BuildDelete(del)
	if err != nil {
		return nil, err
	}

	part := plan.DefaultPart
	docs, err := e.fetchPart(ctx, plan, part)
	if err != nil {
		return nil, err
	}
	expandStarFields(plan, part, docs)
	e.selectFields = plan.SelectFields()

	// Project the rows before deleting so the caller sees what went.
	ids := sortedIDs(docs)
	rows := make([]firesql.Document, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, projectDocument(plan, part, id, docs[id]))
	}

	collection := plan.Collections[part]
	for _, id := range ids {
		if err := e.client.DeleteDocument(ctx, collection, id); err != nil {
			return nil, err
		}
	}

	e.logger.Info("deleted documents",
		zap.String("collection", collection),
		zap.Int("count", len(ids)))
	return rows, nil
}
