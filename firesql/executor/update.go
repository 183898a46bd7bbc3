package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

func (e *Engine) executeUpdate(ctx context.Context, upd *query.Update) ([]firesql.Document, error) {
	plan, err := planner.BuildUpdate(upd)
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

	// Build the result rows with the set overrides applied, completing
	// the read phase before any mutation. A failure mid-write leaves
	// earlier documents updated; there is no rollback.
	ids := sortedIDs(docs)
	rows := make([]firesql.Document, 0, len(ids))
	for _, id := range ids {
		doc := docs[id]
		for k, v := range plan.Sets {
			doc[k] = v
		}
		rows = append(rows, projectDocument(plan, part, id, doc))
	}

	collection := plan.Collections[part]
	for _, id := range ids {
		if err := e.client.UpdateDocument(ctx, collection, id, firesql.Document(plan.Sets)); err != nil {
			return nil, err
		}
	}

	e.logger.Info("updated documents",
		zap.String("collection", collection),
		zap.Int("count", len(ids)))
	return rows, nil
}
