package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
)

// fetchPart retrieves one collection's documents. Pushdown predicates
// go to the store; residual predicates are applied in memory on the
// way back. Every bound collection is fetched whether or not the WHERE
// clause mentions it, so join sides without predicates still arrive.
func (e *Engine) fetchPart(ctx context.Context, plan *planner.Plan, part string) (firesql.Documents, error) {
	collection := plan.Collections[part]

	var docs firesql.Documents
	var err error
	if preds := plan.Pushdown[part]; len(preds) > 0 {
		docs, err = e.client.QueryByTuples(ctx, collection, preds)
	} else {
		docs, err = e.client.GetCollectionDocuments(ctx, collection)
	}
	if err != nil {
		return nil, err
	}

	fetched := len(docs)
	if preds := plan.Residual[part]; len(preds) > 0 {
		docs, err = filterDocuments(docs, preds)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Debug("fetched collection",
		zap.String("collection", collection),
		zap.Int("fetched", fetched),
		zap.Int("after_filter", len(docs)))
	return docs, nil
}
