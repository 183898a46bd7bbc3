// Package executor runs parsed statements against a document store.
// SELECT flows through fetch, residual filtering, join or projection,
// and aggregation; the write statements reuse the same targeting
// pipeline and then mutate the store one document at a time.
package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/parser"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
	"github.com/bennycheung/PyFireSQL/firesql/query"
	"github.com/bennycheung/PyFireSQL/firesql/storage"
)

// Engine executes statements against a storage client. It keeps the
// output field list of the most recent statement so callers can render
// results in select order. An Engine is not safe for concurrent use;
// create one per session.
type Engine struct {
	client storage.Client
	logger *zap.Logger

	selectFields []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an execution engine over the given store.
func NewEngine(client storage.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute parses and runs one statement, returning the result rows.
// SELECT returns one row per matching document (or document pair for a
// join); INSERT returns the inserted document; UPDATE and DELETE
// return the affected documents.
func (e *Engine) Execute(ctx context.Context, text string) ([]firesql.Document, error) {
	stmt, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}

	switch s := stmt.(type) {
	case *query.Select:
		return e.executeSelect(ctx, s)
	case *query.Insert:
		return e.executeInsert(ctx, s)
	case *query.Update:
		return e.executeUpdate(ctx, s)
	case *query.Delete:
		return e.executeDelete(ctx, s)
	default:
		return nil, firesql.NewError(firesql.PlanError, "unsupported statement type %T", stmt)
	}
}

// SelectFields returns the output column names of the most recently
// executed statement, in select order.
func (e *Engine) SelectFields() []string {
	return e.selectFields
}

func (e *Engine) executeSelect(ctx context.Context, sel *query.Select) ([]firesql.Document, error) {
	plan, err := planner.BuildSelect(sel)
	if err != nil {
		return nil, err
	}
	if len(plan.Collections) > 1 && plan.On == nil {
		return nil, firesql.NewError(firesql.PlanError, "selecting from multiple collections requires a join condition")
	}

	partDocs := map[string]firesql.Documents{}
	for _, part := range plan.PartOrder() {
		docs, err := e.fetchPart(ctx, plan, part)
		if err != nil {
			return nil, err
		}
		partDocs[part] = docs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if plan.HasAggregation() {
		e.selectFields = plan.SelectFields()
		rows := e.resultRows(plan, partDocs)
		return []firesql.Document{aggregateRow(plan, rows)}, nil
	}

	for _, part := range plan.PartOrder() {
		expandStarFields(plan, part, partDocs[part])
	}
	e.selectFields = plan.SelectFields()
	return e.resultRows(plan, partDocs), nil
}

// resultRows turns the fetched per-collection documents into result
// rows: the join output when the plan has a join condition, otherwise
// the projected documents of the single selected collection.
// Aggregates consume these rows too, so a join aggregates over the
// joined pairs rather than either side's documents.
func (e *Engine) resultRows(plan *planner.Plan, partDocs map[string]firesql.Documents) []firesql.Document {
	if plan.On != nil {
		rows := innerJoin(plan, partDocs)
		e.logger.Debug("join complete",
			zap.String("left", plan.On.LeftPart),
			zap.String("right", plan.On.RightPart),
			zap.Int("rows", len(rows)))
		return rows
	}
	return projectPart(plan, plan.DefaultPart, partDocs[plan.DefaultPart])
}
