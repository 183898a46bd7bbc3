// Package planner lowers parsed statements into per-collection store
// queries plus residual in-memory filters. It resolves aliases, builds
// the column rename map, collects aggregation fields, and extracts the
// join spec.
package planner

import (
	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

// BuildSelect plans a SELECT statement.
func BuildSelect(sel *query.Select) (*Plan, error) {
	plan := newPlan()

	if err := plan.initCollectionRefs(sel); err != nil {
		return nil, err
	}
	if err := plan.initFieldRefs(sel.Columns); err != nil {
		return nil, err
	}
	if err := plan.initColumnNames(); err != nil {
		return nil, err
	}
	if err := plan.splitWhere(sel.Where); err != nil {
		return nil, err
	}
	return plan, nil
}

// BuildUpdate plans an UPDATE statement. The field list is seeded to
// docid and * so the write-back sees every stored field.
func BuildUpdate(upd *query.Update) (*Plan, error) {
	plan := newPlan()
	plan.registerPart(upd.Table)

	plan.CollectionFields[plan.DefaultPart] = []string{firesql.DocID, "*"}
	plan.Columns = []query.ColumnRef{{Column: firesql.DocID}}

	plan.Sets = make(map[string]interface{}, len(upd.Sets))
	for _, assign := range upd.Sets {
		plan.Sets[assign.Column] = firesql.PromoteValue(assign.Value.Native())
	}

	if err := plan.splitWhere(upd.Where); err != nil {
		return nil, err
	}
	return plan, nil
}

// BuildDelete plans a DELETE statement with the same seeded field list
// as UPDATE, so the pre-delete projection reports full documents.
func BuildDelete(del *query.Delete) (*Plan, error) {
	plan := newPlan()
	plan.registerPart(del.Table)

	plan.CollectionFields[plan.DefaultPart] = []string{firesql.DocID, "*"}
	plan.Columns = []query.ColumnRef{{Column: firesql.DocID}}

	if err := plan.splitWhere(del.Where); err != nil {
		return nil, err
	}
	return plan, nil
}

// registerPart binds a collection and its alias into the plan maps.
func (p *Plan) registerPart(from query.SelectFrom) {
	p.Collections[from.Collection] = from.Collection
	p.Aliases[from.Collection] = from.Collection
	if from.Alias != "" {
		p.Aliases[from.Alias] = from.Collection
	}
	if p.DefaultPart == "" {
		p.DefaultPart = from.Collection
		p.DefaultAlias = from.Collection
		if from.Alias != "" {
			p.DefaultAlias = from.Alias
		}
	}
}

func (p *Plan) initCollectionRefs(sel *query.Select) error {
	if sel.Join != nil {
		p.registerPart(sel.Join.Left)
		p.registerPart(sel.Join.Right)
		return p.initJoinSpec(sel.Join.On)
	}
	for _, from := range sel.Froms {
		p.registerPart(from)
	}
	return nil
}

// initJoinSpec validates the ON condition and records the join spec.
// Only an equality between two qualified column references is
// accepted.
func (p *Plan) initJoinSpec(on *query.BinaryExpr) error {
	if on == nil {
		return firesql.NewError(firesql.PlanError, "JOIN requires an ON condition")
	}
	if on.Op != firesql.OpEqual {
		return firesql.NewError(firesql.PlanError, "only equi-joins are supported, got %q", on.Op)
	}
	leftRef, lok := on.Left.(*query.ColumnRefExpr)
	rightRef, rok := on.Right.(*query.ColumnRefExpr)
	if !lok || !rok {
		return firesql.NewError(firesql.PlanError, "ON condition must compare two columns")
	}

	leftPart, leftField, err := p.ResolveColumn(leftRef.Ref)
	if err != nil {
		return err
	}
	rightPart, rightField, err := p.ResolveColumn(rightRef.Ref)
	if err != nil {
		return err
	}
	if leftPart == rightPart {
		return firesql.NewError(firesql.PlanError, "ON condition must reference both joined collections")
	}

	p.On = &JoinSpec{
		LeftPart:   leftPart,
		LeftField:  leftField,
		Op:         on.Op,
		RightPart:  rightPart,
		RightField: rightField,
	}
	return nil
}

func (p *Plan) initFieldRefs(columns []query.ColumnRef) error {
	p.Columns = columns

	hasPlain := false
	hasAgg := false
	for _, col := range columns {
		part, column, err := p.ResolveColumn(col)
		if err != nil {
			return err
		}
		p.CollectionFields[part] = append(p.CollectionFields[part], column)

		if col.Func != "" {
			hasAgg = true
			p.AggregationFields[part] = append(p.AggregationFields[part], Aggregate{Func: col.Func, Column: column})
		} else {
			hasPlain = true
		}
	}

	if hasAgg && hasPlain {
		return firesql.NewError(firesql.PlanError, "cannot mix aggregation and plain columns in one statement")
	}
	return nil
}

// initColumnNames builds the column rename map in two passes: identity
// first, then every set of identically-named output columns is renamed
// to table_column using the qualifier as written.
func (p *Plan) initColumnNames() error {
	nameCount := map[string]int{}
	for _, col := range p.Columns {
		if col.Column == "*" {
			continue
		}
		_, column, err := p.ResolveColumn(col)
		if err != nil {
			return err
		}
		nameCount[column]++
	}

	for _, col := range p.Columns {
		if col.Column == "*" {
			continue
		}
		part, column, err := p.ResolveColumn(col)
		if err != nil {
			return err
		}
		if p.ColumnNameMap[part] == nil {
			p.ColumnNameMap[part] = map[string]string{}
		}
		if nameCount[column] > 1 {
			qualifier := col.Table
			if qualifier == "" {
				qualifier = p.DefaultAlias
			}
			p.ColumnNameMap[part][column] = qualifier + "_" + column
		} else {
			p.ColumnNameMap[part][column] = column
		}
	}
	return nil
}
