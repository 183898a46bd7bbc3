package planner

import (
	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

// Aggregate is one (function, column) pair from the select list.
type Aggregate struct {
	Func   string
	Column string
}

// FieldName is the output column name of an aggregate, e.g. "count(*)".
func (a Aggregate) FieldName() string {
	return a.Func + "(" + a.Column + ")"
}

// JoinSpec is the (leftPartField, op, rightPartField) triple extracted
// from JOIN ... ON (or from an equi-join predicate in WHERE when the
// FROM clause lists two collections).
type JoinSpec struct {
	LeftPart   string
	LeftField  string
	Op         string
	RightPart  string
	RightField string
}

// Plan is the per-statement planner state. It is created on statement
// entry, mutated only by the planner and by projection (wildcard
// expansion), and discarded on statement completion.
type Plan struct {
	// Collections maps alias to collection name.
	Collections map[string]string
	// Aliases maps every name usable as a qualifier (collection name or
	// user-supplied alias) to its canonical part name.
	Aliases map[string]string
	// CollectionFields is the ordered list of selected columns per part;
	// may contain "*" and "docid".
	CollectionFields map[string][]string
	// AggregationFields lists (func, column) pairs per part.
	AggregationFields map[string][]Aggregate
	// ColumnNameMap maps source column to output column per part;
	// ambiguous names are renamed to table_column.
	ColumnNameMap map[string]map[string]string
	// Columns is the select column list; wildcard expansion appends the
	// discovered columns here so output field order stays stable.
	Columns []query.ColumnRef
	// On is the join spec, nil when the statement has no join.
	On *JoinSpec
	// DefaultPart is the first part encountered; columns without a
	// table qualifier resolve against it.
	DefaultPart string
	// DefaultAlias is the default part's qualifier as written in FROM,
	// used as the rename prefix for unqualified ambiguous columns.
	DefaultAlias string
	// Pushdown and Residual are the per-part predicate sets produced by
	// splitting the WHERE tree. Predicates within a part are conjoined.
	Pushdown map[string][]firesql.Predicate
	Residual map[string][]firesql.Predicate
	// Sets carries UPDATE set-clause overrides (column to typed value).
	Sets map[string]interface{}
}

func newPlan() *Plan {
	return &Plan{
		Collections:       map[string]string{},
		Aliases:           map[string]string{},
		CollectionFields:  map[string][]string{},
		AggregationFields: map[string][]Aggregate{},
		ColumnNameMap:     map[string]map[string]string{},
		Pushdown:          map[string][]firesql.Predicate{},
		Residual:          map[string][]firesql.Predicate{},
	}
}

// HasAggregation reports whether any select column is aggregated.
func (p *Plan) HasAggregation() bool {
	for _, aggs := range p.AggregationFields {
		if len(aggs) > 0 {
			return true
		}
	}
	return false
}

// SelectFields returns the ordered output column names: aggregate
// field names when aggregating, renamed column names otherwise.
// Wildcard columns are resolved during projection; until then the
// list reflects the explicit columns only.
func (p *Plan) SelectFields() []string {
	var fields []string
	if p.HasAggregation() {
		for _, part := range p.PartOrder() {
			for _, agg := range p.AggregationFields[part] {
				fields = append(fields, agg.FieldName())
			}
		}
		return fields
	}
	for _, col := range p.Columns {
		if col.Column == "*" {
			continue
		}
		part, column, err := p.ResolveColumn(col)
		if err != nil {
			continue
		}
		if name, ok := p.ColumnNameMap[part][column]; ok {
			fields = append(fields, name)
		} else {
			fields = append(fields, column)
		}
	}
	return fields
}

// PartOrder returns parts in a deterministic order: default part
// first, then the join counterpart.
func (p *Plan) PartOrder() []string {
	parts := []string{p.DefaultPart}
	if p.On != nil {
		if p.On.LeftPart != p.DefaultPart {
			parts = append(parts, p.On.LeftPart)
		}
		if p.On.RightPart != p.DefaultPart {
			parts = append(parts, p.On.RightPart)
		}
		return parts
	}
	for part := range p.Collections {
		if part != p.DefaultPart {
			parts = append(parts, part)
		}
	}
	return parts
}

// ResolveColumn resolves a column reference to (part, column). An
// unknown qualifier is a plan error when the statement binds more than
// one part; with a single part it is folded back into a dotted field
// path on the default part, so nested sub-fields stay addressable.
func (p *Plan) ResolveColumn(ref query.ColumnRef) (string, string, error) {
	if ref.Table == "" {
		return p.Aliases[p.DefaultPart], ref.Column, nil
	}
	if part, ok := p.Aliases[ref.Table]; ok {
		return part, ref.Column, nil
	}
	if len(p.Collections) == 1 {
		return p.Aliases[p.DefaultPart], ref.Table + "." + ref.Column, nil
	}
	return "", "", firesql.NewError(firesql.PlanError, "unknown table or alias %q", ref.Table)
}
