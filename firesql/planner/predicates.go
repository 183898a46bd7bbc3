package planner

import (
	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

// splitWhere partitions the WHERE tree into per-part pushdown and
// residual predicate lists. AND nodes distribute into both subtrees;
// each part's predicates are implicitly conjoined. A disjunction is
// accepted only when it collapses into a single native "in" predicate;
// anything else is rejected rather than silently flattened, because
// flattening an OR into a conjunction changes its meaning.
func (p *Plan) splitWhere(where query.Expr) error {
	if where == nil {
		return nil
	}

	expr, ok := where.(*query.BinaryExpr)
	if !ok {
		return firesql.NewError(firesql.PlanError, "malformed WHERE expression")
	}

	switch expr.Op {
	case firesql.OpAnd:
		if err := p.splitWhere(expr.Left); err != nil {
			return err
		}
		return p.splitWhere(expr.Right)

	case firesql.OpOr:
		part, pred, err := p.lowerDisjunction(expr)
		if err != nil {
			return err
		}
		p.Pushdown[part] = append(p.Pushdown[part], pred)
		return nil

	default:
		return p.addLeaf(expr)
	}
}

// lowerDisjunction collapses an OR tree into one "in" predicate. Every
// leaf must be an equality on the same column of the same part with a
// literal right side.
func (p *Plan) lowerDisjunction(expr *query.BinaryExpr) (string, firesql.Predicate, error) {
	var part, field string
	var values []interface{}

	var walk func(e query.Expr) error
	walk = func(e query.Expr) error {
		be, ok := e.(*query.BinaryExpr)
		if !ok {
			return firesql.NewError(firesql.PlanError, "disjunction not supported: %s", e.String())
		}
		if be.Op == firesql.OpOr {
			if err := walk(be.Left); err != nil {
				return err
			}
			return walk(be.Right)
		}
		if be.Op != firesql.OpEqual {
			return firesql.NewError(firesql.PlanError,
				"disjunction not supported: OR branches must be equality tests, got %q", be.Op)
		}
		ref, ok := be.Left.(*query.ColumnRefExpr)
		if !ok {
			return firesql.NewError(firesql.PlanError, "disjunction not supported: %s", be.String())
		}
		lit, ok := be.Right.(*query.LiteralExpr)
		if !ok {
			return firesql.NewError(firesql.PlanError,
				"disjunction not supported: OR branches must compare against literals")
		}
		leafPart, leafField, err := p.ResolveColumn(ref.Ref)
		if err != nil {
			return err
		}
		if part == "" {
			part, field = leafPart, leafField
		} else if part != leafPart || field != leafField {
			return firesql.NewError(firesql.PlanError,
				"disjunction not supported: OR branches span %s.%s and %s.%s",
				part, field, leafPart, leafField)
		}
		values = append(values, firesql.PromoteValue(lit.Value.Native()))
		return nil
	}

	if err := walk(expr); err != nil {
		return "", firesql.Predicate{}, err
	}
	return part, firesql.Predicate{Field: field, Op: firesql.OpIn, Value: values}, nil
}

// addLeaf classifies a comparison leaf as a pushdown or residual
// predicate, or promotes a column = column equality into the join spec.
func (p *Plan) addLeaf(expr *query.BinaryExpr) error {
	ref, ok := expr.Left.(*query.ColumnRefExpr)
	if !ok {
		return firesql.NewError(firesql.PlanError, "left side of %q must be a column", expr.Op)
	}
	part, field, err := p.ResolveColumn(ref.Ref)
	if err != nil {
		return err
	}

	switch right := expr.Right.(type) {
	case *query.ColumnRefExpr:
		return p.promoteJoinLeaf(expr.Op, part, field, right.Ref)

	case *query.ListExpr:
		if !opTakesList(expr.Op) {
			return firesql.NewError(firesql.TypeError, "operator %q cannot take a list", expr.Op)
		}
		values := make([]interface{}, len(right.Values))
		for i, v := range right.Values {
			values[i] = firesql.PromoteValue(v.Native())
		}
		p.Pushdown[part] = append(p.Pushdown[part], firesql.Predicate{Field: field, Op: expr.Op, Value: values})
		return nil

	case *query.LiteralExpr:
		if opTakesList(expr.Op) {
			return firesql.NewError(firesql.TypeError, "operator %q requires a list", expr.Op)
		}
		value := firesql.PromoteValue(right.Value.Native())

		if firesql.IsResidualOp(expr.Op) {
			pattern, ok := right.Value.Native().(string)
			if !ok {
				return firesql.NewError(firesql.TypeError, "%s requires a string pattern", expr.Op)
			}
			p.Residual[part] = append(p.Residual[part], firesql.Predicate{Field: field, Op: expr.Op, Value: pattern})
			return nil
		}
		if !firesql.IsPushdownOp(expr.Op) {
			return firesql.NewError(firesql.PlanError, "unsupported operator %q", expr.Op)
		}
		p.Pushdown[part] = append(p.Pushdown[part], firesql.Predicate{Field: field, Op: expr.Op, Value: value})
		return nil

	default:
		return firesql.NewError(firesql.PlanError, "malformed right side of %q", expr.Op)
	}
}

// promoteJoinLeaf surfaces a column = column equality in WHERE as the
// join spec for the comma-join form (FROM A a, B b WHERE a.x = b.x).
func (p *Plan) promoteJoinLeaf(op, leftPart, leftField string, rightRef query.ColumnRef) error {
	if op != firesql.OpEqual {
		return firesql.NewError(firesql.PlanError, "column comparison must be an equality, got %q", op)
	}
	rightPart, rightField, err := p.ResolveColumn(rightRef)
	if err != nil {
		return err
	}
	if rightPart == leftPart {
		return firesql.NewError(firesql.PlanError, "join condition must reference two collections")
	}
	if p.On != nil {
		return firesql.NewError(firesql.PlanError, "only a single join condition is supported")
	}
	p.On = &JoinSpec{
		LeftPart:   leftPart,
		LeftField:  leftField,
		Op:         op,
		RightPart:  rightPart,
		RightField: rightField,
	}
	return nil
}

func opTakesList(op string) bool {
	switch op {
	case firesql.OpIn, firesql.OpNotIn, firesql.OpArrayContainsAny:
		return true
	}
	return false
}
