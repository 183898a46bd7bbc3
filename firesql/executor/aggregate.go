package executor

import (
	"math"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/planner"
)

// aggregateRow folds the result rows into a single row, one field per
// aggregate, named func(column). Rows are the projected (and, for a
// join, merged) output, so the aggregated column is looked up under
// its output name.
func aggregateRow(plan *planner.Plan, rows []firesql.Document) firesql.Document {
	out := firesql.Document{}
	for _, part := range plan.PartOrder() {
		for _, agg := range plan.AggregationFields[part] {
			column := agg.Column
			if name, ok := plan.ColumnNameMap[part][column]; ok {
				column = name
			}
			out[agg.FieldName()] = computeAggregate(agg.Func, column, rows)
		}
	}
	return out
}

// computeAggregate evaluates one aggregate over the result rows. count
// returns the row count; its column argument is ignored. sum, avg, min
// and max consider numeric values only; avg of no values is 0, and
// min/max of no values keep their infinity seeds.
func computeAggregate(fn, column string, rows []firesql.Document) interface{} {
	switch fn {
	case "count":
		return int64(len(rows))

	case "sum", "avg":
		var sum float64
		var n int64
		for _, row := range rows {
			f, ok := firesql.ToFloat64(row[column])
			if !ok {
				continue
			}
			sum += f
			n++
		}
		if fn == "sum" {
			return sum
		}
		if n == 0 {
			return float64(0)
		}
		return sum / float64(n)

	case "min":
		min := math.Inf(1)
		for _, row := range rows {
			if f, ok := firesql.ToFloat64(row[column]); ok && f < min {
				min = f
			}
		}
		return min

	case "max":
		max := math.Inf(-1)
		for _, row := range rows {
			if f, ok := firesql.ToFloat64(row[column]); ok && f > max {
				max = f
			}
		}
		return max
	}
	return nil
}
