package executor

import (
	"regexp"
	"strings"

	"github.com/bennycheung/PyFireSQL/firesql"
)

// likePattern compiles a SQL LIKE pattern into a start-anchored regular
// expression: % matches any run of characters, everything else is
// literal.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		if r == '%' {
			b.WriteString(".*")
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, firesql.NewError(firesql.TypeError, "invalid LIKE pattern %q: %v", pattern, err)
	}
	return re, nil
}

// filterDocuments applies the residual (like, not_like) predicates in
// memory. A document whose field is absent or not a string never
// matches either form.
func filterDocuments(docs firesql.Documents, predicates []firesql.Predicate) (firesql.Documents, error) {
	type matcher struct {
		pred firesql.Predicate
		re   *regexp.Regexp
	}

	matchers := make([]matcher, 0, len(predicates))
	for _, pred := range predicates {
		pattern, ok := pred.Value.(string)
		if !ok {
			return nil, firesql.NewError(firesql.TypeError, "LIKE pattern must be a string, got %T", pred.Value)
		}
		re, err := likePattern(pattern)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, matcher{pred: pred, re: re})
	}

	results := firesql.Documents{}
	for id, doc := range docs {
		keep := true
		for _, m := range matchers {
			value, present := firesql.FieldValue(doc, m.pred.Field)
			text, isString := value.(string)
			if !present || !isString {
				keep = false
				break
			}
			matched := m.re.MatchString(text)
			if m.pred.Op == firesql.OpNotLike {
				matched = !matched
			}
			if !matched {
				keep = false
				break
			}
		}
		if keep {
			results[id] = doc
		}
	}
	return results, nil
}
