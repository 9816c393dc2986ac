// Package querysql compiles queryir run queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/bfjit/internal/queryir"
)

// OrderBy is appended to every compiled query: newest run first, with the
// run ID as a deterministic tiebreaker.
const OrderBy = "ORDER BY seq DESC, id COLLATE BINARY ASC"

// Compile converts q into the clause that follows "SELECT ... FROM runs":
// an optional WHERE, the fixed ORDER BY and a LIMIT.
//
// Values are always bound as ? parameters, never interpolated. Field names
// are written into the SQL only after queryir.Validate has accepted them.
func Compile(q queryir.Select) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	var sb strings.Builder
	var params []any

	if q.Filter != nil {
		where, whereParams, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString("WHERE ")
		sb.WriteString(where)
		sb.WriteString(" ")
		params = append(params, whereParams...)
	}

	sb.WriteString(OrderBy)

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	sb.WriteString(" LIMIT ?")
	params = append(params, limit)

	return sb.String(), params, nil
}

func compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return fmt.Sprintf("%s = ?", pred.Field), []any{pred.Value}, nil
	case queryir.AtLeast:
		return fmt.Sprintf("%s >= ?", pred.Field), []any{pred.Value}, nil
	case queryir.And:
		return compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}
