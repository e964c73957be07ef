package querybuilder

import (
	"fmt"
	"strings"
)

type InsertRows [][]interface{} // multiple Rows

// buildInsert renders a multi-row INSERT with an optional ON CONFLICT clause.
// Rows whose width differs from the column list make the whole query invalid.
func (q *queryBuilder) buildInsert() (string, []interface{}) {
	if len(q.cols) == 0 {
		return "", nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.cols)), ", ")
	valueTuples := make([]string, 0, len(q.values))
	args := make([]interface{}, 0, len(q.values)*len(q.cols))

	for _, row := range q.values {
		if len(row) != len(q.cols) {
			return "", nil
		}
		valueTuples = append(valueTuples, fmt.Sprintf("(%s)", placeholders))
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.qualifiedTable(), strings.Join(q.cols, ", "), strings.Join(valueTuples, ", "))

	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s)", strings.Join(q.onConflict, ", "))
		if len(q.excludeCols) == 0 {
			return query + " DO NOTHING", args
		}

		sets := make([]string, 0, len(q.excludeCols))
		for _, col := range q.excludeCols {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
		query += " DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return query, args
}
