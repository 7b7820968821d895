package core

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates parameterized WHERE conditions for PostgreSQL.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "col = $n". Empty values are skipped.
func (wb *WhereBuilder) Add(col, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", col, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddSearch appends a case-insensitive substring match of term against any
// of cols. LIKE wildcards in term match literally. Empty terms are skipped.
func (wb *WhereBuilder) AddSearch(term string, cols ...string) {
	if term == "" || len(cols) == 0 {
		return
	}
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, wb.argIndex)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, "%"+escapeLike(term)+"%")
	wb.argIndex++
}

// Arg registers a value not tied to a condition (LIMIT, OFFSET) and
// returns its placeholder.
func (wb *WhereBuilder) Arg(value interface{}) string {
	p := fmt.Sprintf("$%d", wb.argIndex)
	wb.args = append(wb.args, value)
	wb.argIndex++
	return p
}

// Build returns " WHERE ..." (or "" with no conditions) and the arguments
// registered so far.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.conditions) == 0 {
		if len(wb.args) == 0 {
			return "", nil
		}
		return "", wb.args
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// escapeLike escapes the LIKE metacharacters using the default backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
