// Package plan implements the SQL planner: column aliasing, dependency-
// ordered join emission, and the driving SELECT statements for a query
// group and its many-valued relationships. See spec.md §4.4.
//
// plan is pure and DB-agnostic: it builds SQL strings and argument
// slices and never touches database/sql. internal/driver executes what
// it emits.
package plan

import "strings"

const aliasSep = "_sqlfield_"

// Column names a physical table.column pair.
type Column struct {
	Table string
	Col   string
}

// AliasColumn builds the deterministic SELECT alias for a table/column
// pair: <table>_sqlfield_<col>.
func AliasColumn(table, col string) string {
	return table + aliasSep + col
}

// ParseAlias splits an alias produced by AliasColumn back into its table
// and column parts.
func ParseAlias(alias string) (table, col string, ok bool) {
	i := strings.Index(alias, aliasSep)
	if i < 0 {
		return "", "", false
	}
	return alias[:i], alias[i+len(aliasSep):], true
}
