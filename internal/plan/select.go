package plan

import (
	"fmt"
	"strings"

	"entiq/internal/spec"
)

// GroupSelect builds the single SELECT that covers a query group: the
// root table's own fields plus every promoted single-valued
// relationship's target fields, joined with dependency-ordered LEFT
// JOINs. where/args, if where is non-empty, are appended verbatim as the
// WHERE clause and its parameter list — the caller (internal/selectopt,
// internal/driver) owns predicate precedence and parameter binding.
//
// It returns the SQL text and the alias map (aliased column -> "table/col")
// for every column in the SELECT list.
func GroupSelect(t *spec.TableSpec, where string, args []any) (sqlText string, aliasMap map[string]string, outArgs []any, err error) {
	ordered, err := OrderJoins(t)
	if err != nil {
		return "", nil, nil, err
	}
	sqlText, aliasMap = buildSelect(t, ordered, nil, where)
	return sqlText, aliasMap, args, nil
}

// ManySelect builds the driving query for a many-valued relationship:
// the target's own group, plus its foreign-key column added as an extra
// selected column, filtered to the given parent IDs. It returns ok=false
// (and no query) when parentIDs is empty, per spec.md §4.4.
func ManySelect(rel *spec.RelSpec, parentIDs []any) (sqlText string, args []any, fkAlias string, ok bool, err error) {
	if len(parentIDs) == 0 {
		return "", nil, "", false, nil
	}
	ordered, err := OrderJoins(rel.Target)
	if err != nil {
		return "", nil, "", false, err
	}
	fkCol := spec.UnprefixedColumn(spec.ColumnName(rel.Column))
	where := fmt.Sprintf("%s.%s IN (%s)", rel.Target.Name, fkCol, placeholders(len(parentIDs)))
	extra := []Column{{Table: rel.Target.Name, Col: fkCol}}
	sqlText, _ = buildSelect(rel.Target, ordered, extra, where)
	return sqlText, parentIDs, AliasColumn(rel.Target.Name, fkCol), true, nil
}

func buildSelect(t *spec.TableSpec, ordered []*spec.RelSpec, extra []Column, where string) (string, map[string]string) {
	cols := collectColumns(t, ordered)
	cols = append(cols, extra...)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	aliasMap := make(map[string]string, len(cols))
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		alias := AliasColumn(c.Table, c.Col)
		fmt.Fprintf(&sb, "%s.%s AS %s", c.Table, c.Col, alias)
		aliasMap[alias] = c.Table + "/" + c.Col
	}

	fmt.Fprintf(&sb, " FROM %s", t.Name)
	for _, rel := range ordered {
		col := spec.UnprefixedColumn(spec.ColumnName(rel.Column))
		fmt.Fprintf(&sb, " LEFT JOIN %s ON %s.%s = %s.%s",
			rel.Target.Name, rel.SourceTable.Name, col, rel.Target.Name, rel.Target.ID)
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	return sb.String(), aliasMap
}

// collectColumns is the union of a table's id and fields, plus the id
// and fields of every promoted single-valued relationship target, in
// declaration/join order.
func collectColumns(t *spec.TableSpec, ordered []*spec.RelSpec) []Column {
	cols := make([]Column, 0, 1+len(t.Fields))
	cols = append(cols, Column{Table: t.Name, Col: t.ID})
	for _, f := range t.Fields {
		cols = append(cols, Column{Table: t.Name, Col: f.Column})
	}
	for _, rel := range ordered {
		cols = append(cols, Column{Table: rel.Target.Name, Col: rel.Target.ID})
		for _, f := range rel.Target.Fields {
			cols = append(cols, Column{Table: rel.Target.Name, Col: f.Column})
		}
	}
	return cols
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
