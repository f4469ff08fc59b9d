package driver

import (
	"context"
	"fmt"
	"sort"

	"entiq/internal/assemble"
	"entiq/internal/plan"
	"entiq/internal/selectopt"
	"entiq/internal/spec"
	"entiq/internal/transform"
)

func resolveIDs(ctx context.Context, db *DB, cs *spec.Compiled, sel selectopt.Selection) ([]any, error) {
	// :ids selects an explicit, caller-ordered id list (Selection's
	// highest-precedence predicate). Records are yielded in that order,
	// so it is used verbatim rather than round-tripped through a query
	// that would come back in SQL-native order and silently drop any id
	// with no matching row.
	if len(sel.IDs) > 0 {
		return sel.IDs, nil
	}

	table, col := cs.Grouped.Name, cs.Grouped.ID
	if sel.UpdateTable != nil {
		table, col = sel.UpdateTable.Table, sel.UpdateTable.ID
	}
	idCol := table + "." + col

	where, args, err := selectopt.Where(idCol, sel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", idCol, table)
	if where != "" {
		query += " WHERE " + where
	}

	rows, err := db.queryRows(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []any
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, dbErrorf("scan id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErrorf("rows", err)
	}
	return ids, nil
}

// loadBatch fetches and assembles every record for a single batch of
// root ids: the group query, then every many-valued relationship's
// driving query, recursively, per spec.md §4.6 steps 3–4.
func loadBatch(ctx context.Context, db *DB, cs *spec.Compiled, batchIDs []any, reg *transform.Registry, trace tracer) ([]Record, error) {
	idAlias := plan.AliasColumn(cs.Grouped.Name, cs.Grouped.ID)
	placeholderCol := cs.Grouped.Name + "." + cs.Grouped.ID
	where := placeholderCol + " IN (" + placeholders(len(batchIDs)) + ")"

	sqlText, _, args, err := plan.GroupSelect(cs.Grouped, where, batchIDs)
	if err != nil {
		return nil, err
	}
	trace.tracef("group %s: %s", cs.Grouped.Name, sqlText)

	parentRows, err := db.queryAll(ctx, sqlText, args)
	if err != nil {
		return nil, err
	}

	rootMany, err := manyRowsForGroup(ctx, db, cs.Grouped, parentRows, trace)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(parentRows))
	for _, row := range parentRows {
		id := row[idAlias]
		rec, err := assemble.Assemble(cs.Grouped, row, rootMany[id], reg)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{ID: id, Data: rec})
	}

	// The group query returns rows in SQL-native order; put them back in batchIDs order.
	key := func(id any) string {
		if b, ok := id.([]byte); ok {
			return string(b)
		}
		return fmt.Sprint(id)
	}
	rank := make(map[string]int, len(batchIDs))
	for i, id := range batchIDs {
		rank[key(id)] = i
	}
	sort.SliceStable(records, func(a, b int) bool {
		return rank[key(records[a].ID)] < rank[key(records[b].ID)]
	})
	return records, nil
}

// manyRowsForGroup resolves every many-valued relationship attached to
// group, recursing into each target's own many-valued relationships, and
// returns each row's ManyRows keyed by that row's own id value.
//
// A many rel promoted out of a single-valued target (§4.2 step 5, "Many
// promotion") still has its FK column (on the rel's target) referencing
// that intermediate table's id, not group's own id — its SourceTable
// names the table whose id the FK holds. That intermediate id is present in rows via the
// promoted single-valued join, so the driving query is keyed by
// SourceTable's id, and each fetched child is fanned out to every row in
// this group that shares that source id (more than one row can, since
// the single-valued join is many-to-one).
func manyRowsForGroup(ctx context.Context, db *DB, group *spec.TableSpec, rows []assemble.Row, trace tracer) (map[any]assemble.ManyRows, error) {
	result := make(map[any]assemble.ManyRows, len(rows))
	idAlias := plan.AliasColumn(group.Name, group.ID)
	for _, r := range rows {
		result[r[idAlias]] = assemble.ManyRows{}
	}
	if len(group.Relationships.Many) == 0 || len(rows) == 0 {
		return result, nil
	}

	for _, rel := range group.Relationships.Many {
		srcIDAlias := plan.AliasColumn(rel.SourceTable.Name, rel.SourceTable.ID)
		groupIDsBySource := groupIDsBySourceID(rows, idAlias, srcIDAlias)
		parentIDs := make([]any, 0, len(groupIDsBySource))
		for srcID := range groupIDsBySource {
			parentIDs = append(parentIDs, srcID)
		}

		sqlText, args, fkAlias, ok, err := plan.ManySelect(rel, parentIDs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		trace.tracef("many %s: %s", rel.Column, sqlText)

		childRows, err := db.queryAll(ctx, sqlText, args)
		if err != nil {
			return nil, err
		}

		childMany, err := manyRowsForGroup(ctx, db, rel.Target, childRows, trace)
		if err != nil {
			return nil, err
		}

		childIDAlias := plan.AliasColumn(rel.Target.Name, rel.Target.ID)
		for _, cr := range childRows {
			srcID := cr[fkAlias]
			child := assemble.ChildRow{Row: cr, Many: childMany[cr[childIDAlias]]}
			for _, groupID := range groupIDsBySource[srcID] {
				entry := result[groupID]
				if entry == nil {
					entry = assemble.ManyRows{}
				}
				entry[rel.Column] = append(entry[rel.Column], child)
				result[groupID] = entry
			}
		}
	}
	return result, nil
}

// groupIDsBySourceID maps each distinct value of a many rel's source-table
// id column (srcIDAlias) to every row's own group id (idAlias) sharing
// that value. When srcIDAlias is the group's own id column this degenerates
// to a 1:1 mapping, which is exactly the root-attached case.
func groupIDsBySourceID(rows []assemble.Row, idAlias, srcIDAlias string) map[any][]any {
	out := make(map[any][]any, len(rows))
	for _, r := range rows {
		srcID := r[srcIDAlias]
		out[srcID] = append(out[srcID], r[idAlias])
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
