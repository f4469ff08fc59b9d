// Package assemble builds nested output records from flat, aliased SQL
// rows. See spec.md §4.5.
//
// assemble is pure and DB-agnostic: it never issues a query. The caller
// (internal/driver) supplies each many-valued relationship's already
// fetched, already grouped child rows.
package assemble

import (
	"fmt"

	"entiq/internal/plan"
	"entiq/internal/spec"
	"entiq/internal/transform"
)

// Row is one flat SQL result row keyed by the alias column the planner
// generated (see plan.AliasColumn).
type Row map[string]any

// ChildRow is one many-valued relationship's child row plus, recursively,
// that child's own many-valued relationships' rows.
type ChildRow struct {
	Row  Row
	Many ManyRows
}

// ManyRows maps a many-valued relationship's qualified join column
// (RelSpec.Column) to its child rows, mirroring the DSL's conventional
// many_relationships[<rel_column>] slot.
type ManyRows map[string][]ChildRow

// TransformError reports a transform that failed while assembling a
// specific field of a specific row.
type TransformError struct {
	Table string
	Field string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform failed for %s.%s: %v", e.Table, e.Field, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Assemble builds one nested output record for group table t from a
// single flat row, recursing into promoted single-valued relationships
// (which read the same row) and many-valued relationships (which read
// their own pre-fetched child rows from many).
func Assemble(t *spec.TableSpec, row Row, many ManyRows, reg *transform.Registry) (map[string]any, error) {
	out := map[string]any{}

	for _, f := range t.Fields {
		raw := row[plan.AliasColumn(t.Name, f.Column)]
		val, err := applyTransform(t.Name, f, raw, reg)
		if err != nil {
			return nil, err
		}
		if val == nil {
			continue
		}
		setPath(out, f.Path, val)
	}

	for _, rel := range t.Relationships.One {
		child, err := Assemble(rel.Target, row, many, reg)
		if err != nil {
			return nil, err
		}
		if len(child) == 0 {
			continue
		}
		if len(rel.Path) == 0 {
			mergeInto(out, child)
		} else {
			mergeAtPath(out, rel.Path, child)
		}
	}

	for _, rel := range t.Relationships.Many {
		children := many[rel.Column]
		list := make([]map[string]any, 0, len(children))
		for _, c := range children {
			rec, err := Assemble(rel.Target, c.Row, c.Many, reg)
			if err != nil {
				return nil, err
			}
			list = append(list, rec)
		}
		setPath(out, rel.Path, list)
	}

	return out, nil
}

func applyTransform(table string, f *spec.FieldSpec, raw any, reg *transform.Registry) (any, error) {
	if f.TransformName == "" {
		return raw, nil
	}
	fn, ok := reg.Lookup(f.TransformName)
	if !ok {
		return nil, &TransformError{Table: table, Field: f.Column, Err: &transform.UnknownTransformError{Name: f.TransformName}}
	}
	val, err := fn(raw)
	if err != nil {
		return nil, &TransformError{Table: table, Field: f.Column, Err: err}
	}
	return val, nil
}

func setPath(out map[string]any, path []string, val any) {
	cur := out
	for i := 0; i < len(path)-1; i++ {
		next, ok := cur[path[i]].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[path[i]] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = val
}

func mergeAtPath(out map[string]any, path []string, record map[string]any) {
	cur := out
	for i := 0; i < len(path)-1; i++ {
		next, ok := cur[path[i]].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[path[i]] = next
		}
		cur = next
	}
	last := path[len(path)-1]
	existing, ok := cur[last].(map[string]any)
	if !ok {
		existing = map[string]any{}
		cur[last] = existing
	}
	mergeInto(existing, record)
}

// mergeInto deep-merges src into dst: nested maps recurse, scalar values
// at the same key are overwritten by the later write.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok2 := dst[k].(map[string]any); ok2 {
				mergeInto(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}
