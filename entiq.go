// Package entiq extracts tree-shaped entities from a relational database
// described by a declarative spec: a nested literal naming a root table,
// its columns, and its relationships to other tables. Compile turns the
// spec into a CompiledSpec; Entity, EntityIDs, and Entities run it
// against a live connection.
package entiq

import (
	"context"

	"entiq/internal/analyze"
	"entiq/internal/driver"
	"entiq/internal/selectopt"
	"entiq/internal/spec"
)

// CompiledSpec is the parsed and analyzed form of a DSL document: the
// parsed tree (original nesting, needed for recursive multi-valued
// descent) plus the grouped tree the SQL planner drives from. It is
// immutable and safe to share across concurrent extractions.
type CompiledSpec = spec.Compiled

// Compile parses and analyzes a DSL document. The result is pure and
// cacheable by the caller.
func Compile(dsl string) (*CompiledSpec, error) {
	parsed, err := spec.Parse(dsl)
	if err != nil {
		return nil, err
	}
	grouped, err := analyze.Analyze(parsed)
	if err != nil {
		return nil, err
	}
	return &CompiledSpec{Parsed: parsed, Grouped: grouped}, nil
}

// Entity fetches the single entity rooted at id. It returns (nil, nil)
// when the root row is absent.
func Entity(ctx context.Context, db *driver.DB, cs *CompiledSpec, id any) (map[string]any, error) {
	return driver.FetchOne(ctx, db, cs, id)
}

// EntityIDs eagerly resolves the root-table id list matching sel. An
// empty Selection returns every id.
func EntityIDs(ctx context.Context, db *driver.DB, cs *CompiledSpec, sel selectopt.Selection) ([]any, error) {
	return driver.FetchIDs(ctx, db, cs, sel)
}

// Entities opens a lazy record stream over cs matching opts.Selection,
// batched per opts.BatchSize (falling back to the driver's configured
// default when nil).
func Entities(ctx context.Context, db *driver.DB, cs *CompiledSpec, opts driver.ExtractOptions) (*driver.Stream, error) {
	return driver.NewStream(ctx, db, cs, opts)
}
