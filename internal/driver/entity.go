package driver

import (
	"context"

	"entiq/internal/selectopt"
	"entiq/internal/spec"
	"entiq/internal/transform"
)

// FetchOne resolves the single entity with root id, applying only the
// builtin transform registry. It returns (nil, nil) when the root row is
// absent — the transformer is never invoked on a missing row.
func FetchOne(ctx context.Context, db *DB, cs *spec.Compiled, id any) (map[string]any, error) {
	records, err := loadBatch(ctx, db, cs, []any{id}, transform.NewRegistry(nil), newTracer(nil))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].Data, nil
}

// FetchIDs eagerly resolves the root-table id list for sel. An empty
// Selection returns every id.
func FetchIDs(ctx context.Context, db *DB, cs *spec.Compiled, sel selectopt.Selection) ([]any, error) {
	return resolveIDs(ctx, db, cs, sel)
}
