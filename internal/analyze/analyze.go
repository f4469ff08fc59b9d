package analyze

import "entiq/internal/spec"

// Analyze compiles a parsed TableSpec into its grouped form. It never
// mutates its input: every returned TableSpec and RelSpec is freshly
// built, so re-analyzing a compiled spec (calling Analyze on its own
// output) is safe and yields an equivalent tree — analysis is
// idempotent.
func Analyze(t *spec.TableSpec) (*spec.TableSpec, error) {
	return analyzeTable(t)
}

func analyzeTable(t *spec.TableSpec) (*spec.TableSpec, error) {
	out := &spec.TableSpec{Name: t.Name, ID: t.ID, IDGenerated: t.IDGenerated}

	fields, rels := splitChildren(t)
	out.Fields = fields

	var ones, manys []*spec.RelSpec
	for _, r := range rels {
		// Classification is a pure function of the rel itself: the
		// namespace of its qualified column against the name of the
		// table that actually owns the join column. This stays true
		// across promotion and across repeated analysis, since
		// SourceTable is never rewritten once the parser sets it.
		kind := spec.KindOne
		if spec.TableNamespace(r.Column) != r.SourceTable.Name {
			kind = spec.KindMany
		}

		// A rel arriving with Path already set has already been through
		// analysis once (fresh, parser-built rels never set it — see
		// spec.RelSpec.Path's doc comment). That happens whenever
		// splitChildren pulls rels out of an already-grouped
		// Relationships (a direct rel from a prior pass, or one promoted
		// up from a descendant): its Path already carries whatever
		// promotion prefix put it there, and recomputing from Column
		// alone would recompute it as if it were a fresh direct child,
		// silently dropping that prefix. Reusing it verbatim is what
		// makes Analyze a fixed point.
		path := r.Path
		if path == nil {
			path = outputPath(r, kind)
		}

		analyzedTarget, err := analyzeTable(r.Target)
		if err != nil {
			return nil, err
		}

		direct := &spec.RelSpec{
			SourceTable: r.SourceTable,
			Column:      r.Column,
			Target:      analyzedTarget,
			Alias:       r.Alias,
			Flatten:     r.Flatten,
			Extra:       r.Extra,
			Kind:        kind,
			Path:        path,
		}

		if kind == spec.KindMany {
			manys = append(manys, direct)
			continue
		}

		// Single-valued: fuse the target's already-promoted one-list
		// and many-list into this group, prefixed by this rel's path,
		// and strip them from the copy of the target we keep so that
		// no TableSpec reachable through :one has a non-empty :one
		// list (promotion completeness).
		promotedOnes := prefixRels(analyzedTarget.Relationships.One, path)
		promotedManys := prefixRels(analyzedTarget.Relationships.Many, path)

		fused := &spec.TableSpec{
			Name:        analyzedTarget.Name,
			ID:          analyzedTarget.ID,
			IDGenerated: analyzedTarget.IDGenerated,
			Fields:      analyzedTarget.Fields,
		}
		direct.Target = fused

		ones = append(ones, direct)
		ones = append(ones, promotedOnes...)
		manys = append(manys, promotedManys...)
	}

	if err := checkRepeatedTables(t.Name, ones); err != nil {
		return nil, err
	}

	out.Relationships = spec.Relationships{One: ones, Many: manys}
	return out, nil
}

// splitChildren normalizes a TableSpec into its leaf fields and its
// relationships, regardless of whether it is freshly parsed (data lives
// in Children) or already analyzed (data lives in Fields/Relationships).
func splitChildren(t *spec.TableSpec) ([]*spec.FieldSpec, []*spec.RelSpec) {
	if len(t.Children) > 0 {
		var fields []*spec.FieldSpec
		var rels []*spec.RelSpec
		for _, n := range t.Children {
			switch v := n.(type) {
			case *spec.FieldSpec:
				fields = append(fields, v)
			case *spec.RelSpec:
				rels = append(rels, v)
			}
		}
		return fields, rels
	}
	rels := make([]*spec.RelSpec, 0, len(t.Relationships.One)+len(t.Relationships.Many))
	rels = append(rels, t.Relationships.One...)
	rels = append(rels, t.Relationships.Many...)
	return t.Fields, rels
}

// outputPath computes a relationship's output path per spec.md §3:
// flatten wins for one-valued rels (path []); else an explicit alias;
// else a many-valued rel defaults to "_<column>"; else the bare column.
func outputPath(r *spec.RelSpec, kind spec.RelKind) []string {
	if r.Flatten && kind == spec.KindOne {
		return []string{}
	}
	if r.Alias != "" {
		return splitAlias(r.Alias)
	}
	col := spec.ColumnName(r.Column)
	if kind == spec.KindMany {
		return []string{"_" + spec.UnprefixedColumn(col)}
	}
	return []string{col}
}

func splitAlias(alias string) []string {
	var out []string
	start := 0
	for i := 0; i < len(alias); i++ {
		if alias[i] == '.' {
			out = append(out, alias[start:i])
			start = i + 1
		}
	}
	return append(out, alias[start:])
}

func prefixRels(rels []*spec.RelSpec, prefix []string) []*spec.RelSpec {
	if len(rels) == 0 {
		return nil
	}
	out := make([]*spec.RelSpec, len(rels))
	for i, r := range rels {
		newPath := make([]string, 0, len(prefix)+len(r.Path))
		newPath = append(newPath, prefix...)
		newPath = append(newPath, r.Path...)
		cp := *r
		cp.Path = newPath
		out[i] = &cp
	}
	return out
}

func checkRepeatedTables(source string, ones []*spec.RelSpec) error {
	seen := map[string]bool{}
	var dupes []string
	for _, r := range ones {
		name := r.Target.Name
		if seen[name] {
			dupes = append(dupes, name)
		}
		seen[name] = true
	}
	if len(dupes) > 0 {
		return &RepeatedJoinTableError{Source: source, Tables: dupes}
	}
	return nil
}
