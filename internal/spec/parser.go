package spec

import "strings"

// Parse compiles DSL source of the form
//
//	(Table NAME [:id "x"] :fields FIELD_OR_REL ...)
//
// into a parsed (pre-analysis) TableSpec tree. Exactly one top-level
// Table form is expected.
func Parse(src string) (*TableSpec, error) {
	forms, err := newReader(src).readAll()
	if err != nil {
		return nil, err
	}
	if len(forms) != 1 {
		return nil, invalidf("expected exactly one top-level Table form, got %d", len(forms))
	}
	return parseTable(forms[0])
}

func isTableForm(v value) bool {
	return v.kind == kindList && len(v.items) >= 1 &&
		v.items[0].kind == kindSym && v.items[0].text == "Table"
}

func parseTable(v value) (*TableSpec, error) {
	if v.kind != kindList {
		return nil, invalidf("line %d: expected a (Table ...) form", v.line)
	}
	if len(v.items) < 2 || v.items[0].kind != kindSym || v.items[0].text != "Table" {
		return nil, invalidf("line %d: form must start with the Table tag followed by a symbol", v.line)
	}
	nameV := v.items[1]
	if nameV.kind != kindSym {
		return nil, invalidf("line %d: table name must be a symbol, got %v", v.line, nameV)
	}
	ts := &TableSpec{Name: nameV.text}

	idx := 2
	if idx < len(v.items) && v.items[idx].isKeyword("id") {
		idx++
		if idx >= len(v.items) || v.items[idx].kind != kindStr {
			return nil, invalidf("line %d: :id must be followed by a string", v.line)
		}
		ts.ID = v.items[idx].text
		idx++
	} else {
		ts.ID = defaultID(ts.Name)
		ts.IDGenerated = true
	}

	if idx >= len(v.items) || !v.items[idx].isKeyword("fields") {
		return nil, invalidf("line %d: table %q is missing :fields", v.line, ts.Name)
	}
	idx++

	for ; idx < len(v.items); idx++ {
		node, err := parseFieldOrRel(ts, v.items[idx])
		if err != nil {
			return nil, err
		}
		ts.Children = append(ts.Children, node)
	}
	return ts, nil
}

func parseFieldOrRel(parent *TableSpec, v value) (Node, error) {
	switch v.kind {
	case kindStr:
		return &FieldSpec{Column: v.text, Path: []string{v.text}}, nil
	case kindVec:
		return parseFieldVec(v)
	case kindMap:
		return parseRelMap(parent, v)
	default:
		return nil, invalidf("line %d: expected a field (string or vector) or a relationship (map), got %v", v.line, v)
	}
}

func parseFieldVec(v value) (*FieldSpec, error) {
	if len(v.items) == 0 || v.items[0].kind != kindStr {
		return nil, invalidf("line %d: a field vector must start with a column string", v.line)
	}
	fs := &FieldSpec{Column: v.items[0].text}
	alias, _, extra, err := parseOptions(v.items[1:])
	if err != nil {
		return nil, err
	}
	fs.Alias = alias
	fs.Extra = extra
	if name, ok := extra["xform"]; ok {
		s, ok := name.(string)
		if !ok {
			return nil, invalidf("line %d: :xform value must be a name, got %v", v.line, name)
		}
		fs.TransformName = s
	}
	fs.Path = computePath(fs.Column, fs.Alias)
	return fs, nil
}

// parseOptions scans a trailing option list of the form
// :keyword value? :keyword value? ... Recognized: :as (string value),
// :flatten (boolean flag). Anything else followed by a string or symbol
// value is stored verbatim in extra; anything else with no following
// value (or followed by another keyword) is stored as a boolean flag.
// Any other following value (a list, vector or map) is an error.
func parseOptions(items []value) (alias string, flatten bool, extra map[string]any, err error) {
	i := 0
	for i < len(items) {
		cur := items[i]
		if cur.kind != kindKey {
			return "", false, nil, invalidf("line %d: expected an option keyword, got %v", cur.line, cur)
		}
		name := cur.text
		switch name {
		case "as":
			i++
			if i >= len(items) || items[i].kind != kindStr {
				return "", false, nil, invalidf("line %d: :as must be followed by a string", cur.line)
			}
			alias = items[i].text
			i++
		case "flatten":
			flatten = true
			i++
		default:
			if i+1 < len(items) && items[i+1].kind != kindKey {
				v, err := scalarOf(items[i+1])
				if err != nil {
					return "", false, nil, err
				}
				if extra == nil {
					extra = map[string]any{}
				}
				extra[name] = v
				i += 2
			} else {
				if extra == nil {
					extra = map[string]any{}
				}
				extra[name] = true
				i++
			}
		}
	}
	return alias, flatten, extra, nil
}

func scalarOf(v value) (any, error) {
	switch v.kind {
	case kindStr, kindSym:
		return v.text, nil
	case kindKey:
		return ":" + v.text, nil
	default:
		return nil, invalidf("line %d: unsupported option value %v", v.line, v)
	}
}

func parseRelMap(parent *TableSpec, v value) (*RelSpec, error) {
	if len(v.pairs) != 1 {
		return nil, invalidf("line %d: a relationship map must have exactly one join key, got %d", v.line, len(v.pairs))
	}
	joinSpec, tableExpr := v.pairs[0][0], v.pairs[0][1]

	var rawColumn, alias string
	var flatten bool
	var extra map[string]any
	switch joinSpec.kind {
	case kindStr:
		rawColumn = joinSpec.text
	case kindVec:
		if len(joinSpec.items) == 0 || joinSpec.items[0].kind != kindStr {
			return nil, invalidf("line %d: a join spec vector must start with a column string", joinSpec.line)
		}
		rawColumn = joinSpec.items[0].text
		var err error
		alias, flatten, extra, err = parseOptions(joinSpec.items[1:])
		if err != nil {
			return nil, err
		}
	default:
		return nil, invalidf("line %d: a join spec must be a string or a vector, got %v", joinSpec.line, joinSpec)
	}

	if !isTableForm(tableExpr) {
		return nil, invalidf("line %d: relationship value must be a (Table ...) expression", tableExpr.line)
	}
	target, err := parseTable(tableExpr)
	if err != nil {
		return nil, err
	}

	var qualified string
	if IsReverse(rawColumn) {
		qualified = target.Name + "/" + rawColumn
	} else {
		qualified = parent.Name + "/" + rawColumn
	}

	return &RelSpec{
		SourceTable: parent,
		Column:      qualified,
		Target:      target,
		Alias:       alias,
		Flatten:     flatten,
		Extra:       extra,
	}, nil
}

func computePath(column, alias string) []string {
	if alias == "" {
		return []string{column}
	}
	return strings.Split(alias, ".")
}
