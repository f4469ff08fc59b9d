// Package spec defines the typed AST for the declarative entity
// specification and parses the DSL into it.
//
// A spec names a root table, its columns, and its relationships to other
// tables. Before analysis (see package analyze) a TableSpec's Children
// holds fields and relationships in the order they were declared; after
// analysis a TableSpec carries only leaf Fields plus a Relationships map.
package spec

import "fmt"

// TableSpec describes one table in the declarative entity spec.
type TableSpec struct {
	Name        string
	ID          string
	IDGenerated bool

	// Children holds fields and relationships in declaration order.
	// Populated by the parser; consumed and cleared by the analyzer.
	Children []Node

	// Fields holds leaf fields only. Empty until analysis runs.
	Fields []*FieldSpec

	// Relationships holds classified relationships. Empty until
	// analysis runs.
	Relationships Relationships
}

// Relationships partitions a table's relationships by cardinality.
type Relationships struct {
	One  []*RelSpec
	Many []*RelSpec
}

// Node is either a *FieldSpec or a *RelSpec, in the pre-analysis
// Children list of a TableSpec.
type Node interface {
	node()
}

// FieldSpec is a leaf column with an optional output alias and transform.
type FieldSpec struct {
	Column string
	// Alias is the raw output name as written in the spec; a dot means
	// a nested output path. Empty means "use Column".
	Alias string
	// Path is Alias split on '.', or []string{Column} when Alias is
	// empty. Computed once at parse time since it is a pure function
	// of Column and Alias.
	Path []string
	// TransformName names a registry entry (builtin or user-supplied)
	// to apply to the raw column value before output. Empty means the
	// identity transform.
	TransformName string
	// Extra carries any well-formed but unrecognized options verbatim,
	// keyed by option name without the leading colon.
	Extra map[string]any
}

func (*FieldSpec) node() {}

// RelKind classifies a relationship by cardinality, assigned during
// analysis.
type RelKind int

const (
	// KindUnknown marks a relationship not yet classified by the
	// analyzer.
	KindUnknown RelKind = iota
	KindOne
	KindMany
)

func (k RelKind) String() string {
	switch k {
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	default:
		return "unknown"
	}
}

// RelSpec describes a relationship from a source table to a target table.
//
// Column is the qualified join column, "table/col". An underscore prefix
// on the unqualified column name (e.g. "_album_id") marks a reverse
// reference: the foreign key lives on the target table pointing back at
// the source, making the relationship many-valued. Otherwise the source
// table holds the foreign key and the relationship is single-valued.
type RelSpec struct {
	SourceTable *TableSpec
	Column      string
	Target      *TableSpec
	Alias       string
	Flatten     bool
	Extra       map[string]any

	// Kind and Path are set by the analyzer; both are zero-valued
	// (KindUnknown, nil) on a freshly parsed RelSpec.
	Kind RelKind
	Path []string
}

func (*RelSpec) node() {}

// TableNamespace returns the table name portion of a qualified
// "table/col" reference.
func TableNamespace(qualifiedColumn string) string {
	for i, r := range qualifiedColumn {
		if r == '/' {
			return qualifiedColumn[:i]
		}
	}
	return ""
}

// ColumnName returns the column name portion of a qualified "table/col"
// reference, including any leading underscore.
func ColumnName(qualifiedColumn string) string {
	for i, r := range qualifiedColumn {
		if r == '/' {
			return qualifiedColumn[i+1:]
		}
	}
	return qualifiedColumn
}

// IsReverse reports whether an unqualified or qualified column name
// carries the underscore prefix that marks a reverse (many-valued)
// reference.
func IsReverse(column string) bool {
	name := ColumnName(column)
	return len(name) > 0 && name[0] == '_'
}

// UnprefixedColumn strips the leading underscore from a reverse
// reference's unqualified column name, if present.
func UnprefixedColumn(column string) string {
	if len(column) > 0 && column[0] == '_' {
		return column[1:]
	}
	return column
}

// InvalidSpecError reports a structural problem in the user DSL: wrong
// shape, missing Table tag, malformed relationship map.
type InvalidSpecError struct {
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid spec: %s", e.Reason)
}

func invalidf(format string, args ...any) error {
	return &InvalidSpecError{Reason: fmt.Sprintf(format, args...)}
}

func defaultID(tableName string) string {
	return tableName + "_id"
}

// Compiled is the result of compiling a DSL document: the parsed tree
// (original nesting, needed for recursive multi-valued descent) plus its
// analyzed, grouped form (drives per-group SQL). See spec.md §3.
type Compiled struct {
	Parsed  *TableSpec
	Grouped *TableSpec
}
