package spec

// valueKind tags the shape of a parsed DSL node, per the tagged-variant
// design described for a typed re-implementation: StringField, FieldVec,
// RelMap, and TableList all become one of these before conversion into
// FieldSpec/RelSpec/TableSpec.
type valueKind int

const (
	kindList valueKind = iota // (...)
	kindVec                   // [...]
	kindMap                   // {...}
	kindStr                   // "..."
	kindSym                   // bare word
	kindKey                   // :keyword
)

// value is the untyped parse tree produced by the reader, one level
// below the typed TableSpec/FieldSpec/RelSpec AST.
type value struct {
	kind  valueKind
	text  string // for kindStr, kindSym, kindKey
	items []value
	pairs [][2]value // for kindMap, in declaration order
	line  int
}

func (v value) isKeyword(name string) bool {
	return v.kind == kindKey && v.text == name
}
