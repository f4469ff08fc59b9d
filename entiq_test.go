package entiq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFlatSpec(t *testing.T) {
	cs, err := Compile(`(Table users :fields "name" "email")`)
	require.NoError(t, err)
	assert.Equal(t, "users", cs.Parsed.Name)
	assert.Equal(t, "users", cs.Grouped.Name)
	assert.Empty(t, cs.Grouped.Relationships.One)
}

func TestCompileInvalidSpec(t *testing.T) {
	_, err := Compile(`(Widget users :fields "name")`)
	require.Error(t, err)
	var ise *InvalidSpecError
	assert.ErrorAs(t, err, &ise)
}

func TestCompileRepeatedJoinTable(t *testing.T) {
	src := `(Table a :fields {["b1_id"] (Table b :fields "x")} {["b2_id"] (Table b :fields "y")})`
	_, err := Compile(src)
	require.Error(t, err)
	var rjt *RepeatedJoinTableError
	assert.ErrorAs(t, err, &rjt)
}
