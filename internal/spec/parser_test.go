package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlatTable(t *testing.T) {
	ts, err := Parse(`(Table users :fields "name" "email")`)
	require.NoError(t, err)
	assert.Equal(t, "users", ts.Name)
	assert.Equal(t, "users_id", ts.ID)
	assert.True(t, ts.IDGenerated)
	require.Len(t, ts.Children, 2)

	f0, ok := ts.Children[0].(*FieldSpec)
	require.True(t, ok)
	assert.Equal(t, "name", f0.Column)
	assert.Equal(t, []string{"name"}, f0.Path)
}

func TestParseExplicitID(t *testing.T) {
	ts, err := Parse(`(Table users :id "uid" :fields "name")`)
	require.NoError(t, err)
	assert.Equal(t, "uid", ts.ID)
	assert.False(t, ts.IDGenerated)
}

func TestParseFieldVecWithAliasAndTransform(t *testing.T) {
	ts, err := Parse(`(Table users :fields ["avatar" :xform "binary-string"] ["full_name" :as "name.full"])`)
	require.NoError(t, err)
	require.Len(t, ts.Children, 2)

	f0 := ts.Children[0].(*FieldSpec)
	assert.Equal(t, "avatar", f0.Column)
	assert.Equal(t, "binary-string", f0.TransformName)

	f1 := ts.Children[1].(*FieldSpec)
	assert.Equal(t, "full_name", f1.Column)
	assert.Equal(t, "name.full", f1.Alias)
	assert.Equal(t, []string{"name", "full"}, f1.Path)
}

func TestParseUnrecognizedOptionPreservedVerbatim(t *testing.T) {
	ts, err := Parse(`(Table users :fields ["name" :indexed])`)
	require.NoError(t, err)
	f0 := ts.Children[0].(*FieldSpec)
	assert.Equal(t, true, f0.Extra["indexed"])
}

func TestParseFlattenedRelationship(t *testing.T) {
	src := `(Table album :fields "title" {["artist_id" :flatten] (Table artist :fields "name")})`
	ts, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, ts.Children, 2)

	rel, ok := ts.Children[1].(*RelSpec)
	require.True(t, ok)
	assert.True(t, rel.Flatten)
	assert.Equal(t, "album/artist_id", rel.Column)
	assert.Equal(t, "artist", rel.Target.Name)
	assert.Same(t, ts, rel.SourceTable)
}

func TestParseReverseRelationshipAliased(t *testing.T) {
	src := `(Table album :fields "title" {["_album_id" :as "tracks"] (Table tracks :fields "name")})`
	ts, err := Parse(src)
	require.NoError(t, err)
	rel := ts.Children[1].(*RelSpec)
	assert.Equal(t, "tracks/_album_id", rel.Column)
	assert.Equal(t, "tracks", rel.Alias)
}

func TestParseNestedTables(t *testing.T) {
	src := `(Table a :fields {["b_id"] (Table b :fields {["c_id"] (Table c :fields "x")})})`
	ts, err := Parse(src)
	require.NoError(t, err)
	relB := ts.Children[0].(*RelSpec)
	assert.Equal(t, "a/b_id", relB.Column)
	require.Len(t, relB.Target.Children, 1)
	relC := relB.Target.Children[0].(*RelSpec)
	assert.Equal(t, "b/c_id", relC.Column)
}

func TestParseInvalidMissingTableTag(t *testing.T) {
	_, err := Parse(`(Widget users :fields "name")`)
	require.Error(t, err)
	var ise *InvalidSpecError
	assert.ErrorAs(t, err, &ise)
}

func TestParseInvalidMissingFields(t *testing.T) {
	_, err := Parse(`(Table users)`)
	require.Error(t, err)
}

func TestParseInvalidRelationshipTwoKeys(t *testing.T) {
	src := `(Table a :fields {"b_id" (Table b :fields "x") "c_id" (Table c :fields "y")})`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseInvalidRelationshipValueNotTable(t *testing.T) {
	src := `(Table a :fields {"b_id" "not-a-table"})`
	_, err := Parse(src)
	require.Error(t, err)
}

func TestParseInvalidShape(t *testing.T) {
	_, err := Parse(`(Table a :fields 42)`)
	require.Error(t, err)
}

func TestParseMultipleTopLevelForms(t *testing.T) {
	_, err := Parse(`(Table a :fields "x") (Table b :fields "y")`)
	require.Error(t, err)
}
