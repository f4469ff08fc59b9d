package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entiq/internal/spec"
)

func mustParse(t *testing.T, src string) *spec.TableSpec {
	t.Helper()
	ts, err := spec.Parse(src)
	require.NoError(t, err)
	return ts
}

func TestAnalyzeFlatTableNoRelationships(t *testing.T) {
	raw := mustParse(t, `(Table users :fields "name" "email")`)
	g, err := Analyze(raw)
	require.NoError(t, err)
	assert.Empty(t, g.Relationships.One)
	assert.Empty(t, g.Relationships.Many)
	require.Len(t, g.Fields, 2)
}

func TestAnalyzeFlattenedSingleValued(t *testing.T) {
	src := `(Table album :fields "title" {["artist_id" :flatten] (Table artist :fields "name")})`
	g, err := Analyze(mustParse(t, src))
	require.NoError(t, err)
	require.Len(t, g.Relationships.One, 1)
	rel := g.Relationships.One[0]
	assert.Equal(t, []string{}, rel.Path)
	assert.Equal(t, "artist", rel.Target.Name)
	assert.Empty(t, rel.Target.Relationships.One)
}

func TestAnalyzePromotionScenarioE(t *testing.T) {
	src := `(Table a :fields {["b_id"] (Table b :fields {["c_id"] (Table c :fields "x")})})`
	g, err := Analyze(mustParse(t, src))
	require.NoError(t, err)
	require.Len(t, g.Relationships.One, 2)

	assert.Equal(t, []string{"b_id"}, g.Relationships.One[0].Path)
	assert.Equal(t, "b", g.Relationships.One[0].Target.Name)
	assert.Empty(t, g.Relationships.One[0].Target.Relationships.One, "promotion completeness: b's own :one list must be empty")

	assert.Equal(t, []string{"b_id", "c_id"}, g.Relationships.One[1].Path)
	assert.Equal(t, "c", g.Relationships.One[1].Target.Name)
}

func TestAnalyzeManyPromotedFromOneValuedTarget(t *testing.T) {
	// album -> artist (one, flattened); artist has a many-valued rel
	// to bio_notes which must be promoted up to album's :many list.
	src := `(Table album :fields "title" ` +
		`{["artist_id" :flatten] (Table artist :fields "name" {["_artist_id"] (Table bio_notes :fields "text")})})`
	g, err := Analyze(mustParse(t, src))
	require.NoError(t, err)
	require.Len(t, g.Relationships.Many, 1)
	many := g.Relationships.Many[0]
	assert.Equal(t, []string{"_artist_id"}, many.Path)
	assert.Equal(t, "bio_notes", many.Target.Name)
}

func TestAnalyzeAliasedMany(t *testing.T) {
	src := `(Table album :fields "title" {["_album_id" :as "tracks"] (Table tracks :fields "name")})`
	g, err := Analyze(mustParse(t, src))
	require.NoError(t, err)
	require.Len(t, g.Relationships.Many, 1)
	assert.Equal(t, []string{"tracks"}, g.Relationships.Many[0].Path)
}

func TestAnalyzeRepeatedJoinTable(t *testing.T) {
	src := `(Table a :fields {["b1_id"] (Table b :fields "x")} {["b2_id"] (Table b :fields "y")})`
	_, err := Analyze(mustParse(t, src))
	require.Error(t, err)
	var rjt *RepeatedJoinTableError
	require.ErrorAs(t, err, &rjt)
	assert.Contains(t, rjt.Tables, "b")
}

func TestAnalyzeIdempotence(t *testing.T) {
	src := `(Table a :fields {["b_id"] (Table b :fields {["c_id"] (Table c :fields "x")} {["_d_id"] (Table d :fields "y")})})`
	raw := mustParse(t, src)
	g1, err := Analyze(raw)
	require.NoError(t, err)
	g2, err := Analyze(g1)
	require.NoError(t, err)

	assert.Equal(t, pathsOf(g1.Relationships.One), pathsOf(g2.Relationships.One))
	assert.Equal(t, pathsOf(g1.Relationships.Many), pathsOf(g2.Relationships.Many))
	assert.Equal(t, len(g1.Relationships.One), len(g2.Relationships.One))
	assert.Equal(t, len(g1.Relationships.Many), len(g2.Relationships.Many))
}

func pathsOf(rels []*spec.RelSpec) [][]string {
	out := make([][]string, len(rels))
	for i, r := range rels {
		out[i] = r.Path
	}
	return out
}
