package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entiq/internal/analyze"
	"entiq/internal/spec"
	"entiq/internal/transform"
)

func analyzed(t *testing.T, src string) *spec.TableSpec {
	t.Helper()
	raw, err := spec.Parse(src)
	require.NoError(t, err)
	g, err := analyze.Analyze(raw)
	require.NoError(t, err)
	return g
}

func TestAssembleFlatTableOmitsNil(t *testing.T) {
	g := analyzed(t, `(Table users :fields "name" "email")`)
	row := Row{
		"users_sqlfield_users_id": 7,
		"users_sqlfield_name":     "Ada",
		"users_sqlfield_email":    nil,
	}
	rec, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, rec)
}

func TestAssembleNestedAlias(t *testing.T) {
	g := analyzed(t, `(Table users :fields ["full_name" :as "name.full"])`)
	row := Row{"users_sqlfield_full_name": "Ada L."}
	rec, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": map[string]any{"full": "Ada L."}}, rec)
}

func TestAssembleFlattenedSingleValued(t *testing.T) {
	g := analyzed(t, `(Table album :fields "title" {["artist_id" :flatten] (Table artist :fields "name")})`)
	row := Row{
		"album_sqlfield_album_id":   1,
		"album_sqlfield_title":      "Abbey Road",
		"artist_sqlfield_artist_id": 9,
		"artist_sqlfield_name":      "The Beatles",
	}
	rec, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Abbey Road", "name": "The Beatles"}, rec)
}

func TestAssembleAliasedMany(t *testing.T) {
	g := analyzed(t, `(Table album :fields "title" {["_album_id" :as "tracks"] (Table tracks :fields "name")})`)
	row := Row{"album_sqlfield_album_id": 1, "album_sqlfield_title": "Abbey Road"}
	many := ManyRows{
		g.Relationships.Many[0].Column: {
			{Row: Row{"tracks_sqlfield_track_id": 1, "tracks_sqlfield_name": "Come Together"}},
			{Row: Row{"tracks_sqlfield_track_id": 2, "tracks_sqlfield_name": "Something"}},
		},
	}
	rec, err := Assemble(g, row, many, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "Abbey Road",
		"tracks": []map[string]any{
			{"name": "Come Together"},
			{"name": "Something"},
		},
	}, rec)
}

func TestAssemblePromotionNestedPaths(t *testing.T) {
	g := analyzed(t, `(Table a :fields {["b_id"] (Table b :fields {["c_id"] (Table c :fields "x")})})`)
	row := Row{
		"b_sqlfield_b_id": 1,
		"c_sqlfield_c_id": 2,
		"c_sqlfield_x":    "hi",
	}
	rec, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"b_id": map[string]any{
			"c_id": map[string]any{"x": "hi"},
		},
	}, rec)
}

func TestAssembleBinaryStringTransformField(t *testing.T) {
	g := analyzed(t, `(Table users :fields ["avatar" :xform "binary-string"])`)
	row := Row{"users_sqlfield_avatar": []byte("hi")}
	rec, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"avatar": "hi"}, rec)
}

func TestAssembleUnknownTransformError(t *testing.T) {
	g := analyzed(t, `(Table users :fields ["avatar" :xform "nope"])`)
	row := Row{"users_sqlfield_avatar": []byte("hi")}
	_, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.Error(t, err)
	var te *TransformError
	require.ErrorAs(t, err, &te)
}

func TestAssembleFlattenedTargetAllNilOmitted(t *testing.T) {
	g := analyzed(t, `(Table album :fields "title" {["artist_id" :flatten] (Table artist :fields "name")})`)
	row := Row{
		"album_sqlfield_album_id": 1,
		"album_sqlfield_title":    "Abbey Road",
		// no artist columns present at all: LEFT JOIN found no match.
	}
	rec, err := Assemble(g, row, nil, transform.NewRegistry(nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Abbey Road"}, rec)
}
