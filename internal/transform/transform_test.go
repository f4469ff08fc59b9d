package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryStringConvertsBytes(t *testing.T) {
	reg := NewRegistry(nil)
	fn, ok := reg.Lookup("binary-string")
	require.True(t, ok)
	v, err := fn([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestBinaryStringNilOnNil(t *testing.T) {
	reg := NewRegistry(nil)
	fn, ok := reg.Lookup("binary-string")
	require.True(t, ok)
	v, err := fn(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCustomTransformShadowsBuiltin(t *testing.T) {
	reg := NewRegistry(map[string]Func{
		"binary-string": func(raw any) (any, error) { return "shadowed", nil },
	})
	fn, ok := reg.Lookup("binary-string")
	require.True(t, ok)
	v, err := fn([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "shadowed", v)
}

func TestLookupUnknownName(t *testing.T) {
	reg := NewRegistry(nil)
	_, ok := reg.Lookup("does-not-exist")
	assert.False(t, ok)
}

func TestNilRegistryFallsBackToBuiltins(t *testing.T) {
	var reg *Registry
	fn, ok := reg.Lookup("binary-string")
	require.True(t, ok)
	v, err := fn([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}
