package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRegistry(t *testing.T) {
	registry := NewBaseRegistry[string, int]("test", "item name")
	registry.SetValidator(ChainValidators(
		NotEmptyKeyValidator[int]("item name"),
		NoDuplicateValidator[string, int]("item"),
		nil,
	))

	require.NoError(t, registry.Register("b", 2))
	require.NoError(t, registry.Register("a", 1))
	require.NoError(t, registry.Register("c", 3))

	err := registry.Register("a", 10)
	assert.EqualError(t, err, "test registry: item 'a' is already registered")
	err = registry.Register("", 0)
	assert.EqualError(t, err, "test registry: item name cannot be empty")

	value, ok := registry.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
	assert.True(t, registry.Has("c"))
	assert.False(t, registry.Has("z"))
	assert.Equal(t, 3, registry.Size())
	assert.Equal(t, []string{"b", "a", "c"}, registry.List())

	_, err = registry.GetOrError("z")
	assert.EqualError(t, err, "item name 'z' is not registered")

	var visited []string
	registry.ForEach(func(key string, value int) {
		visited = append(visited, key)
	})
	assert.Equal(t, []string{"b", "a", "c"}, visited)
}

func TestBaseRegistryWithoutValidator(t *testing.T) {
	registry := NewBaseRegistry[string, string]("plain", "key")

	require.NoError(t, registry.Register("k", "v1"))
	require.NoError(t, registry.Register("k", "v2"))

	value, _ := registry.Get("k")
	assert.Equal(t, "v2", value)
	assert.Equal(t, []string{"k"}, registry.List())
}
