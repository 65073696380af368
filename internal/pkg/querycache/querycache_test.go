package querycache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	cache, err := New(4)
	require.NoError(t, err)

	cache.Set("items:a,b", []string{"a", "b"})

	value, ok := cache.Get("items:a,b")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, value)

	_, ok = cache.Get("items:c")
	assert.False(t, ok)
}

func TestPurgeDropsEverything(t *testing.T) {
	cache, err := New(4)
	require.NoError(t, err)

	cache.Set("one", 1)
	cache.Set("two", 2)
	require.Equal(t, 2, cache.Len())

	cache.Purge()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("one")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := New(2)
	require.NoError(t, err)

	cache.Set("one", 1)
	cache.Set("two", 2)
	cache.Set("three", 3)

	_, ok := cache.Get("one")
	assert.False(t, ok)
	_, ok = cache.Get("three")
	assert.True(t, ok)
}
