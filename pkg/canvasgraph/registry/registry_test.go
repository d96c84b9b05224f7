package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/registry"
)

func TestRegistryBasics(t *testing.T) {
	r := registry.New[string, int]()

	r.Register("a", 1)
	r.Register("b", 2)

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.True(t, r.Has("b"))
	assert.Equal(t, 2, r.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, r.Keys())
	assert.ElementsMatch(t, []int{1, 2}, r.Values())
}

func TestRegistryOverwrite(t *testing.T) {
	r := registry.New[string, string]()
	r.Register("k", "old")
	r.Register("k", "new")

	v, _ := r.Get("k")
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDelete(t *testing.T) {
	r := registry.New[string, int]()
	r.Register("a", 1)
	r.Delete("a")
	assert.False(t, r.Has("a"))

	// Deleting a missing key is harmless.
	r.Delete("a")
}

func TestRegistryConcurrent(t *testing.T) {
	r := registry.New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			for j := 0; j < 100; j++ {
				r.Register(key, j)
				_, _ = r.Get(key)
				_ = r.Keys()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, r.Len())
}
