package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "compare:a,b,c", CompareKey([]string{"c", "a", "b"}))
	assert.Equal(t, CompareKey([]string{"x", "y"}), CompareKey([]string{"y", "x"}))
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	var out []string
	ok, err := m.Get(ctx, KeyTools, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, KeyTools, []string{"acme"}))
	ok, err = m.Get(ctx, KeyTools, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"acme"}, out)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, KeyReports, 1))
	now = now.Add(2 * time.Minute)

	var v int
	ok, err := m.Get(ctx, KeyReports, &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	for _, k := range []string{KeyTools, KeyReports, "compare:a,b", "compare:b,c", "landing"} {
		require.NoError(t, m.Set(ctx, k, k))
	}

	require.NoError(t, m.Invalidate(ctx, CatalogViews...))

	var s string
	for _, k := range []string{KeyTools, KeyReports, "compare:a,b", "compare:b,c"} {
		ok, err := m.Get(ctx, k, &s)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
	ok, err := m.Get(ctx, "landing", &s)
	require.NoError(t, err)
	assert.True(t, ok)
}
