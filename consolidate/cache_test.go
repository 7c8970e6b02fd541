package consolidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siegeai/siegeingest/jsonschema"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("orders", mustInfer(t, `{"id": 1}`))

	got, ok := c.Get("orders")
	require.True(t, ok)
	assert.Equal(t, jsonschema.KindObject, got.Kind())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(time.Minute)
	in := mustInfer(t, `{"id": 1}`)
	c.Put("orders", in)

	got, ok := c.Get("orders")
	require.True(t, ok)
	got.AsObject().Fields[0].Required = false

	again, ok := c.Get("orders")
	require.True(t, ok)
	assert.True(t, again.AsObject().Fields[0].Required)
}

func TestCacheEntriesExpire(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base

	c := NewCache(time.Minute)
	c.now = func() time.Time { return clock }

	c.Put("orders", mustInfer(t, `{"id": 1}`))

	clock = base.Add(59 * time.Second)
	_, ok := c.Get("orders")
	assert.True(t, ok)

	clock = base.Add(61 * time.Second)
	_, ok = c.Get("orders")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is swept on read")
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	base := time.Now()
	clock := base

	c := NewCache(0)
	c.now = func() time.Time { return clock }

	c.Put("orders", mustInfer(t, `{"id": 1}`))
	clock = base.Add(1000 * time.Hour)

	_, ok := c.Get("orders")
	assert.True(t, ok)
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("a", mustInfer(t, `{"x": 1}`))
	c.Put("b", mustInfer(t, `{"y": 2}`))
	require.Equal(t, 2, c.Len())

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
