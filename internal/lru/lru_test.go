package lru

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// checks fatal error: concurrent map read and map write

func TestPanicLRUCache(t *testing.T) {
	xch := make(chan int)
	c := New[string, int](1024)
	for i := 0; i < 100; i++ {
		go func(i int) {
			key := fmt.Sprintf("Key%d", i)
			c.Put(key, i)
			c.Get(key)
			xch <- i
		}(i)
	}
	for i := 0; i < 100; i++ {
		<-xch
	}
}

func TestCache_Evicts(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestCache_PutReplaces(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("a", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())

	c.Del("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_PutIf(t *testing.T) {
	c := New[string, int](2)
	newer := func(v int) func(int) bool {
		return func(old int) bool { return v > old }
	}

	assert.True(t, c.PutIf("a", 2, newer(2)))
	assert.False(t, c.PutIf("a", 1, newer(1)))

	v, _ := c.Get("a")
	assert.Equal(t, 2, v)

	assert.True(t, c.PutIf("a", 3, newer(3)))
	v, _ = c.Get("a")
	assert.Equal(t, 3, v)
}
