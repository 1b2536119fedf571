package lru

import (
	"container/list"
	"sync"
)

// Cache is a fixed size LRU cache, safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	cache    map[K]*list.Element
	priority *list.List
	maxSize  int
}

type kv[K comparable, V any] struct {
	key   K
	value V
}

func New[K comparable, V any](size int) *Cache[K, V] {
	if size < 1 {
		size = 1
	}

	return &Cache[K, V]{
		maxSize:  size,
		priority: list.New(),
		cache:    make(map[K]*list.Element),
	}
}

// Put stores value under key, replacing any previous value and evicting the
// least recently used entry when the cache is full.
func (lru *Cache[K, V]) Put(key K, value V) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if element, ok := lru.cache[key]; ok {
		element.Value = kv[K, V]{key: key, value: value}
		lru.priority.MoveToFront(element)
		return
	}

	if len(lru.cache) == lru.maxSize {
		last := lru.priority.Remove(lru.priority.Back())
		delete(lru.cache, last.(kv[K, V]).key)
	}
	lru.priority.PushFront(kv[K, V]{key: key, value: value})
	lru.cache[key] = lru.priority.Front()
}

// PutIf stores value under key unless an entry exists for which replace
// returns false. The check and the store happen under one lock.
func (lru *Cache[K, V]) PutIf(key K, value V, replace func(old V) bool) bool {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if element, ok := lru.cache[key]; ok {
		if !replace(element.Value.(kv[K, V]).value) {
			return false
		}
		element.Value = kv[K, V]{key: key, value: value}
		lru.priority.MoveToFront(element)
		return true
	}

	if len(lru.cache) == lru.maxSize {
		last := lru.priority.Remove(lru.priority.Back())
		delete(lru.cache, last.(kv[K, V]).key)
	}
	lru.priority.PushFront(kv[K, V]{key: key, value: value})
	lru.cache[key] = lru.priority.Front()
	return true
}

func (lru *Cache[K, V]) Del(key K) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	e := lru.cache[key]
	if e == nil {
		return
	}
	delete(lru.cache, key)
	lru.priority.Remove(e)
}

func (lru *Cache[K, V]) Get(key K) (V, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	if element, ok := lru.cache[key]; ok {
		lru.priority.MoveToFront(element)
		return element.Value.(kv[K, V]).value, true
	}
	var zero V
	return zero, false
}

func (lru *Cache[K, V]) Len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return len(lru.cache)
}
