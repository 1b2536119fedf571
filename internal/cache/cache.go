package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/edgestore/customerstore/internal/errors"
)

const (
	// DefaultExpiration is set to never expire.
	DefaultExpiration = time.Duration(0)

	// DefaultInMemoryCleanup expiration is set to cleanup every 10 minutes.
	DefaultInMemoryCleanup = 10 * time.Minute
)

// Service stores JSON encoded values under string keys.
type Service interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expires time.Duration) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
	Run() error
	Shutdown() error
}

type item struct {
	Value      []byte
	Expiration *time.Time
}

// Expired returns true if the item has expired.
func (i *item) Expired(now time.Time) bool {
	if i.Expiration != nil {
		return i.Expiration.Before(now)
	}

	return false
}

// InMemory cache is based on https://github.com/gin-contrib/cache
type InMemory struct {
	mux   *sync.Mutex
	items map[string]*item

	cleanupInterval time.Duration
	stop            chan bool
}

func NewInMemory(cleanupInterval time.Duration) *InMemory {
	return &InMemory{
		mux:             &sync.Mutex{},
		items:           make(map[string]*item),
		cleanupInterval: cleanupInterval,
		stop:            make(chan bool, 1),
	}
}

func (c *InMemory) Get(ctx context.Context, key string, value interface{}) error {
	const op errors.Op = "cache/InMemory.Get"

	c.mux.Lock()
	defer c.mux.Unlock()

	v, exists := c.items[key]
	if !exists {
		return errors.E(op, errors.NotFound)
	}

	if v.Expired(time.Now()) {
		delete(c.items, key)
		return errors.E(op, errors.NotFound)
	}

	if err := json.Unmarshal(v.Value, value); err != nil {
		return errors.E(op, errors.Internal, err)
	}

	return nil
}

func (c *InMemory) Set(ctx context.Context, key string, value interface{}, expiresIn time.Duration) error {
	const op errors.Op = "cache/InMemory.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}

	var expiration *time.Time
	if expiresIn > 0 {
		at := time.Now().Add(expiresIn)
		expiration = &at
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	c.items[key] = &item{
		Value:      raw,
		Expiration: expiration,
	}

	return nil
}

func (c *InMemory) Delete(ctx context.Context, key string) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	delete(c.items, key)

	return nil
}

func (c *InMemory) DeleteExpired() {
	c.mux.Lock()
	defer c.mux.Unlock()

	now := time.Now()
	for k, v := range c.items {
		if v.Expired(now) {
			delete(c.items, k)
		}
	}
}

func (c *InMemory) Flush(ctx context.Context) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.items = make(map[string]*item)
	return nil
}

func (c *InMemory) Run() error {
	runJanitor := func(interval time.Duration, stop chan bool) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.DeleteExpired()
			case <-stop:
				return
			}
		}
	}

	if c.cleanupInterval > 0 {
		go runJanitor(c.cleanupInterval, c.stop)
	}

	return nil
}

func (c *InMemory) Shutdown() error {
	if c.cleanupInterval > 0 {
		c.stop <- true
	}

	return nil
}

var _ Service = (*InMemory)(nil)
