package api

import (
	"time"

	"github.com/edgestore/customerstore/internal/server"
	"github.com/go-pg/pg/v10"
	"github.com/redis/go-redis/v9"
)

// Event store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

type Config struct {
	Server server.Config

	// Store is one of StoreMemory, StorePostgres or StoreBolt.
	Store    string
	Database *pg.Options
	BoltPath string

	// Compress stores event payloads snappy compressed.
	Compress bool

	// Cache is the redis read-model cache. When nil an in-memory cache is used.
	Cache           *redis.Options
	CacheExpiration time.Duration

	SnapshotSize int

	// JWTSecret enables bearer token authentication. The tenant is then taken from
	// the token instead of the Customerstore-Tenant header.
	JWTSecret string
}

func DefaultConfig() Config {
	return Config{
		Server:       server.DefaultConfig(),
		Store:        StoreMemory,
		Compress:     true,
		SnapshotSize: 1024,
	}
}
