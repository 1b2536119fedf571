package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edgestore/customerstore/customer"
	"github.com/edgestore/customerstore/internal/cache"
	"github.com/edgestore/customerstore/internal/cache/rediscache"
	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/eventstore/boltstore"
	"github.com/edgestore/customerstore/internal/eventstore/pgstore"
	"github.com/edgestore/customerstore/internal/server"
	"github.com/edgestore/customerstore/version"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheKeyPrefix is used to define caching keys.
const CacheKeyPrefix = "customerstore"

// HealthService is the name reported by the gRPC health service.
const HealthService = "customerstore.Customers"

type service struct {
	cache    cache.Service
	cfg      Config
	customer *customer.Service
	logger   logrus.FieldLogger
	store    eventstore.Store

	run func() error
}

func newStore(cfg Config, logger logrus.FieldLogger) (eventstore.Store, error) {
	const op errors.Op = "api/newStore"

	switch cfg.Store {
	case "", StoreMemory:
		return eventstore.NewInMemory(logger), nil
	case StorePostgres:
		if cfg.Database == nil {
			return nil, errors.E(op, errors.Invalid, fmt.Sprintf("store %s requires a database connection", cfg.Store))
		}
		return pgstore.New(cfg.Database, logger), nil
	case StoreBolt:
		if cfg.BoltPath == "" {
			return nil, errors.E(op, errors.Invalid, fmt.Sprintf("store %s requires a file path", cfg.Store))
		}
		store, err := boltstore.Open(cfg.BoltPath, logger)
		if err != nil {
			return nil, errors.E(op, err)
		}
		return store, nil
	default:
		return nil, errors.E(op, errors.Invalid, fmt.Sprintf("unknown store %q", cfg.Store))
	}
}

func New(cfg Config) (*service, error) {
	if cfg.Server.LoggerLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Logger
	logger := server.NewLogger(cfg.Server.LoggerLevel, cfg.Server.LoggerFormat)

	// Event Store
	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	var serializer eventstore.Serializer = customer.NewSerializer()
	if cfg.Compress {
		serializer = eventstore.NewSnappySerializer(serializer)
	}

	// Read model cache
	var c cache.Service
	if cfg.Cache != nil {
		c = rediscache.New(redis.NewClient(cfg.Cache))
	} else {
		c = cache.NewInMemory(cache.DefaultInMemoryCleanup)
	}

	customerSvc := customer.New(&customer.Config{
		Cache:           c,
		CacheKeyPrefix:  CacheKeyPrefix,
		CacheExpiration: cfg.CacheExpiration,
		Logger:          logger,
		Serializer:      serializer,
		SnapshotSize:    cfg.SnapshotSize,
		Store:           store,
	})

	// Main Service
	svc := &service{
		cache:    c,
		cfg:      cfg,
		customer: customerSvc,
		logger:   logger.WithField("component", "API"),
		store:    store,
	}

	srv := server.New(cfg.Server, logger)
	srv.HTTPServer = server.NewHTTPServer(cfg.Server, svc.HTTPHandler())
	if cfg.Server.RPCPort > 0 {
		srv.GRPCServer = server.NewGRPCServer(logger)
		srv.Health = server.NewHealthServer(srv.GRPCServer, HealthService)
	}
	srv.Shutdown = svc.Shutdown
	svc.run = srv.Run

	return svc, nil
}

func (s *service) Run() error {
	s.logger.Info("Customerstore: Starting API")

	if err := s.cache.Run(); err != nil {
		s.logger.Errorf("unable to connect to cache: %v", err)
	} else if s.cfg.Cache != nil {
		s.logger.Infof("Connected to Redis at %v", s.cfg.Cache.Addr)
	}

	if pg, ok := s.store.(*pgstore.PgStore); ok {
		if err := pg.CreateSchema(context.Background()); err != nil {
			return err
		}
	}

	return s.run()
}

func (s *service) Shutdown() {
	s.logger.Info("Customerstore: Stopping API")

	s.customer.Shutdown()

	if err := s.cache.Shutdown(); err != nil {
		s.logger.Error(err)
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error(err)
		}
	}
}

func (s *service) RootHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Customerstore: Event Sourced Customers",
		"version": version.Version,
	})
}
