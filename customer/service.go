package customer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/edgestore/customerstore/internal/cache"
	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/edgestore/customerstore/internal/worker"
	"github.com/sirupsen/logrus"
)

var MaxWorkerSize = runtime.NumCPU()
var MaxQueueSize = MaxWorkerSize * 4

// DefaultSnapshotSize is the number of folded customers kept in memory.
const DefaultSnapshotSize = 1024

func NewCacheKey(prefix string, id ID, tenantID model.ID) string {
	if prefix == "" {
		return fmt.Sprintf("%s:%s", tenantID, id)
	}

	return fmt.Sprintf("%s:%s:%s", prefix, tenantID, id)
}

type Config struct {
	Cache           cache.Service
	CacheKeyPrefix  string
	CacheExpiration time.Duration
	Logger          logrus.FieldLogger
	Observers       []eventstore.Observer
	Serializer      eventstore.Serializer
	SnapshotSize    int
	Store           eventstore.Store
}

// Service runs customer commands and serves the customer read model.
//
// Commands on one customer are serialized. The read model lives in the cache and
// is refreshed in the background after every change.
type Service struct {
	cache           cache.Service
	cachePrefix     string
	cacheExpiration time.Duration
	customers       *eventstore.Repository
	jobDispatcher   *worker.Dispatcher
	jobQueue        chan worker.Job
	locks           *keyedMutex
	logger          logrus.FieldLogger
}

func New(cfg *Config) *Service {
	logger := cfg.Logger.WithField("component", "customer-service")

	serializer := cfg.Serializer
	if serializer == nil {
		serializer = NewSerializer()
	}

	snapshotSize := cfg.SnapshotSize
	if snapshotSize == 0 {
		snapshotSize = DefaultSnapshotSize
	}

	observers := append([]eventstore.Observer{newLogObserver(logger)}, cfg.Observers...)

	jobQueue := make(chan worker.Job, MaxQueueSize)
	dispatcher := worker.NewDispatcher(jobQueue, MaxWorkerSize, cfg.Logger)
	dispatcher.Run()

	return &Service{
		cache:           cfg.Cache,
		cachePrefix:     cfg.CacheKeyPrefix,
		cacheExpiration: cfg.CacheExpiration,
		customers:       eventstore.NewRepository(&Customer{}, cfg.Store, serializer, cfg.Logger, observers...).WithSnapshots(snapshotSize),
		jobDispatcher:   dispatcher,
		jobQueue:        jobQueue,
		locks:           newKeyedMutex(),
		logger:          logger,
	}
}

func newLogObserver(logger logrus.FieldLogger) eventstore.Observer {
	return func(event model.Event) {
		eventType, _ := model.EventType(event)
		logger.WithFields(logrus.Fields{
			"id":      event.EventID(),
			"tenant":  event.EventTenantID(),
			"version": event.EventVersion(),
			"type":    eventType,
		}).Info("event applied")
	}
}

// Shutdown stops the background workers. Pending cache refreshes are dropped.
func (s *Service) Shutdown() {
	s.jobDispatcher.Stop()
}

func (s *Service) Register(ctx context.Context, cmd *RegisterCustomer) ([]Event, error) {
	const op errors.Op = "customer/Service.Register"
	s.logger.Infof("%s: id=%s, tenant=%s", op, cmd.ID, cmd.TenantID)

	return s.apply(ctx, op, cmd)
}

// ConfirmEmailAddress returns EmailAddressConfirmationFailed, not an error, when the
// hash does not match.
func (s *Service) ConfirmEmailAddress(ctx context.Context, cmd *ConfirmEmailAddress) ([]Event, error) {
	const op errors.Op = "customer/Service.ConfirmEmailAddress"
	s.logger.Infof("%s: id=%s, tenant=%s", op, cmd.ID, cmd.TenantID)

	return s.apply(ctx, op, cmd)
}

func (s *Service) ChangeEmailAddress(ctx context.Context, cmd *ChangeEmailAddress) ([]Event, error) {
	const op errors.Op = "customer/Service.ChangeEmailAddress"
	s.logger.Infof("%s: id=%s, tenant=%s", op, cmd.ID, cmd.TenantID)

	return s.apply(ctx, op, cmd)
}

func (s *Service) ChangeName(ctx context.Context, cmd *ChangeName) ([]Event, error) {
	const op errors.Op = "customer/Service.ChangeName"
	s.logger.Infof("%s: id=%s, tenant=%s", op, cmd.ID, cmd.TenantID)

	return s.apply(ctx, op, cmd)
}

func (s *Service) apply(ctx context.Context, op errors.Op, cmd model.Command) ([]Event, error) {
	if err := validateKey(op, cmd.CommandID(), cmd.CommandTenantID()); err != nil {
		return nil, err
	}

	key := NewCacheKey(s.cachePrefix, cmd.CommandID(), cmd.CommandTenantID())

	unlock := s.locks.lock(key)
	events, err := s.customers.Apply(ctx, cmd)
	if err == nil && len(events) > 0 {
		if err := s.cache.Delete(ctx, key); err != nil && !errors.Is(errors.NotFound, err) {
			s.logger.Warnf("unable to evict %s: %v", key, err)
		}
	}
	unlock()

	if err != nil {
		return nil, errors.E(op, err)
	}

	if len(events) > 0 {
		s.enqueueRefresh(cmd.CommandID(), cmd.CommandTenantID())
	}

	return Events(events), nil
}

// validateKey rejects IDs that NewID could not have produced, so they never reach the store.
func validateKey(op errors.Op, id ID, tenantID model.ID) error {
	if id == "" {
		return errors.E(op, errors.Invalid, "ID is required")
	}

	if !model.IsValidUUIDV4(string(id)) {
		return errors.E(op, id, errors.Invalid, "ID must be a UUID v4")
	}

	if tenantID == "" {
		return errors.E(op, id, errors.Invalid, "tenant ID cannot be empty")
	}

	return nil
}

// GetCustomer returns the current read model, from the cache when possible.
func (s *Service) GetCustomer(ctx context.Context, id ID, tenantID model.ID) (*Customer, error) {
	const op errors.Op = "customer/Service.GetCustomer"
	s.logger.Debugf("%s: id=%s, tenant=%s", op, id, tenantID)

	if err := validateKey(op, id, tenantID); err != nil {
		return nil, err
	}

	key := NewCacheKey(s.cachePrefix, id, tenantID)

	var cached Customer
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}

	if !errors.Is(errors.NotFound, err) {
		s.logger.Warnf("unable to read %s from cache: %v", key, err)
	}

	// Cache miss
	customer, err := s.load(ctx, id, tenantID)
	if err != nil {
		return nil, errors.E(op, err)
	}

	s.enqueueRefresh(id, tenantID)

	return customer, nil
}

// GetCustomerAt returns the customer as it was at the given time.
func (s *Service) GetCustomerAt(ctx context.Context, id ID, tenantID model.ID, at time.Time) (*Customer, error) {
	const op errors.Op = "customer/Service.GetCustomerAt"

	if err := validateKey(op, id, tenantID); err != nil {
		return nil, err
	}

	agg, _, err := s.customers.LoadAt(ctx, id, tenantID, at)
	if err != nil {
		return nil, errors.E(op, err)
	}

	return agg.(*Customer), nil
}

// History returns every event recorded for the customer, oldest first.
func (s *Service) History(ctx context.Context, id ID, tenantID model.ID) ([]Event, error) {
	const op errors.Op = "customer/Service.History"

	if err := validateKey(op, id, tenantID); err != nil {
		return nil, err
	}

	events, err := s.customers.Events(ctx, id, tenantID)
	if err != nil {
		return nil, errors.E(op, err)
	}

	return Events(events), nil
}

func (s *Service) load(ctx context.Context, id ID, tenantID model.ID) (*Customer, error) {
	agg, err := s.customers.Load(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	return agg.(*Customer), nil
}

// refreshCache stores the latest state of the customer. It holds the customer lock
// so that a refresh never overwrites a newer state.
func (s *Service) refreshCache(ctx context.Context, id ID, tenantID model.ID) error {
	key := NewCacheKey(s.cachePrefix, id, tenantID)

	unlock := s.locks.lock(key)
	defer unlock()

	customer, err := s.load(ctx, id, tenantID)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, key, customer, s.cacheExpiration)
}

func (s *Service) enqueueRefresh(id ID, tenantID model.ID) {
	key := NewCacheKey(s.cachePrefix, id, tenantID)
	job := worker.NewJob(fmt.Sprintf("refresh-cache-%s", key), NewRefreshCacheHandler(id, tenantID, s))

	select {
	case s.jobQueue <- job:
	default:
		s.logger.Debugf("job queue full, skipping %s", job.Name())
	}
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
