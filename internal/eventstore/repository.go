package eventstore

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/lru"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/sirupsen/logrus"
)

// Aggregate folds events into its own state.
type Aggregate interface {
	On(event model.Event) error
}

// Snapshotter is implemented by aggregates that can hand out an independent copy of
// themselves. Only those aggregates are kept in the snapshot cache.
type Snapshotter interface {
	Snapshot() Aggregate
}

type Observer func(event model.Event)

type snapshot struct {
	aggregate Aggregate
	version   model.Version
}

// Repository provides the primary abstraction to saving and loading events.
type Repository struct {
	logger     logrus.FieldLogger
	observers  []Observer
	prototype  reflect.Type
	serializer Serializer
	snapshots  *lru.Cache[string, snapshot]
	store      Store
}

// NewAggregate returns a new, empty instance of the aggregate
func (r *Repository) NewAggregate() Aggregate {
	return reflect.New(r.prototype).Interface().(Aggregate)
}

// WithSnapshots keeps the last folded state of up to size aggregates in memory, so that
// loading only replays the events appended since.
func (r *Repository) WithSnapshots(size int) *Repository {
	if size > 0 {
		r.snapshots = lru.New[string, snapshot](size)
	}

	return r
}

func (r *Repository) snapshotKey(aggregateID model.ID, tenantID model.ID) string {
	return fmt.Sprintf("%s/%s", tenantID, aggregateID)
}

func (r *Repository) restore(aggregateID model.ID, tenantID model.ID) (Aggregate, model.Version) {
	if r.snapshots == nil {
		return r.NewAggregate(), 0
	}

	snap, ok := r.snapshots.Get(r.snapshotKey(aggregateID, tenantID))
	if !ok {
		return r.NewAggregate(), 0
	}

	return snap.aggregate.(Snapshotter).Snapshot(), snap.version
}

func (r *Repository) remember(aggregateID model.ID, tenantID model.ID, aggregate Aggregate, version model.Version) {
	if r.snapshots == nil || version == 0 {
		return
	}

	s, ok := aggregate.(Snapshotter)
	if !ok {
		return
	}

	// A slow load must not replace a snapshot taken at a later version.
	r.snapshots.PutIf(r.snapshotKey(aggregateID, tenantID), snapshot{aggregate: s.Snapshot(), version: version}, func(old snapshot) bool {
		return version > old.version
	})
}

// Save persists the events into the underlying Store
func (r *Repository) Save(ctx context.Context, tenantID model.ID, events ...model.Event) error {
	if len(events) == 0 {
		return nil
	}

	id := events[0].EventID()
	history := make(History, 0, len(events))
	for _, event := range events {
		record, err := r.serializer.MarshalEvent(event)
		if err != nil {
			return err
		}

		history = append(history, record)
	}

	return r.store.Save(ctx, id, tenantID, history)
}

// Load retrieves the specified aggregate from the underlying store
func (r *Repository) Load(ctx context.Context, aggregateID model.ID, tenantID model.ID) (Aggregate, error) {
	v, _, err := r.load(ctx, aggregateID, tenantID)
	return v, err
}

// load resumes from the cached snapshot when there is one, and replays the remaining events.
func (r *Repository) load(ctx context.Context, aggregateID model.ID, tenantID model.ID) (Aggregate, model.Version, error) {
	const op errors.Op = "eventstore/Repository.load"

	aggregate, version := r.restore(aggregateID, tenantID)

	history, err := r.store.Load(ctx, aggregateID, tenantID, version+1, 0)
	if err != nil {
		return nil, 0, err
	}

	if len(history) == 0 && version == 0 {
		return nil, 0, errors.E(op, aggregateID, errors.NotFound)
	}

	r.logger.Debugf("loaded %d event(s) for %s after version %d", len(history), aggregateID, version)

	for _, record := range history {
		event, err := r.serializer.UnmarshalEvent(record)
		if err != nil {
			return nil, 0, err
		}

		if err := aggregate.On(event); err != nil {
			return nil, 0, err
		}

		version = event.EventVersion()
	}

	r.remember(aggregateID, tenantID, aggregate, version)

	return aggregate, version, nil
}

// LoadAt replays the specified aggregate up to, and including, the events recorded at end.
func (r *Repository) LoadAt(ctx context.Context, aggregateID model.ID, tenantID model.ID, end time.Time) (Aggregate, model.Version, error) {
	const op errors.Op = "eventstore/Repository.LoadAt"

	events, err := r.Events(ctx, aggregateID, tenantID)
	if err != nil {
		return nil, 0, err
	}

	aggregate := r.NewAggregate()
	version := model.Version(0)
	for _, event := range events {
		if at := event.EventAt(); at != nil && at.After(end) {
			break
		}

		if err := aggregate.On(event); err != nil {
			return nil, 0, err
		}

		version = event.EventVersion()
	}

	if version == 0 {
		return nil, 0, errors.E(op, aggregateID, errors.NotFound, fmt.Sprintf("no events before %s", end.Format(time.RFC3339)))
	}

	return aggregate, version, nil
}

// Events decodes the full history of the specified aggregate.
func (r *Repository) Events(ctx context.Context, aggregateID model.ID, tenantID model.ID) ([]model.Event, error) {
	const op errors.Op = "eventstore/Repository.Events"

	history, err := r.store.Load(ctx, aggregateID, tenantID, 0, 0)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return nil, errors.E(op, aggregateID, errors.NotFound)
	}

	events := make([]model.Event, 0, len(history))
	for _, record := range history {
		event, err := r.serializer.UnmarshalEvent(record)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, nil
}

// Apply executes the command against the current state of its aggregate, persists the
// resulting events and returns them. A command that results in no events is not an error.
func (r *Repository) Apply(ctx context.Context, cmd model.Command) ([]model.Event, error) {
	const op errors.Op = "eventstore/Repository.Apply"

	if cmd == nil {
		return nil, errors.E(op, errors.Invalid, "command cannot be nil")
	}

	id := cmd.CommandID()
	if id == "" {
		return nil, errors.E(op, errors.Invalid, "required ID")
	}

	tenantID := cmd.CommandTenantID()
	if tenantID == "" {
		return nil, errors.E(op, errors.Invalid, "required tenant ID")
	}

	aggregate, version, err := r.load(ctx, id, tenantID)
	if err != nil {
		if !errors.Is(errors.NotFound, err) {
			return nil, err
		}

		aggregate = r.NewAggregate()
	}

	h, ok := aggregate.(model.CommandHandler)
	if !ok {
		return nil, errors.E(op, errors.Internal, fmt.Sprintf("aggregate %T does not implement CommandHandler", aggregate))
	}

	events, err := h.Apply(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if err := r.Save(ctx, tenantID, events...); err != nil {
		if r.snapshots != nil {
			r.snapshots.Del(r.snapshotKey(id, tenantID))
		}
		return nil, err
	}

	for _, event := range events {
		if err := aggregate.On(event); err != nil {
			return nil, errors.E(op, errors.Internal, err)
		}

		version = event.EventVersion()
	}

	r.remember(id, tenantID, aggregate, version)

	for _, event := range events {
		for _, observer := range r.observers {
			observer(event)
		}
	}

	r.logger.Debugf("applied %d event(s) to %s", len(events), id)

	return events, nil
}

func NewRepository(prototype Aggregate, store Store, serializer Serializer, logger logrus.FieldLogger, observers ...Observer) *Repository {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return &Repository{
		prototype:  t,
		store:      store,
		observers:  observers,
		serializer: serializer,
		logger:     logger.WithField("component", "repository"),
	}
}
