package eventstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/sirupsen/logrus"
)

type InMemory struct {
	mux    *sync.Mutex
	events map[string]History

	logger logrus.FieldLogger
}

func NewInMemory(logger logrus.FieldLogger) Store {
	logger.Infof("InMemory Store")

	return &InMemory{
		mux:    &sync.Mutex{},
		events: map[string]History{},
		logger: logger.WithField("component", "in-memory"),
	}
}

func inMemoryKey(aggregateID model.ID, tenantID model.ID) string {
	return fmt.Sprintf("%s/%s", tenantID, aggregateID)
}

// Load implements the Store interface and retrieves events from the In-Memory store
func (m *InMemory) Load(ctx context.Context, aggregateID model.ID, tenantID model.ID, fromVersion, toVersion model.Version) (History, error) {
	const op errors.Op = "eventstore/InMemory.Load"
	m.logger.Debugf("load aggregate %s from tenant %s", aggregateID, tenantID)

	m.mux.Lock()
	defer m.mux.Unlock()

	records, ok := m.events[inMemoryKey(aggregateID, tenantID)]
	if !ok {
		return nil, errors.E(op, aggregateID, errors.NotFound)
	}

	history := make(History, 0, len(records))
	for _, r := range records {
		if v := r.Version; v >= fromVersion && (toVersion == 0 || v <= toVersion) {
			history = append(history, r)
		}
	}

	return history, nil
}

func (m *InMemory) Save(ctx context.Context, aggregateID model.ID, tenantID model.ID, records []*Record) error {
	const op errors.Op = "eventstore/InMemory.Save"
	m.logger.Debugf("save aggregate %s from tenant %s", aggregateID, tenantID)

	if len(records) == 0 {
		return nil
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	key := inMemoryKey(aggregateID, tenantID)
	history := append(History{}, m.events[key]...)

	items := append(History{}, records...)
	sort.Sort(items)

	var last model.Version
	if n := len(history); n > 0 {
		last = history[n-1].Version
	}

	if items[0].Version != last+1 {
		return errors.E(op, aggregateID, errors.Transient, fmt.Sprintf("version conflict: stored %d, got %d", last, items[0].Version))
	}

	m.events[key] = append(history, items...)

	return nil
}
