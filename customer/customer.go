package customer

import (
	"context"
	"fmt"
	"time"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/model"
)

var now = time.Now

type validator interface {
	Validate() error
}

// Customer is the stored aggregate: State plus the envelope of the last event.
type Customer struct {
	ID        ID            `json:"id"`
	TenantID  model.ID      `json:"tenant_id"`
	Version   model.Version `json:"version"`
	CreatedAt *time.Time    `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at"`
	State
}

// On folds a single stored event.
func (c *Customer) On(event model.Event) error {
	const op errors.Op = "customer/Customer.On"

	e, ok := event.(Event)
	if !ok {
		return errors.E(op, errors.Internal, fmt.Errorf("invalid event %T", event))
	}

	c.State = Fold(c.State, e)

	c.ID = event.EventID()
	c.TenantID = event.EventTenantID()
	c.Version = event.EventVersion()

	if c.Version == 1 {
		c.CreatedAt = event.EventAt()
	}

	c.UpdatedAt = event.EventAt()

	return nil
}

// Apply decides the events for cmd and stamps them with consecutive versions.
// Registering twice is a Duplicate error and any other command on an
// unregistered customer is NotFound.
func (c *Customer) Apply(ctx context.Context, cmd model.Command) ([]model.Event, error) {
	const op errors.Op = "customer/Customer.Apply"

	id := cmd.CommandID()
	if id == "" {
		return nil, errors.E(op, errors.Invalid, "missing ID")
	}

	if cmd.CommandTenantID() == "" {
		return nil, errors.E(op, id, errors.Invalid, "missing tenant ID")
	}

	if v, ok := cmd.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.E(op, err)
		}
	}

	_, register := cmd.(*RegisterCustomer)
	switch {
	case register && c.Registered:
		return nil, errors.E(op, id, errors.Duplicate, "customer already registered")
	case !register && !c.Registered:
		return nil, errors.E(op, id, errors.NotFound)
	}

	decided, err := Decide(c.State, cmd)
	if err != nil {
		return nil, errors.E(op, id, err)
	}

	at := now().UTC()
	events := make([]model.Event, len(decided))
	for i, event := range decided {
		event.envelope().Stamp(id, cmd.CommandTenantID(), c.Version+model.Version(i+1), at)
		events[i] = event
	}

	return events, nil
}

// Snapshot returns a copy that does not share mutable state with c.
func (c *Customer) Snapshot() eventstore.Aggregate {
	snapshot := *c
	return &snapshot
}
