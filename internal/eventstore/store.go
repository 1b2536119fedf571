package eventstore

import (
	"context"
	"fmt"
	"time"

	"github.com/edgestore/customerstore/internal/model"
)

// Record provides the serialized representation of the event
type Record struct {
	tableName struct{} `pg:"records"`

	// ID is unique per tenant, aggregate and version.
	ID string `pg:"id,pk"`

	AggregateID model.ID `pg:"aggregate_id,notnull"`

	TenantID model.ID `pg:"tenant_id,notnull"`

	// Version contains the version associated with the serialized event
	Version model.Version `pg:"version,notnull,use_zero"`

	// Data contains the event in serialized form
	Data []byte `pg:"data,notnull"`

	CreatedAt time.Time `pg:"created_at,notnull,default:now()"`
}

// NewRecordID returns the key under which a record is stored.
func NewRecordID(aggregateID, tenantID model.ID, version model.Version) string {
	return fmt.Sprintf("%s:%s:%d", tenantID, aggregateID, version)
}

// History is the ordered list of records of one aggregate.
type History []*Record

// Len implements sort.Interface
func (h History) Len() int {
	return len(h)
}

// Swap implements sort.Interface
func (h History) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Less implements sort.Interface
func (h History) Less(i, j int) bool {
	return h[i].Version < h[j].Version
}

// Store provides an abstraction for an append-only event log.
type Store interface {
	// Load the history of events up to the version specified.
	// When toVersion is 0, all events will be loaded.
	// To start at the beginning, fromVersion should be set to 0
	Load(ctx context.Context, aggregateID model.ID, tenantID model.ID, fromVersion, toVersion model.Version) (History, error)

	// Save appends the provided serialized records to the store. Records must continue the
	// stored history without gaps, otherwise a Transient error is returned.
	Save(ctx context.Context, aggregateID model.ID, tenantID model.ID, records []*Record) error
}
