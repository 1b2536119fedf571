package pgstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/sirupsen/logrus"
)

var (
	selectMaxVersionSQL = "SELECT COALESCE(MAX(version), 0) FROM records WHERE aggregate_id = ? AND tenant_id = ?"
	selectRecordsSQL    = strings.TrimSpace(`
		SELECT id, aggregate_id, tenant_id, version, data, created_at FROM records
		WHERE aggregate_id = ? AND tenant_id = ? AND version >= ? AND version <= ?
		ORDER BY version ASC
	`)
)

type PgStore struct {
	db     *pg.DB
	logger logrus.FieldLogger
}

// CreateSchema creates the records table when it does not exist yet.
func (p *PgStore) CreateSchema(ctx context.Context) error {
	const op errors.Op = "pgstore/PgStore.CreateSchema"

	err := p.db.ModelContext(ctx, (*eventstore.Record)(nil)).CreateTable(&orm.CreateTableOptions{
		IfNotExists: true,
	})
	if err != nil {
		return errors.E(op, errors.IO, err)
	}

	return nil
}

// Load the history of events from PgStore, up to the version specified.
// When toVersion is 0, all events will be loaded.
// To start at the beginning, fromVersion should be set to 0
func (p *PgStore) Load(ctx context.Context, aggregateID model.ID, tenantID model.ID, fromVersion, toVersion model.Version) (eventstore.History, error) {
	const op errors.Op = "pgstore/PgStore.Load"

	if toVersion == 0 {
		toVersion = math.MaxInt32
	}

	history := make(eventstore.History, 0)
	_, err := p.db.QueryContext(ctx, &history, selectRecordsSQL, string(aggregateID), string(tenantID), int(fromVersion), int(toVersion))
	if err != nil && err != pg.ErrNoRows {
		return nil, errors.E(op, aggregateID, errors.IO, err)
	}

	return history, nil
}

// Save the provided serialized records to PgStore. The primary key on (tenant, aggregate,
// version) rejects concurrent writers that decided on the same version.
func (p *PgStore) Save(ctx context.Context, aggregateID model.ID, tenantID model.ID, records []*eventstore.Record) error {
	const op errors.Op = "pgstore/PgStore.Save"

	if len(records) == 0 {
		return nil
	}

	items := append(eventstore.History{}, records...)
	sort.Sort(items)

	return p.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		var maxVersion int
		_, err := tx.QueryOneContext(ctx, pg.Scan(&maxVersion), selectMaxVersionSQL, string(aggregateID), string(tenantID))
		if err != nil && err != pg.ErrNoRows {
			return errors.E(op, aggregateID, errors.IO, err)
		}

		if model.Version(maxVersion)+1 != items[0].Version {
			return errors.E(op, aggregateID, errors.Transient, fmt.Sprintf("version conflict: stored %d, got %d", maxVersion, items[0].Version))
		}

		if _, err := tx.ModelContext(ctx, &items).Insert(); err != nil {
			if pgErr, ok := err.(pg.Error); ok && pgErr.IntegrityViolation() {
				return errors.E(op, aggregateID, errors.Transient, err)
			}
			return errors.E(op, aggregateID, errors.IO, err)
		}

		return nil
	})
}

// Close closes the database client.
func (p *PgStore) Close() error {
	return p.db.Close()
}

// New returns a Postgres backed store
func New(options *pg.Options, logger logrus.FieldLogger) *PgStore {
	logger = logger.WithField("component", "PgStore")
	logger.Infof("Postgres Store: connection=postgresql://%s/%s", options.Addr, options.Database)

	db := pg.Connect(options)
	db.AddQueryHook(NewDebugHook(logger))

	return &PgStore{
		db:     db,
		logger: logger,
	}
}

var _ eventstore.Store = (*PgStore)(nil)
