// Package boltstore keeps the event log in a single bbolt file: one bucket per
// tenant, one nested bucket per aggregate, records keyed by big-endian version.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

type BoltStore struct {
	db     *bolt.DB
	logger logrus.FieldLogger
}

// Open creates or opens the bbolt file at path.
func Open(path string, logger logrus.FieldLogger) (*BoltStore, error) {
	const op errors.Op = "boltstore/Open"

	logger = logger.WithField("component", "BoltStore")
	logger.Infof("Bolt Store: path=%s", path)

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

func versionKey(v model.Version) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(v))
	return key
}

func keyVersion(key []byte) model.Version {
	return model.Version(binary.BigEndian.Uint64(key))
}

// Load implements eventstore.Store.
func (b *BoltStore) Load(ctx context.Context, aggregateID model.ID, tenantID model.ID, fromVersion, toVersion model.Version) (eventstore.History, error) {
	const op errors.Op = "boltstore/BoltStore.Load"
	b.logger.Debugf("load aggregate %s from tenant %s", aggregateID, tenantID)

	var history eventstore.History
	err := b.db.View(func(tx *bolt.Tx) error {
		tenant := tx.Bucket([]byte(tenantID))
		if tenant == nil {
			return errors.E(op, aggregateID, errors.NotFound)
		}

		bucket := tenant.Bucket([]byte(aggregateID))
		if bucket == nil {
			return errors.E(op, aggregateID, errors.NotFound)
		}

		c := bucket.Cursor()
		for k, v := c.Seek(versionKey(fromVersion)); k != nil; k, v = c.Next() {
			if toVersion != 0 && keyVersion(k) > toVersion {
				break
			}

			var record eventstore.Record
			if err := json.Unmarshal(v, &record); err != nil {
				return errors.E(op, aggregateID, errors.Internal, err)
			}
			history = append(history, &record)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return history, nil
}

// Save implements eventstore.Store.
func (b *BoltStore) Save(ctx context.Context, aggregateID model.ID, tenantID model.ID, records []*eventstore.Record) error {
	const op errors.Op = "boltstore/BoltStore.Save"
	b.logger.Debugf("save aggregate %s from tenant %s", aggregateID, tenantID)

	if len(records) == 0 {
		return nil
	}

	items := append(eventstore.History{}, records...)
	sort.Sort(items)

	return b.db.Update(func(tx *bolt.Tx) error {
		tenant, err := tx.CreateBucketIfNotExists([]byte(tenantID))
		if err != nil {
			return errors.E(op, aggregateID, errors.IO, err)
		}

		bucket, err := tenant.CreateBucketIfNotExists([]byte(aggregateID))
		if err != nil {
			return errors.E(op, aggregateID, errors.IO, err)
		}

		var last model.Version
		if k, _ := bucket.Cursor().Last(); k != nil {
			last = keyVersion(k)
		}

		if items[0].Version != last+1 {
			return errors.E(op, aggregateID, errors.Transient, fmt.Sprintf("version conflict: stored %d, got %d", last, items[0].Version))
		}

		for _, record := range items {
			raw, err := json.Marshal(record)
			if err != nil {
				return errors.E(op, aggregateID, errors.Internal, err)
			}

			if err := bucket.Put(versionKey(record.Version), raw); err != nil {
				return errors.E(op, aggregateID, errors.IO, err)
			}
		}

		return nil
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

var _ eventstore.Store = (*BoltStore)(nil)
