package boltstore

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *BoltStore {
	logger := logrus.New()
	logger.Out = io.Discard

	store, err := Open(filepath.Join(t.TempDir(), "events.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestBoltStore_Load_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.Load(context.Background(), "abc", "acme", 0, 0)
	assert.True(t, errors.Is(errors.NotFound, err))
}

func TestBoltStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	err := store.Save(ctx, "abc", "acme", []*eventstore.Record{
		{ID: "acme:abc:2", AggregateID: "abc", TenantID: "acme", Version: 2, Data: []byte(`{"n":2}`)},
		{ID: "acme:abc:1", AggregateID: "abc", TenantID: "acme", Version: 1, Data: []byte(`{"n":1}`)},
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "abc", "acme", []*eventstore.Record{
		{ID: "acme:abc:3", AggregateID: "abc", TenantID: "acme", Version: 3, Data: []byte(`{"n":3}`)},
	}))

	history, err := store.Load(ctx, "abc", "acme", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.EqualValues(t, 1, history[0].Version)
	assert.Equal(t, []byte(`{"n":3}`), history[2].Data)

	history, err = store.Load(ctx, "abc", "acme", 2, 2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "acme:abc:2", history[0].ID)

	_, err = store.Load(ctx, "abc", "other", 0, 0)
	assert.True(t, errors.Is(errors.NotFound, err))
}

func TestBoltStore_Save_Conflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Save(ctx, "abc", "acme", []*eventstore.Record{{Version: 1}}))

	err := store.Save(ctx, "abc", "acme", []*eventstore.Record{{Version: 1}})
	assert.True(t, errors.Is(errors.Transient, err))
}
