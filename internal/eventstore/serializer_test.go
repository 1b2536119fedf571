package eventstore

import (
	"testing"
	"time"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type EntitySetName struct {
	model.EventModel
	Name string
}

func newEntitySetName() EntitySetName {
	at := time.Unix(1700000000, 0).UTC()
	return EntitySetName{
		EventModel: model.EventModel{
			ID:       "entity_foo",
			TenantID: "acme",
			Version:  123,
			At:       &at,
		},
		Name: "foo",
	}
}

func TestNewJSONSerializer(t *testing.T) {
	event := newEntitySetName()

	serializer := NewJSONSerializer(event)
	record, err := serializer.MarshalEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "acme:entity_foo:123", record.ID)
	assert.EqualValues(t, "entity_foo", record.AggregateID)
	assert.EqualValues(t, "acme", record.TenantID)
	assert.EqualValues(t, 123, record.Version)
	assert.True(t, event.At.Equal(record.CreatedAt))

	v, err := serializer.UnmarshalEvent(record)
	require.NoError(t, err)

	found, ok := v.(*EntitySetName)
	require.True(t, ok)
	assert.Equal(t, event.Name, found.Name)
	assert.Equal(t, event.Version, found.Version)
}

func TestJSONSerializer_UnboundType(t *testing.T) {
	record, err := NewJSONSerializer().MarshalEvent(newEntitySetName())
	require.NoError(t, err)

	_, err = NewJSONSerializer().UnmarshalEvent(record)
	assert.True(t, errors.Is(errors.Internal, err))
}

func TestJSONSerializer_MarshalAll(t *testing.T) {
	event := newEntitySetName()

	serializer := NewJSONSerializer(event)
	history, err := serializer.MarshalAll(event, event)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	v, err := serializer.UnmarshalEvent(history[0])
	require.NoError(t, err)

	found, ok := v.(*EntitySetName)
	assert.True(t, ok)
	assert.Equal(t, "foo", found.Name)
}

func TestSnappySerializer(t *testing.T) {
	event := newEntitySetName()
	plain := NewJSONSerializer(event)
	serializer := NewSnappySerializer(plain)

	record, err := serializer.MarshalEvent(event)
	require.NoError(t, err)

	_, err = plain.UnmarshalEvent(record)
	assert.Error(t, err, "compressed data must not decode as plain JSON")

	v, err := serializer.UnmarshalEvent(record)
	require.NoError(t, err)
	assert.Equal(t, "foo", v.(*EntitySetName).Name)
}

func TestSnappySerializer_Corrupt(t *testing.T) {
	serializer := NewSnappySerializer(NewJSONSerializer())

	_, err := serializer.UnmarshalEvent(&Record{Data: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x0f}})
	assert.True(t, errors.Is(errors.Internal, err))
}
