package customer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/edgestore/customerstore/internal/eventstore"
	"github.com/edgestore/customerstore/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

func fixedClock(t *testing.T, at time.Time) {
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestCustomer_Apply_Register(t *testing.T) {
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	fixedClock(t, at)

	cmd := NewRegisterCustomer(tenant, "john@doe.com", "John", "Doe")

	c := &Customer{}
	events, err := c.Apply(context.Background(), cmd)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, cmd.ID, events[0].EventID())
	assert.Equal(t, tenant, events[0].EventTenantID())
	assert.Equal(t, model.Version(1), events[0].EventVersion())
	assert.Equal(t, at, *events[0].EventAt())

	require.NoError(t, c.On(events[0]))
	assert.Equal(t, cmd.ID, c.ID)
	assert.Equal(t, model.Version(1), c.Version)
	assert.Equal(t, &at, c.CreatedAt)
	assert.Equal(t, &at, c.UpdatedAt)
	assert.True(t, c.Registered)
	assert.Equal(t, cmd.EmailAddress, c.EmailAddress)
}

func TestCustomer_Apply_Preconditions(t *testing.T) {
	ctx := context.Background()
	cmd := NewRegisterCustomer(tenant, "john@doe.com", "John", "Doe")

	c := &Customer{}
	_, err := c.Apply(ctx, NewConfirmEmailAddress(tenant, cmd.ID, cmd.ConfirmationHash))
	assert.True(t, errors.Is(errors.NotFound, err))

	events, err := c.Apply(ctx, cmd)
	require.NoError(t, err)
	require.NoError(t, c.On(events[0]))

	_, err = c.Apply(ctx, cmd)
	assert.True(t, errors.Is(errors.Duplicate, err))
}

func TestCustomer_Apply_Invalid(t *testing.T) {
	ctx := context.Background()
	c := &Customer{}

	_, err := c.Apply(ctx, NewRegisterCustomer(tenant, "not-an-email", "John", "Doe"))
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = c.Apply(ctx, NewRegisterCustomer("", "john@doe.com", "John", "Doe"))
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = c.Apply(ctx, &RegisterCustomer{})
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestCustomer_On_InvalidEvent(t *testing.T) {
	type other struct {
		model.EventModel
	}

	err := (&Customer{}).On(&other{})
	assert.True(t, errors.Is(errors.Internal, err))
}

func TestCustomer_Snapshot(t *testing.T) {
	c := &Customer{ID: "c1", State: State{EmailAddress: "john@doe.com"}}
	s := c.Snapshot().(*Customer)
	s.EmailAddress = "jane@doe.com"

	assert.Equal(t, EmailAddress("john@doe.com"), c.EmailAddress)
}

func TestCustomer_Repository(t *testing.T) {
	ctx := context.Background()
	logger := newLogger()
	serializer := eventstore.NewSnappySerializer(NewSerializer())
	repository := eventstore.NewRepository(&Customer{}, eventstore.NewInMemory(logger), serializer, logger).WithSnapshots(8)

	reg := NewRegisterCustomer(tenant, "john@doe.com", "John", "Doe")
	_, err := repository.Apply(ctx, reg)
	require.NoError(t, err)

	events, err := repository.Apply(ctx, NewConfirmEmailAddress(tenant, reg.ID, "wrong"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.IsType(t, &EmailAddressConfirmationFailed{}, events[0])
	assert.Equal(t, model.Version(2), events[0].EventVersion())

	_, err = repository.Apply(ctx, NewConfirmEmailAddress(tenant, reg.ID, reg.ConfirmationHash))
	require.NoError(t, err)

	events, err = repository.Apply(ctx, NewConfirmEmailAddress(tenant, reg.ID, reg.ConfirmationHash))
	require.NoError(t, err)
	assert.Empty(t, events)

	agg, err := repository.Load(ctx, reg.ID, tenant)
	require.NoError(t, err)

	c := agg.(*Customer)
	assert.Equal(t, model.Version(3), c.Version)
	assert.True(t, c.IsEmailConfirmed)

	history, err := repository.Events(ctx, reg.ID, tenant)
	require.NoError(t, err)
	assert.Equal(t, c.State, Reconstitute(Events(history)))
}

func TestSerializer_RoundTrip(t *testing.T) {
	serializer := NewSerializer()
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	events := []Event{
		registered("john@doe.com", "h1"),
		&EmailAddressConfirmationFailed{},
		&EmailAddressConfirmed{},
		&EmailAddressChanged{EmailAddress: "jane@doe.com", ConfirmationHash: "h2"},
		&NameChanged{Name: PersonName{GivenName: "Jane", FamilyName: "Doe"}},
	}

	for i, event := range events {
		event.envelope().Stamp("c1", tenant, model.Version(i+1), at)

		record, err := serializer.MarshalEvent(event)
		require.NoError(t, err)

		decoded, err := serializer.UnmarshalEvent(record)
		require.NoError(t, err)
		assert.Equal(t, event, decoded)
	}
}
