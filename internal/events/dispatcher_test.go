package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []Event
	d.Subscribe(EventContactCreated, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventContactCreated, ContactID: 1}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventContactDeleted, ContactID: 2}))

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ContactID)
}

func TestDispatcherKeepsGoingAfterHandlerFailure(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventContactUpdated, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventContactUpdated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventContactUpdated})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
