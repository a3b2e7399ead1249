package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedesk/queue-service/internal/domain"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	dispatcher.Subscribe(EventTicketCalled, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	dispatcher.Subscribe(EventTicketCalled, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	counter := int64(4)
	ticket := &domain.Ticket{ID: 9, TicketNumber: 3, Status: domain.TicketStatusServing, ServiceID: 2, CounterID: &counter}
	err := dispatcher.Publish(context.Background(), NewTicketEvent(EventTicketCalled, ticket, Actor{}, time.Now()))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutListeners(t *testing.T) {
	err := NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventTicketExpired})
	assert.NoError(t, err)
}

func TestNewTicketEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	user := int64(5)
	ticket := &domain.Ticket{ID: 1, TicketNumber: 7, Status: domain.TicketStatusPending, ServiceID: 3, CustomerName: "Alice", UserID: &user}

	event := NewTicketEvent(EventTicketCreated, ticket, ActorFrom(&domain.Identity{ID: 5, Role: domain.RoleCustomer}), at)

	assert.NotEmpty(t, event.ID)
	assert.EqualValues(t, 1, event.TicketID)
	assert.Equal(t, at.UTC(), event.Timestamp)
	assert.Equal(t, 7, event.Ticket.TicketNumber)
	require.NotNil(t, event.Actor.UserID)
	assert.EqualValues(t, 5, *event.Actor.UserID)
	assert.Equal(t, Actor{}, ActorFrom(nil))
}
