package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/queuedesk/queue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketActivated EventType = "ticket_activated"
	EventTicketCalled    EventType = "ticket_called"
	EventTicketCompleted EventType = "ticket_completed"
	EventTicketNoShow    EventType = "ticket_no_show"
	EventTicketExpired   EventType = "ticket_expired"
)

// TicketEvents lists every ticket lifecycle event.
var TicketEvents = []EventType{
	EventTicketCreated,
	EventTicketActivated,
	EventTicketCalled,
	EventTicketCompleted,
	EventTicketNoShow,
	EventTicketExpired,
}

// Actor identifies who caused the event. A nil UserID means anonymous or system.
type Actor struct {
	UserID *int64      `json:"userId,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an actor from an optional identity.
func ActorFrom(identity *domain.Identity) Actor {
	if identity == nil {
		return Actor{}
	}
	id := identity.ID
	return Actor{UserID: &id, Role: identity.Role}
}

// TicketSnapshot is the ticket state carried by an event.
type TicketSnapshot struct {
	ID           int64               `json:"id"`
	TicketNumber int                 `json:"ticketNumber"`
	Status       domain.TicketStatus `json:"status"`
	ServiceID    int64               `json:"serviceId"`
	CounterID    *int64              `json:"counterId,omitempty"`
	CustomerName string              `json:"customerName"`
}

// SnapshotOf copies the fields events expose.
func SnapshotOf(ticket *domain.Ticket) TicketSnapshot {
	return TicketSnapshot{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Status:       ticket.Status,
		ServiceID:    ticket.ServiceID,
		CounterID:    ticket.CounterID,
		CustomerName: ticket.CustomerName,
	}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	TicketID  int64          `json:"ticketId"`
	Actor     Actor          `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Ticket    TicketSnapshot `json:"ticket"`
}

// NewTicketEvent stamps a new event for ticket.
func NewTicketEvent(eventType EventType, ticket *domain.Ticket, actor Actor, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		Actor:     actor,
		Timestamp: at.UTC(),
		Ticket:    SnapshotOf(ticket),
	}
}
