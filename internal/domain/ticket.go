package domain

import "time"

// TicketStatus enumerates lifecycle states for queue tickets.
type TicketStatus string

const (
	TicketStatusPending TicketStatus = "pending"
	TicketStatusWaiting TicketStatus = "waiting"
	TicketStatusServing TicketStatus = "serving"
	TicketStatusServed  TicketStatus = "served"
	TicketStatusExpired TicketStatus = "expired"
	TicketStatusNoShow  TicketStatus = "no-show"
)

// Terminal reports whether no further transition leaves the status.
func (s TicketStatus) Terminal() bool {
	switch s {
	case TicketStatusServed, TicketStatusExpired, TicketStatusNoShow:
		return true
	}
	return false
}

// Ticket is a customer's position in one service queue.
type Ticket struct {
	ID           int64
	TicketNumber int
	Status       TicketStatus
	CustomerName string
	ServiceID    int64
	UserID       *int64
	CounterID    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ScannedAt    *time.Time
	ServedAt     *time.Time
	CompletedAt  *time.Time
	ExpiresAt    *time.Time
}

// OwnedBy reports whether the ticket was requested by the given account.
func (t *Ticket) OwnedBy(userID int64) bool {
	return t.UserID != nil && *t.UserID == userID
}
