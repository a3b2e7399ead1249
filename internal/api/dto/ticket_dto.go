package dto

import (
	"time"

	"github.com/queuedesk/queue-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerName string `json:"customerName"`
	ServiceID    int64  `json:"serviceId"`
}

// CallNextRequest payload.
type CallNextRequest struct {
	CounterID int64 `json:"counterId"`
	ServiceID int64 `json:"serviceId"`
}

// FinishTicketRequest is the optional body of complete and no-show.
type FinishTicketRequest struct {
	CounterID *int64 `json:"counterId"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID           int64               `json:"id"`
	TicketNumber int                 `json:"ticketNumber"`
	Status       domain.TicketStatus `json:"status"`
	CustomerName string              `json:"customerName"`
	ServiceID    int64               `json:"serviceId"`
	UserID       *int64              `json:"userId"`
	CounterID    *int64              `json:"counterId"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	ScannedAt    *time.Time          `json:"scannedAt"`
	ServedAt     *time.Time          `json:"servedAt"`
	CompletedAt  *time.Time          `json:"completedAt"`
	ExpiresAt    *time.Time          `json:"expiresAt"`
}

// Ticket maps a domain ticket to its response.
func Ticket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		Status:       t.Status,
		CustomerName: t.CustomerName,
		ServiceID:    t.ServiceID,
		UserID:       t.UserID,
		CounterID:    t.CounterID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		ScannedAt:    t.ScannedAt,
		ServedAt:     t.ServedAt,
		CompletedAt:  t.CompletedAt,
		ExpiresAt:    t.ExpiresAt,
	}
}

// Tickets maps a slice, never returning nil.
func Tickets(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, Ticket(&tickets[i]))
	}
	return items
}
