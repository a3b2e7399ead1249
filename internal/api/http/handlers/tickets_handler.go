package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/queuedesk/queue-service/internal/api/dto"
	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/service"
)

// TicketsHandler exposes the ticket lifecycle.
type TicketsHandler struct {
	queue *service.QueueService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(queue *service.QueueService) *TicketsHandler {
	return &TicketsHandler{queue: queue}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.queue.CreateTicket(c.UserContext(), caller(c), service.CreateTicketInput{
		CustomerName: req.CustomerName,
		ServiceID:    req.ServiceID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Ticket(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.queue.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Tickets(tickets))
}

// ListUserTickets GET /tickets/user.
func (h *TicketsHandler) ListUserTickets(c *fiber.Ctx) error {
	tickets, err := h.queue.ListUserTickets(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.Tickets(tickets))
}

// ActivateTicket PUT /tickets/:id/activate.
func (h *TicketsHandler) ActivateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.queue.ActivateTicket(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.Ticket(ticket))
}

// CallNext POST /tickets/next.
func (h *TicketsHandler) CallNext(c *fiber.Ctx) error {
	var req dto.CallNextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.queue.CallNextTicket(c.UserContext(), service.CallNextInput{
		CounterID: req.CounterID,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Ticket(ticket))
}

// CompleteTicket PUT /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	return h.finish(c, h.queue.CompleteTicket)
}

// MarkNoShow PUT /tickets/:id/no-show.
func (h *TicketsHandler) MarkNoShow(c *fiber.Ctx) error {
	return h.finish(c, h.queue.MarkNoShow)
}

type finishFunc func(ctx context.Context, caller *domain.Identity, ticketID int64, counterID *int64) (*domain.Ticket, error)

func (h *TicketsHandler) finish(c *fiber.Ctx, fn finishFunc) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FinishTicketRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	ticket, err := fn(c.UserContext(), caller(c), id, req.CounterID)
	if err != nil {
		return err
	}
	return c.JSON(dto.Ticket(ticket))
}

func caller(c *fiber.Ctx) *domain.Identity {
	identity, _ := auth.IdentityFromContext(c)
	return identity
}
