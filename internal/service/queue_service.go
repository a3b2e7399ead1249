package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/events"
	"github.com/queuedesk/queue-service/internal/observability"
	"github.com/queuedesk/queue-service/internal/repository"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

// QueueService coordinates the ticket lifecycle.
type QueueService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	pendingTTL time.Duration
	now        func() time.Time
}

// QueueDependencies bundles collaborators for the queue service.
type QueueDependencies struct {
	Tickets    repository.TicketRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// PendingTTL bounds how long a ticket may stay pending; zero disables expiry.
	PendingTTL time.Duration
	Now        func() time.Time
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	CustomerName string
	ServiceID    int64
}

// CallNextInput identifies the counter calling and the queue it serves.
type CallNextInput struct {
	CounterID int64
	ServiceID int64
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	svc := &QueueService{
		tickets:    deps.Tickets,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		pendingTTL: deps.PendingTTL,
		now:        deps.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// CreateTicket issues the next number of a service queue.
func (s *QueueService) CreateTicket(ctx context.Context, caller *domain.Identity, input CreateTicketInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(input.CustomerName)
	missing := []string{}
	if name == "" {
		missing = append(missing, "customerName")
	}
	if input.ServiceID <= 0 {
		missing = append(missing, "serviceId")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("customer name and service are required", map[string]any{"missing": missing})
	}

	ticket := &domain.Ticket{
		Status:       domain.TicketStatusPending,
		CustomerName: name,
		ServiceID:    input.ServiceID,
	}
	if caller != nil {
		userID := caller.ID
		ticket.UserID = &userID
	}
	if s.pendingTTL > 0 {
		expiresAt := s.now().UTC().Add(s.pendingTTL)
		ticket.ExpiresAt = &expiresAt
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("create ticket failed", zap.Int64("service_id", input.ServiceID), zap.Error(err))
		return nil, mapRepoError(err, "ticket", nil)
	}

	s.metrics.TicketCreated()
	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("service_id", ticket.ServiceID),
		zap.Int("ticket_number", ticket.TicketNumber))
	s.publish(ctx, events.EventTicketCreated, ticket, caller)
	return ticket, nil
}

// ActivateTicket marks a ticket as scanned on arrival, moving it into the waiting queue.
func (s *QueueService) ActivateTicket(ctx context.Context, caller *domain.Identity, ticketID int64) (*domain.Ticket, error) {
	details := map[string]any{"ticketId": ticketID}

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket", details)
	}
	if !auth.CanActivateTicket(caller, current) {
		return nil, apperrors.NewForbidden("ticket belongs to another user")
	}

	ticket, err := s.tickets.Transition(ctx, ticketID, domain.ActionActivate, repository.TicketChange{At: s.now().UTC()})
	if err != nil {
		return nil, mapRepoError(err, "ticket", details)
	}

	s.logger.Info("ticket activated", zap.Int64("ticket_id", ticket.ID))
	s.publish(ctx, events.EventTicketActivated, ticket, caller)
	return ticket, nil
}

// CallNextTicket hands the lowest-numbered waiting ticket of a service to a counter.
func (s *QueueService) CallNextTicket(ctx context.Context, input CallNextInput) (*domain.Ticket, error) {
	if input.CounterID <= 0 || input.ServiceID <= 0 {
		return nil, apperrors.NewValidationError("counter and service are required", map[string]any{
			"counterId": input.CounterID,
			"serviceId": input.ServiceID,
		})
	}

	ticket, err := s.tickets.ClaimNext(ctx, input.ServiceID, input.CounterID, s.now().UTC())
	if err != nil {
		return nil, mapRepoError(err, "ticket", nil)
	}

	s.metrics.TicketCalled()
	s.logger.Info("ticket called",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int("ticket_number", ticket.TicketNumber),
		zap.Int64("counter_id", input.CounterID))
	s.publish(ctx, events.EventTicketCalled, ticket, nil)
	return ticket, nil
}

// CompleteTicket closes a ticket that was served.
func (s *QueueService) CompleteTicket(ctx context.Context, caller *domain.Identity, ticketID int64, counterID *int64) (*domain.Ticket, error) {
	return s.finish(ctx, caller, ticketID, counterID, domain.ActionComplete, events.EventTicketCompleted)
}

// MarkNoShow closes a called ticket whose customer never came to the counter.
func (s *QueueService) MarkNoShow(ctx context.Context, caller *domain.Identity, ticketID int64, counterID *int64) (*domain.Ticket, error) {
	return s.finish(ctx, caller, ticketID, counterID, domain.ActionNoShow, events.EventTicketNoShow)
}

func (s *QueueService) finish(ctx context.Context, caller *domain.Identity, ticketID int64, counterID *int64, action domain.TicketAction, eventType events.EventType) (*domain.Ticket, error) {
	if !auth.CanFinishTicket(caller) {
		return nil, apperrors.NewForbidden("staff role required")
	}

	ticket, err := s.tickets.Transition(ctx, ticketID, action, repository.TicketChange{At: s.now().UTC(), CounterID: counterID})
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticketId": ticketID})
	}

	s.metrics.TicketFinished(string(ticket.Status))
	s.logger.Info("ticket finished", zap.Int64("ticket_id", ticket.ID), zap.String("status", string(ticket.Status)))
	s.publish(ctx, eventType, ticket, caller)
	return ticket, nil
}

// ListTickets returns every ticket ordered by service and number.
func (s *QueueService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Order: repository.OrderQueue})
	if err != nil {
		return nil, mapRepoError(err, "ticket", nil)
	}
	return tickets, nil
}

// ListUserTickets returns the caller's tickets, newest first.
func (s *QueueService) ListUserTickets(ctx context.Context, caller *domain.Identity) ([]domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewValidationError("user identity required", nil)
	}
	userID := caller.ID
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{UserID: &userID, Order: repository.OrderNewestFirst})
	if err != nil {
		return nil, mapRepoError(err, "ticket", nil)
	}
	return tickets, nil
}

// ListQueue returns the waiting and serving tickets, optionally for one service.
func (s *QueueService) ListQueue(ctx context.Context, serviceID *int64) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		ServiceID: serviceID,
		Statuses:  []domain.TicketStatus{domain.TicketStatusWaiting, domain.TicketStatusServing},
		Order:     repository.OrderQueue,
	})
	if err != nil {
		return nil, mapRepoError(err, "ticket", nil)
	}
	return tickets, nil
}

// ExpireStaleTickets expires pending tickets past their deadline and reports how many.
func (s *QueueService) ExpireStaleTickets(ctx context.Context) (int, error) {
	expired, err := s.tickets.ExpirePending(ctx, s.now().UTC())
	if err != nil {
		return 0, mapRepoError(err, "ticket", nil)
	}
	for i := range expired {
		s.publish(ctx, events.EventTicketExpired, &expired[i], nil)
	}
	if len(expired) > 0 {
		s.metrics.TicketsExpired(len(expired))
		s.logger.Info("pending tickets expired", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

func (s *QueueService) publish(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, caller *domain.Identity) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewTicketEvent(eventType, ticket, events.ActorFrom(caller), s.now())
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
