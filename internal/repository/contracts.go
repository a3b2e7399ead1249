package repository

import (
	"context"
	"time"

	"github.com/queuedesk/queue-service/internal/domain"
)

// TicketOrder selects the sort applied by TicketRepository.List.
type TicketOrder int

const (
	// OrderQueue sorts by service then ticket number.
	OrderQueue TicketOrder = iota
	// OrderNewestFirst sorts by creation time, newest first.
	OrderNewestFirst
)

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	UserID    *int64
	ServiceID *int64
	Statuses  []domain.TicketStatus
	Order     TicketOrder
}

// TicketChange carries the inputs of a lifecycle transition.
type TicketChange struct {
	At time.Time
	// CounterID, when set, must match the counter holding the ticket.
	CounterID *int64
}

// TicketRepository encapsulates ticket persistence.
//
// Create assigns the next per-service ticket number and ClaimNext claims the
// oldest waiting ticket; both are atomic with respect to concurrent callers.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Transition(ctx context.Context, id int64, action domain.TicketAction, change TicketChange) (*domain.Ticket, error)
	ClaimNext(ctx context.Context, serviceID, counterID int64, at time.Time) (*domain.Ticket, error)
	ExpirePending(ctx context.Context, now time.Time) ([]domain.Ticket, error)
}

// ServiceRepository manages queue service definitions.
type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) error
	Update(ctx context.Context, svc *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Delete(ctx context.Context, id int64) error
}

// CounterRepository manages counters.
type CounterRepository interface {
	Create(ctx context.Context, counter *domain.Counter) error
	Update(ctx context.Context, counter *domain.Counter) error
	GetByID(ctx context.Context, id int64) (*domain.Counter, error)
	List(ctx context.Context) ([]domain.Counter, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Repositories bundles one implementation of every contract.
type Repositories struct {
	Tickets  TicketRepository
	Services ServiceRepository
	Counters CounterRepository
	Users    UserRepository
}
