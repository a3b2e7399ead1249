// Package memory keeps every repository contract in process memory.
//
// All repositories built from one Store share a single mutex, so ticket
// numbering and call-next claims are serialized the same way the Postgres
// implementation serializes them with row locks.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/repository"
)

// Store holds the shared tables.
type Store struct {
	mu sync.Mutex
	now func() time.Time

	tickets   map[int64]*domain.Ticket
	services  map[int64]*domain.Service
	counters  map[int64]*domain.Counter
	users     map[int64]*domain.User
	sequences map[int64]int
	lastID    map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:       time.Now,
		tickets:   make(map[int64]*domain.Ticket),
		services:  make(map[int64]*domain.Service),
		counters:  make(map[int64]*domain.Counter),
		users:     make(map[int64]*domain.User),
		sequences: make(map[int64]int),
		lastID:    make(map[string]int64),
	}
}

// WithClock replaces the clock used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Repositories exposes the store through the repository contracts.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tickets:  &ticketRepository{s},
		Services: &serviceRepository{s},
		Counters: &counterRepository{s},
		Users:    &userRepository{s},
	}
}

func (s *Store) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

type ticketRepository struct{ s *Store }

func (r *ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sequences[ticket.ServiceID]++
	ticket.TicketNumber = r.s.sequences[ticket.ServiceID]
	ticket.ID = r.s.nextID("tickets")
	now := r.s.now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	stored := cloneTicket(ticket)
	r.s.tickets[ticket.ID] = &stored
	return nil
}

func (r *ticketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *ticketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := []domain.Ticket{}
	for _, ticket := range r.s.tickets {
		if filter.UserID != nil && !ticket.OwnedBy(*filter.UserID) {
			continue
		}
		if filter.ServiceID != nil && ticket.ServiceID != *filter.ServiceID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, cloneTicket(ticket))
	}

	if filter.Order == repository.OrderNewestFirst {
		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].ID > result[j].ID
		})
	} else {
		sort.Slice(result, func(i, j int) bool {
			if result[i].ServiceID != result[j].ServiceID {
				return result[i].ServiceID < result[j].ServiceID
			}
			return result[i].TicketNumber < result[j].TicketNumber
		})
	}
	return result, nil
}

func (r *ticketRepository) Transition(_ context.Context, id int64, action domain.TicketAction, change repository.TicketChange) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !domain.CanTransition(action, ticket.Status) || action == domain.ActionCallNext {
		return nil, repository.ErrInvalidState
	}
	if change.CounterID != nil && (ticket.CounterID == nil || *ticket.CounterID != *change.CounterID) {
		return nil, repository.ErrCounterMismatch
	}

	at := change.At
	ticket.Status = action.Target()
	ticket.UpdatedAt = at
	switch action {
	case domain.ActionActivate:
		ticket.ScannedAt = &at
	case domain.ActionComplete, domain.ActionNoShow:
		ticket.CompletedAt = &at
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *ticketRepository) ClaimNext(_ context.Context, serviceID, counterID int64, at time.Time) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var next *domain.Ticket
	for _, ticket := range r.s.tickets {
		if ticket.ServiceID != serviceID || ticket.Status != domain.TicketStatusWaiting {
			continue
		}
		if next == nil || ticket.TicketNumber < next.TicketNumber ||
			(ticket.TicketNumber == next.TicketNumber && ticket.CreatedAt.Before(next.CreatedAt)) {
			next = ticket
		}
	}
	if next == nil {
		return nil, repository.ErrNoWaitingTicket
	}

	counter := counterID
	next.Status = domain.TicketStatusServing
	next.CounterID = &counter
	next.ServedAt = &at
	next.UpdatedAt = at
	out := cloneTicket(next)
	return &out, nil
}

func (r *ticketRepository) ExpirePending(_ context.Context, now time.Time) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	expired := []domain.Ticket{}
	for _, ticket := range r.s.tickets {
		if ticket.Status != domain.TicketStatusPending || ticket.ExpiresAt == nil || ticket.ExpiresAt.After(now) {
			continue
		}
		ticket.Status = domain.TicketStatusExpired
		ticket.UpdatedAt = now
		expired = append(expired, cloneTicket(ticket))
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

type serviceRepository struct{ s *Store }

func (r *serviceRepository) Create(_ context.Context, svc *domain.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	svc.ID = r.s.nextID("services")
	now := r.s.now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	stored := *svc
	r.s.services[svc.ID] = &stored
	return nil
}

func (r *serviceRepository) Update(_ context.Context, svc *domain.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.services[svc.ID]
	if !ok {
		return repository.ErrNotFound
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = r.s.now()
	stored := *svc
	r.s.services[svc.ID] = &stored
	return nil
}

func (r *serviceRepository) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *svc
	return &out, nil
}

func (r *serviceRepository) List(_ context.Context) ([]domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.Service, 0, len(r.s.services))
	for _, svc := range r.s.services {
		result = append(result, *svc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *serviceRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.services, id)
	return nil
}

type counterRepository struct{ s *Store }

func (r *counterRepository) Create(_ context.Context, counter *domain.Counter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counter.ID = r.s.nextID("counters")
	now := r.s.now()
	counter.CreatedAt = now
	counter.UpdatedAt = now
	stored := *counter
	r.s.counters[counter.ID] = &stored
	return nil
}

func (r *counterRepository) Update(_ context.Context, counter *domain.Counter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.counters[counter.ID]
	if !ok {
		return repository.ErrNotFound
	}
	counter.CreatedAt = existing.CreatedAt
	counter.UpdatedAt = r.s.now()
	stored := *counter
	r.s.counters[counter.ID] = &stored
	return nil
}

func (r *counterRepository) GetByID(_ context.Context, id int64) (*domain.Counter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counter, ok := r.s.counters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *counter
	return &out, nil
}

func (r *counterRepository) List(_ context.Context) ([]domain.Counter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]domain.Counter, 0, len(r.s.counters))
	for _, counter := range r.s.counters {
		result = append(result, *counter)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *counterRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.counters[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.counters, id)
	return nil
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = r.s.nextID("users")
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// cloneTicket copies the ticket including its pointer fields so callers never
// share memory with the stored row.
func cloneTicket(ticket *domain.Ticket) domain.Ticket {
	out := *ticket
	out.UserID = cloneInt64(ticket.UserID)
	out.CounterID = cloneInt64(ticket.CounterID)
	out.ScannedAt = cloneTime(ticket.ScannedAt)
	out.ServedAt = cloneTime(ticket.ServedAt)
	out.CompletedAt = cloneTime(ticket.CompletedAt)
	out.ExpiresAt = cloneTime(ticket.ExpiresAt)
	return out
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
