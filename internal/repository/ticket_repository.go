package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuedesk/queue-service/internal/domain"
)

const ticketColumns = `id, ticket_number, status, customer_name, service_id, user_id, counter_id,
               created_at, updated_at, scanned_at, served_at, completed_at, expires_at`

// Timestamp column written by each transition besides updated_at.
var transitionColumns = map[domain.TicketAction]string{
	domain.ActionActivate: "scanned_at",
	domain.ActionComplete: "completed_at",
	domain.ActionNoShow:   "completed_at",
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	// The sequence row is seeded from existing tickets on first use and then
	// incremented under its row lock, so concurrent creators never share a number.
	const nextNumber = `
        INSERT INTO ticket_sequences (service_id, next_number)
        VALUES ($1, COALESCE((SELECT MAX(ticket_number) FROM tickets WHERE service_id = $1), 0) + 1)
        ON CONFLICT (service_id)
        DO UPDATE SET next_number = ticket_sequences.next_number + 1
        RETURNING next_number`
	const insert = `
        INSERT INTO tickets (ticket_number, status, customer_name, service_id, user_id, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, nextNumber, ticket.ServiceID).Scan(&ticket.TicketNumber); err != nil {
		return fmt.Errorf("next ticket number: %w", err)
	}
	if err := tx.QueryRow(ctx, insert,
		ticket.TicketNumber,
		ticket.Status,
		ticket.CustomerName,
		ticket.ServiceID,
		ticket.UserID,
		ticket.ExpiresAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.ServiceID != nil {
		args = append(args, *filter.ServiceID)
		clauses = append(clauses, fmt.Sprintf("service_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	order := "service_id ASC, ticket_number ASC"
	if filter.Order == OrderNewestFirst {
		order = "created_at DESC, id DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s`,
		ticketColumns, strings.Join(clauses, " AND "), order)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Transition(ctx context.Context, id int64, action domain.TicketAction, change TicketChange) (*domain.Ticket, error) {
	target := action.Target()
	if target == "" || action == domain.ActionCallNext {
		return nil, fmt.Errorf("unsupported transition %q", action)
	}

	set := "status=$1, updated_at=$2"
	if column, ok := transitionColumns[action]; ok {
		set += ", " + column + "=$2"
	}
	args := []any{target, change.At, id, statusStrings(action.Sources())}
	where := "id=$3 AND status = ANY($4)"
	if change.CounterID != nil {
		args = append(args, *change.CounterID)
		where += " AND counter_id=$5"
	}

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE %s RETURNING %s`, set, where, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(action, current.Status) {
		return nil, ErrInvalidState
	}
	if change.CounterID != nil && (current.CounterID == nil || *current.CounterID != *change.CounterID) {
		return nil, ErrCounterMismatch
	}
	// The row moved between the update and the re-read.
	return nil, ErrInvalidState
}

func (r *ticketRepository) ClaimNext(ctx context.Context, serviceID, counterID int64, at time.Time) (*domain.Ticket, error) {
	const query = `
        WITH next_ticket AS (
            SELECT id
            FROM tickets
            WHERE service_id = $1 AND status = 'waiting'
            ORDER BY ticket_number ASC, created_at ASC
            FOR UPDATE SKIP LOCKED
            LIMIT 1
        )
        UPDATE tickets
        SET status = 'serving', counter_id = $2, served_at = $3, updated_at = $3
        FROM next_ticket
        WHERE tickets.id = next_ticket.id
        RETURNING tickets.id, tickets.ticket_number, tickets.status, tickets.customer_name, tickets.service_id,
                  tickets.user_id, tickets.counter_id, tickets.created_at, tickets.updated_at, tickets.scanned_at,
                  tickets.served_at, tickets.completed_at, tickets.expires_at`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, serviceID, counterID, at))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoWaitingTicket
	}
	return ticket, err
}

func (r *ticketRepository) ExpirePending(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	query := `
        UPDATE tickets SET status='expired', updated_at=$1
        WHERE status='pending' AND expires_at IS NOT NULL AND expires_at <= $1
        RETURNING ` + ticketColumns

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(ticketDest(&ticket)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketDest(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func ticketDest(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Status,
		&ticket.CustomerName,
		&ticket.ServiceID,
		&ticket.UserID,
		&ticket.CounterID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ScannedAt,
		&ticket.ServedAt,
		&ticket.CompletedAt,
		&ticket.ExpiresAt,
	}
}

func statusStrings(statuses []domain.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = string(status)
	}
	return out
}
