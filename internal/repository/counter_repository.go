package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuedesk/queue-service/internal/domain"
)

type counterRepository struct {
	pool *pgxpool.Pool
}

// NewCounterRepository builds the repository.
func NewCounterRepository(pool *pgxpool.Pool) CounterRepository {
	return &counterRepository{pool: pool}
}

func (r *counterRepository) Create(ctx context.Context, counter *domain.Counter) error {
	const query = `
        INSERT INTO counters (name, user_id, service_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		counter.Name,
		counter.UserID,
		counter.ServiceID,
	).Scan(&counter.ID, &counter.CreatedAt, &counter.UpdatedAt)
}

func (r *counterRepository) Update(ctx context.Context, counter *domain.Counter) error {
	const query = `
        UPDATE counters SET name=$1, user_id=$2, service_id=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		counter.Name,
		counter.UserID,
		counter.ServiceID,
		counter.ID,
	).Scan(&counter.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *counterRepository) GetByID(ctx context.Context, id int64) (*domain.Counter, error) {
	const query = `
        SELECT id, name, user_id, service_id, created_at, updated_at
        FROM counters WHERE id=$1`
	var counter domain.Counter
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&counter.ID,
		&counter.Name,
		&counter.UserID,
		&counter.ServiceID,
		&counter.CreatedAt,
		&counter.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &counter, nil
}

func (r *counterRepository) List(ctx context.Context) ([]domain.Counter, error) {
	const query = `
        SELECT id, name, user_id, service_id, created_at, updated_at
        FROM counters ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Counter{}
	for rows.Next() {
		var counter domain.Counter
		if err := rows.Scan(&counter.ID, &counter.Name, &counter.UserID, &counter.ServiceID, &counter.CreatedAt, &counter.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, counter)
	}
	return result, rows.Err()
}

func (r *counterRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM counters WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
