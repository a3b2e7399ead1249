package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuedesk/queue-service/internal/domain"
)

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository builds the repository.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

func (r *serviceRepository) Create(ctx context.Context, svc *domain.Service) error {
	const query = `
        INSERT INTO services (name, description, average_service_time)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		svc.Name,
		svc.Description,
		svc.AverageServiceTime,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, svc *domain.Service) error {
	const query = `
        UPDATE services SET name=$1, description=$2, average_service_time=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		svc.Name,
		svc.Description,
		svc.AverageServiceTime,
		svc.ID,
	).Scan(&svc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *serviceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	const query = `
        SELECT id, name, description, average_service_time, created_at, updated_at
        FROM services WHERE id=$1`
	var svc domain.Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.AverageServiceTime,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) List(ctx context.Context) ([]domain.Service, error) {
	const query = `
        SELECT id, name, description, average_service_time, created_at, updated_at
        FROM services ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Service{}
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.AverageServiceTime, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
