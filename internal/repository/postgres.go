package repository

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresRepositories wires every contract to the given pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Tickets:  NewTicketRepository(pool),
		Services: NewServiceRepository(pool),
		Counters: NewCounterRepository(pool),
		Users:    NewUserRepository(pool),
	}
}
