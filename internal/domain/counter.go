package domain

import "time"

// Counter is a staffed position serving one assigned queue.
type Counter struct {
	ID        int64
	Name      string
	UserID    *int64
	ServiceID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
