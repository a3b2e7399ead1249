package domain

import "time"

// Service is a category of work customers queue for.
type Service struct {
	ID                 int64
	Name               string
	Description        string
	AverageServiceTime *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
