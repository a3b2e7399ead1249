package dto

import (
	"time"

	"github.com/queuedesk/queue-service/internal/domain"
)

// ServiceRequest is used for create and update; absent fields are nil.
type ServiceRequest struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	AverageServiceTime *int    `json:"averageServiceTime"`
}

// ServiceResponse describes a queue service.
type ServiceResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	AverageServiceTime *int      `json:"averageServiceTime"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CounterRequest is used for create and update; absent fields are nil.
type CounterRequest struct {
	Name      *string `json:"name"`
	UserID    *int64  `json:"userId"`
	ServiceID *int64  `json:"serviceId"`
}

// AssignServiceRequest payload.
type AssignServiceRequest struct {
	ServiceID int64 `json:"serviceId"`
}

// CounterResponse describes a counter.
type CounterResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    *int64    `json:"userId"`
	ServiceID *int64    `json:"serviceId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageResponse is returned by deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

func Service(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		AverageServiceTime: s.AverageServiceTime,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func Services(services []domain.Service) []ServiceResponse {
	items := make([]ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, Service(&services[i]))
	}
	return items
}

func Counter(c *domain.Counter) CounterResponse {
	return CounterResponse{
		ID:        c.ID,
		Name:      c.Name,
		UserID:    c.UserID,
		ServiceID: c.ServiceID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func Counters(counters []domain.Counter) []CounterResponse {
	items := make([]CounterResponse, 0, len(counters))
	for i := range counters {
		items = append(items, Counter(&counters[i]))
	}
	return items
}
