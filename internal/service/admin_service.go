package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/repository"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

// AdminService manages the service catalog and counters.
type AdminService struct {
	services repository.ServiceRepository
	counters repository.CounterRepository
	logger   *zap.Logger
}

// ServiceInput describes a service to create.
type ServiceInput struct {
	Name               string
	Description        string
	AverageServiceTime *int
}

// ServicePatch lists the service fields to change; nil leaves a field as is.
type ServicePatch struct {
	Name               *string
	Description        *string
	AverageServiceTime *int
}

// CounterInput describes a counter to create.
type CounterInput struct {
	Name      string
	UserID    *int64
	ServiceID *int64
}

// CounterPatch lists the counter fields to change; nil leaves a field as is.
type CounterPatch struct {
	Name      *string
	UserID    *int64
	ServiceID *int64
}

// NewAdminService constructs the service.
func NewAdminService(services repository.ServiceRepository, counters repository.CounterRepository, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{services: services, counters: counters, logger: logger}
}

func (s *AdminService) ListServices(ctx context.Context) ([]domain.Service, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "service", nil)
	}
	return services, nil
}

func (s *AdminService) CreateService(ctx context.Context, caller *domain.Identity, input ServiceInput) (*domain.Service, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("service name is required", nil)
	}
	if err := validateServiceTime(input.AverageServiceTime); err != nil {
		return nil, err
	}

	svc := &domain.Service{
		Name:               name,
		Description:        strings.TrimSpace(input.Description),
		AverageServiceTime: input.AverageServiceTime,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, mapRepoError(err, "service", nil)
	}
	s.logger.Info("service created", zap.Int64("service_id", svc.ID))
	return svc, nil
}

func (s *AdminService) UpdateService(ctx context.Context, caller *domain.Identity, id int64, patch ServicePatch) (*domain.Service, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	details := map[string]any{"serviceId": id}

	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "service", details)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("service name cannot be empty", details)
		}
		svc.Name = name
	}
	if patch.Description != nil {
		svc.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.AverageServiceTime != nil {
		if err := validateServiceTime(patch.AverageServiceTime); err != nil {
			return nil, err
		}
		svc.AverageServiceTime = patch.AverageServiceTime
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, mapRepoError(err, "service", details)
	}
	return svc, nil
}

func (s *AdminService) DeleteService(ctx context.Context, caller *domain.Identity, id int64) error {
	if !auth.CanManageCatalog(caller) {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return mapRepoError(err, "service", map[string]any{"serviceId": id})
	}
	s.logger.Info("service deleted", zap.Int64("service_id", id))
	return nil
}

func (s *AdminService) ListCounters(ctx context.Context) ([]domain.Counter, error) {
	counters, err := s.counters.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "counter", nil)
	}
	return counters, nil
}

func (s *AdminService) CreateCounter(ctx context.Context, caller *domain.Identity, input CounterInput) (*domain.Counter, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("counter name is required", nil)
	}

	counter := &domain.Counter{Name: name, UserID: input.UserID, ServiceID: input.ServiceID}
	if err := s.counters.Create(ctx, counter); err != nil {
		return nil, mapRepoError(err, "counter", nil)
	}
	s.logger.Info("counter created", zap.Int64("counter_id", counter.ID))
	return counter, nil
}

func (s *AdminService) UpdateCounter(ctx context.Context, caller *domain.Identity, id int64, patch CounterPatch) (*domain.Counter, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	details := map[string]any{"counterId": id}

	counter, err := s.counters.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "counter", details)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("counter name cannot be empty", details)
		}
		counter.Name = name
	}
	if patch.UserID != nil {
		counter.UserID = patch.UserID
	}
	if patch.ServiceID != nil {
		counter.ServiceID = patch.ServiceID
	}

	if err := s.counters.Update(ctx, counter); err != nil {
		return nil, mapRepoError(err, "counter", details)
	}
	return counter, nil
}

// AssignServiceToCounter points a counter at the queue it calls from.
func (s *AdminService) AssignServiceToCounter(ctx context.Context, caller *domain.Identity, counterID, serviceID int64) (*domain.Counter, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if serviceID <= 0 {
		return nil, apperrors.NewValidationError("serviceId is required", nil)
	}
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return nil, mapRepoError(err, "service", map[string]any{"serviceId": serviceID})
	}

	counter, err := s.UpdateCounter(ctx, caller, counterID, CounterPatch{ServiceID: &serviceID})
	if err != nil {
		return nil, err
	}
	s.logger.Info("service assigned to counter", zap.Int64("counter_id", counterID), zap.Int64("service_id", serviceID))
	return counter, nil
}

func (s *AdminService) DeleteCounter(ctx context.Context, caller *domain.Identity, id int64) error {
	if !auth.CanManageCatalog(caller) {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.counters.Delete(ctx, id); err != nil {
		return mapRepoError(err, "counter", map[string]any{"counterId": id})
	}
	return nil
}

func validateServiceTime(minutes *int) error {
	if minutes != nil && *minutes < 0 {
		return apperrors.NewValidationError("averageServiceTime must not be negative", map[string]any{"averageServiceTime": *minutes})
	}
	return nil
}
