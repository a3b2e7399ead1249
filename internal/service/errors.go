package service

import (
	"errors"

	"github.com/queuedesk/queue-service/internal/repository"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

// mapRepoError translates repository sentinels into DomainErrors. Anything
// unrecognised is a storage failure.
func mapRepoError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrInvalidState):
		return apperrors.NewConflict(resource+" is not in a state that allows this action", details)
	case errors.Is(err, repository.ErrCounterMismatch):
		return apperrors.NewForbidden(resource + " is held by another counter")
	case errors.Is(err, repository.ErrNoWaitingTicket):
		return apperrors.NewNotFoundMessage("no pending tickets")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewValidationError("email already registered", details)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStoreError(err)
}
