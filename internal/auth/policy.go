package auth

import "github.com/queuedesk/queue-service/internal/domain"

// CanActivateTicket allows anonymous callers, and authenticated callers unless
// the ticket belongs to someone else.
func CanActivateTicket(caller *domain.Identity, ticket *domain.Ticket) bool {
	if caller == nil || ticket.UserID == nil {
		return true
	}
	return ticket.OwnedBy(caller.ID)
}

// CanFinishTicket covers completing a ticket and marking it a no-show.
func CanFinishTicket(caller *domain.Identity) bool {
	return caller.Is(domain.RoleStaff, domain.RoleAdmin)
}

// CanManageCatalog covers service and counter mutations.
func CanManageCatalog(caller *domain.Identity) bool {
	return caller.Is(domain.RoleAdmin)
}
