package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		action TicketAction
		from   TicketStatus
		valid  bool
	}{
		{ActionActivate, TicketStatusPending, true},
		{ActionActivate, TicketStatusWaiting, true},
		{ActionActivate, TicketStatusServing, false},
		{ActionActivate, TicketStatusExpired, false},
		{ActionCallNext, TicketStatusWaiting, true},
		{ActionCallNext, TicketStatusPending, false},
		{ActionComplete, TicketStatusServing, true},
		{ActionComplete, TicketStatusWaiting, false},
		{ActionNoShow, TicketStatusServing, true},
		{ActionNoShow, TicketStatusServed, false},
		{ActionExpire, TicketStatusPending, true},
		{ActionExpire, TicketStatusWaiting, false},
		{TicketAction("unknown"), TicketStatusPending, false},
	}

	for _, tt := range cases {
		assert.Equal(t, tt.valid, CanTransition(tt.action, tt.from), "%s from %s", tt.action, tt.from)
	}
}

func TestActionTargets(t *testing.T) {
	assert.Equal(t, TicketStatusWaiting, ActionActivate.Target())
	assert.Equal(t, TicketStatusServing, ActionCallNext.Target())
	assert.Equal(t, TicketStatusServed, ActionComplete.Target())
	assert.Equal(t, TicketStatusNoShow, ActionNoShow.Target())
	assert.Equal(t, TicketStatusExpired, ActionExpire.Target())
	assert.Empty(t, TicketAction("bogus").Target())
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, TicketStatusServed.Terminal())
	assert.True(t, TicketStatusNoShow.Terminal())
	assert.True(t, TicketStatusExpired.Terminal())
	assert.False(t, TicketStatusServing.Terminal())
	assert.False(t, TicketStatusPending.Terminal())
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, RoleCustomer, role)

	role, ok = ParseRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestIdentityIs(t *testing.T) {
	var anonymous *Identity
	assert.False(t, anonymous.Is(RoleAdmin))

	staff := &Identity{ID: 4, Role: RoleStaff}
	assert.True(t, staff.Is(RoleStaff, RoleAdmin))
	assert.False(t, staff.Is(RoleAdmin))
}
