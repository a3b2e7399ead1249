package domain

// TicketAction names a lifecycle step applied to an existing ticket.
type TicketAction string

const (
	ActionActivate TicketAction = "activate"
	ActionCallNext TicketAction = "call_next"
	ActionComplete TicketAction = "complete"
	ActionNoShow   TicketAction = "no_show"
	ActionExpire   TicketAction = "expire"
)

type transition struct {
	from []TicketStatus
	to   TicketStatus
}

// Re-activating a waiting ticket only refreshes its scan time.
var transitions = map[TicketAction]transition{
	ActionActivate: {from: []TicketStatus{TicketStatusPending, TicketStatusWaiting}, to: TicketStatusWaiting},
	ActionCallNext: {from: []TicketStatus{TicketStatusWaiting}, to: TicketStatusServing},
	ActionComplete: {from: []TicketStatus{TicketStatusServing}, to: TicketStatusServed},
	ActionNoShow:   {from: []TicketStatus{TicketStatusServing}, to: TicketStatusNoShow},
	ActionExpire:   {from: []TicketStatus{TicketStatusPending}, to: TicketStatusExpired},
}

// Sources lists the statuses the action may be applied to.
func (a TicketAction) Sources() []TicketStatus {
	return append([]TicketStatus(nil), transitions[a].from...)
}

// Target returns the status the action produces, or "" for an unknown action.
func (a TicketAction) Target() TicketStatus {
	return transitions[a].to
}

// CanTransition reports whether action is legal from the given status.
func CanTransition(action TicketAction, from TicketStatus) bool {
	for _, status := range transitions[action].from {
		if status == from {
			return true
		}
	}
	return false
}
