package repository

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidState    = errors.New("ticket not in a state allowing this action")
	ErrCounterMismatch = errors.New("ticket is held by another counter")
	ErrNoWaitingTicket = errors.New("no waiting ticket")
	ErrDuplicateEmail  = errors.New("email already registered")
)
