package domain

import (
	"strings"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// ParseRole normalizes a role name; an empty value defaults to customer.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case "", RoleCustomer:
		return RoleCustomer, true
	case RoleStaff:
		return RoleStaff, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// User is an account able to log in.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
