package domain

// Identity is the authenticated caller decoded from a bearer token.
type Identity struct {
	ID   int64
	Role Role
}

// Is reports whether the identity holds one of roles.
func (i *Identity) Is(roles ...Role) bool {
	if i == nil {
		return false
	}
	for _, role := range roles {
		if i.Role == role {
			return true
		}
	}
	return false
}
