package domain

// Identity is the authenticated caller of a single request.
type Identity struct {
	UserID      int64
	Username    string
	Role        Role
	Authorities []string
}

// NewIdentity derives the request identity from a stored user.
func NewIdentity(user *User) *Identity {
	return &Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Authorities: []string{user.Role.Authority()},
	}
}

// HasAuthority reports whether the identity was granted authority.
func (i *Identity) HasAuthority(authority string) bool {
	if i == nil {
		return false
	}
	for _, a := range i.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
