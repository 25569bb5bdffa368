package domain

import "github.com/google/uuid"

// Identity is the authenticated caller as asserted by a verified bearer token.
// It reflects the user at issuance time; role changes apply on the next token.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     Role
}

func (i Identity) HasRole(role Role) bool {
	return i.Role == role
}
