package service

import "github.com/google/uuid"

// IdentityProvider issues the per-session user identifiers that votes are
// attributed to. The default implementation hands out random tokens, which
// matches the anonymous-session model: one identity per connection, no
// authentication. Swapping in an authenticated provider touches nothing in
// the voting logic.
type IdentityProvider interface {
	Issue() string
}

type randomIdentity struct{}

// NewRandomIdentity returns an IdentityProvider backed by random UUIDs.
func NewRandomIdentity() IdentityProvider {
	return randomIdentity{}
}

func (randomIdentity) Issue() string {
	return uuid.NewString()
}
