// Package identity owns the gateway's view of the signed-in user: the
// session context that wraps the external identity provider, and the
// resolver that maps a role attribute to a capability tier.
package identity

import (
	id "agora/pkg/domain"
)

// Session is the raw record delivered by the identity provider. The role
// attribute is an untrusted string; resolution to a Tier happens here, once,
// rather than in every consumer.
type Session struct {
	UserID id.UserID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Token  string    `json:"token"`
}

// Identity is the resolved view of a session. It is read-only for every
// consumer: tier changes only arrive by replacing the whole cached identity
// after a provider refresh, never by local mutation.
type Identity struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	Tier         id.Tier   `json:"tier"`
	SessionToken string    `json:"-"`
	// Fingerprint is the device fingerprint observed when the snapshot was
	// cached. Like the token it never leaves the gateway.
	Fingerprint string `json:"-"`
}

// resolve converts a provider session into an Identity.
func resolve(s *Session) *Identity {
	if s == nil {
		return nil
	}
	return &Identity{
		ID:           s.UserID,
		Email:        s.Email,
		Tier:         id.ParseTier(s.Role),
		SessionToken: s.Token,
	}
}
