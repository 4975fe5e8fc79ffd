// Package notification holds the per-session notification feed: records
// synced from the backend event source plus local read-state with optimistic
// mutation and rollback.
package notification

import (
	"time"

	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
)

// Type classifies a feed entry.
type Type string

const (
	TypeOrder   Type = "order"
	TypePayment Type = "payment"
	TypeReview  Type = "review"
	TypeMessage Type = "message"
	TypeSystem  Type = "system"
)

// ParseType validates a wire value against the known types.
func ParseType(raw string) (Type, error) {
	switch t := Type(raw); t {
	case TypeOrder, TypePayment, TypeReview, TypeMessage, TypeSystem:
		return t, nil
	default:
		return "", dErrors.Invalid("unknown notification type", "type")
	}
}

// Notification is one feed entry. IsRead is the only field this module ever
// mutates, and only false→true; entries are created and deleted by the
// backend, never here.
type Notification struct {
	ID        id.NotificationID `json:"id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
	ActionURL id.Path           `json:"action_url,omitempty"`
}
