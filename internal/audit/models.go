// Package audit captures the gateway's security-relevant actions: seller
// application outcomes, admin area denials, sign-ins, and device drift.
// Events are append-only and fan out to a store and an optional broker sink.
package audit

import (
	"time"

	id "agora/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionLogin                Action = "login"
	ActionApplicationSubmitted Action = "seller_application_submitted"
	ActionApplicationAccepted  Action = "seller_application_accepted"
	ActionApplicationRejected  Action = "seller_application_rejected"
	ActionAdminAccessDenied    Action = "admin_access_denied"
	ActionSessionDeviceDrift   Action = "session_device_drift"
)

// Event is one recorded action. Detail carries action-specific context
// (denied path, rejection fields) and must not contain credentials.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	UserID    id.UserID         `json:"user_id"`
	Action    Action            `json:"action"`
	Detail    map[string]string `json:"detail,omitempty"`
}
