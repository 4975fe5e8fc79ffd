// Package domain holds identifier types and enums shared across modules.
//
// IDs are typed wrappers over uuid.UUID so a user ID can never be passed
// where an application or notification ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "agora/pkg/domain-errors"
)

type (
	// UserID identifies a marketplace identity.
	UserID uuid.UUID
	// ApplicationID identifies a submitted seller application.
	ApplicationID uuid.UUID
	// NotificationID identifies a notification feed entry.
	NotificationID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id ApplicationID) String() string  { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid uuid")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil uuid")
	}
	return parsed, nil
}

// ParseUserID parses an external string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseApplicationID parses an external string into an ApplicationID.
func ParseApplicationID(raw string) (ApplicationID, error) {
	parsed, err := parseUUID(raw, "application")
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(parsed), nil
}

// ParseNotificationID parses an external string into a NotificationID.
func ParseNotificationID(raw string) (NotificationID, error) {
	parsed, err := parseUUID(raw, "notification")
	if err != nil {
		return NotificationID{}, err
	}
	return NotificationID(parsed), nil
}
