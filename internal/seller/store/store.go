// Package store persists the seller application audit trail. Every
// submission outcome is appended; nothing is ever updated in place.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "agora/pkg/domain"
)

// Status is the recorded outcome of one submission attempt.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// ApplicationFields is the submitted draft content.
type ApplicationFields struct {
	BusinessName string
	Description  string
	Expertise    string
	Experience   string
	Portfolio    string
	Motivation   string
}

// Application is one recorded submission attempt.
type Application struct {
	ID        id.ApplicationID
	UserID    id.UserID
	Fields    ApplicationFields
	Status    Status
	CreatedAt time.Time
}

// NewApplication mints a record for a submission outcome.
func NewApplication(userID id.UserID, fields ApplicationFields, status Status, at time.Time) Application {
	return Application{
		ID:        id.ApplicationID(uuid.New()),
		UserID:    userID,
		Fields:    fields,
		Status:    status,
		CreatedAt: at,
	}
}

// ApplicationStore is the persistence boundary for the audit trail.
type ApplicationStore interface {
	Save(ctx context.Context, app Application) error
	FindByUser(ctx context.Context, userID id.UserID) ([]Application, error)
}
