package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	id "agora/pkg/domain"
)

const createApplicationsTable = `
CREATE TABLE IF NOT EXISTS seller_applications (
	id            UUID PRIMARY KEY,
	user_id       UUID NOT NULL,
	business_name TEXT NOT NULL,
	description   TEXT NOT NULL,
	expertise     TEXT NOT NULL,
	experience    TEXT NOT NULL,
	portfolio     TEXT NOT NULL DEFAULT '',
	motivation    TEXT NOT NULL,
	status        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS seller_applications_user_idx ON seller_applications (user_id, created_at);
`

// Postgres persists the audit trail durably.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres ensures the schema exists and returns the store.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, createApplicationsTable); err != nil {
		return nil, fmt.Errorf("create seller_applications table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Save(ctx context.Context, app Application) error {
	const query = `
		INSERT INTO seller_applications
			(id, user_id, business_name, description, expertise, experience, portfolio, motivation, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		uuid.UUID(app.ID),
		uuid.UUID(app.UserID),
		app.Fields.BusinessName,
		app.Fields.Description,
		app.Fields.Expertise,
		app.Fields.Experience,
		app.Fields.Portfolio,
		app.Fields.Motivation,
		string(app.Status),
		app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByUser(ctx context.Context, userID id.UserID) ([]Application, error) {
	const query = `
		SELECT id, user_id, business_name, description, expertise, experience, portfolio, motivation, status, created_at
		FROM seller_applications
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var (
			app    Application
			appID  uuid.UUID
			user   uuid.UUID
			status string
		)
		if err := rows.Scan(
			&appID,
			&user,
			&app.Fields.BusinessName,
			&app.Fields.Description,
			&app.Fields.Expertise,
			&app.Fields.Experience,
			&app.Fields.Portfolio,
			&app.Fields.Motivation,
			&status,
			&app.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		app.ID = id.ApplicationID(appID)
		app.UserID = id.UserID(user)
		app.Status = Status(status)
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}
