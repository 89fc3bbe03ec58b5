package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
)

// Schema creates the audit_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id             UUID        PRIMARY KEY,
	category       TEXT        NOT NULL,
	timestamp      TIMESTAMPTZ NOT NULL,
	user_id        TEXT        NOT NULL,
	action         TEXT        NOT NULL,
	session_id     TEXT        NOT NULL DEFAULT '',
	run_id         TEXT        NOT NULL DEFAULT '',
	audit_category TEXT        NOT NULL DEFAULT '',
	question_id    TEXT        NOT NULL DEFAULT '',
	decision       TEXT        NOT NULL DEFAULT '',
	reason         TEXT        NOT NULL DEFAULT '',
	request_id     TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_user_idx ON audit_events (user_id, timestamp)`

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists audit events in the audit_events table.
type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, user_id, action, session_id, run_id,
			audit_category, question_id, decision, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.Exec(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		string(event.UserID),
		event.Action,
		event.SessionID,
		event.RunID,
		event.AuditCategory,
		event.QuestionID,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns a user's events, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, user_id, action, session_id, run_id,
			   audit_category, question_id, decision, reason, request_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.Query(ctx, query, string(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	events, err := pgx.CollectRows(rows, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.CollectableRow) (audit.Event, error) {
	var (
		event    audit.Event
		category string
		userID   string
	)
	err := row.Scan(
		&category,
		&event.Timestamp,
		&userID,
		&event.Action,
		&event.SessionID,
		&event.RunID,
		&event.AuditCategory,
		&event.QuestionID,
		&event.Decision,
		&event.Reason,
		&event.RequestID,
	)
	event.Category = audit.EventCategory(category)
	event.UserID = id.UserID(userID)
	return event, err
}
