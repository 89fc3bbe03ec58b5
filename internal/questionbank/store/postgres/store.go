package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
)

// Schema creates the question table. Position orders questions within a category.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_questions (
	category          TEXT    NOT NULL,
	position          INTEGER NOT NULL,
	question_id       TEXT    NOT NULL DEFAULT '',
	sub_question      TEXT    NOT NULL,
	baseline_evidence TEXT    NOT NULL DEFAULT '',
	control_id        TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (category, position)
)`

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store reads questions from Postgres.
type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) LoadQuestions(ctx context.Context, c category.Category) ([]questionbank.Question, error) {
	query := `
		SELECT question_id, sub_question, baseline_evidence, control_id
		FROM audit_questions
		WHERE category = $1 AND btrim(sub_question) <> ''
		ORDER BY position ASC
	`
	rows, err := s.db.Query(ctx, query, c.String())
	if err != nil {
		return nil, fmt.Errorf("query questions for %s: %w", c, err)
	}
	qs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (questionbank.Question, error) {
		var q questionbank.Question
		err := row.Scan(&q.ID, &q.SubQuestion, &q.BaselineEvidence, &q.ControlID)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan questions for %s: %w", c, err)
	}
	return questionbank.Clone(qs), nil
}

// Replace swaps the questions of c in one transaction. Used to import a bank
// file into the database.
func (s *Store) Replace(ctx context.Context, c category.Category, qs []questionbank.Question) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM audit_questions WHERE category = $1`, c.String()); err != nil {
			return fmt.Errorf("clear questions for %s: %w", c, err)
		}
		rows := make([][]any, len(qs))
		for i, q := range qs {
			rows[i] = []any{c.String(), i, q.ID, q.SubQuestion, q.BaselineEvidence, q.ControlID}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"audit_questions"},
			[]string{"category", "position", "question_id", "sub_question", "baseline_evidence", "control_id"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("insert questions for %s: %w", c, err)
		}
		return nil
	})
}
