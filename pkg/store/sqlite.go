package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// SQLiteStore backs ConversationStore with a single conversations table.
// Transcript and flashcards are stored as JSON columns, matching how the
// records travel over the wire.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and bootstraps the
// schema. Use ":memory:" for tests.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// modernc sqlite serializes writes; one connection avoids table locks.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS conversations (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		topic       TEXT NOT NULL,
		persona     TEXT NOT NULL,
		skill_level TEXT NOT NULL,
		transcript  TEXT NOT NULL DEFAULT '[]',
		flashcards  TEXT NOT NULL DEFAULT '[]',
		analysis    TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL,
		ended_at    TIMESTAMP
	)`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "ensure conversations table")
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, create *CreateConversation) (*types.ConversationRecord, error) {
	now := time.Now().UTC()
	stmt := `INSERT INTO conversations (id, user_id, topic, persona, skill_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt,
		create.ID, create.UserID, create.Topic, create.Persona, create.SkillLevel, now,
	); err != nil {
		return nil, errors.Wrap(err, "insert conversation")
	}
	return s.Get(ctx, create.ID)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*types.ConversationRecord, error) {
	query := `SELECT id, user_id, topic, persona, skill_level, transcript, flashcards, analysis, created_at, ended_at
		  FROM conversations WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var (
		record        types.ConversationRecord
		transcriptRaw string
		flashcardsRaw string
		endedAt       sql.NullTime
	)
	if err := row.Scan(
		&record.ID, &record.UserID, &record.Topic, &record.Persona, &record.SkillLevel,
		&transcriptRaw, &flashcardsRaw, &record.Analysis, &record.CreatedAt, &endedAt,
	); err != nil {
		return nil, scanErr(err)
	}

	if err := json.Unmarshal([]byte(transcriptRaw), &record.Transcript); err != nil {
		return nil, errors.Wrap(err, "decode transcript column")
	}
	if err := json.Unmarshal([]byte(flashcardsRaw), &record.Flashcards); err != nil {
		return nil, errors.Wrap(err, "decode flashcards column")
	}
	if endedAt.Valid {
		t := endedAt.Time
		record.EndedAt = &t
	}
	return &record, nil
}

func (s *SQLiteStore) Finalize(ctx context.Context, id string, result types.SessionResult) error {
	transcriptRaw, err := json.Marshal(result.Transcript)
	if err != nil {
		return errors.Wrap(err, "encode transcript")
	}
	flashcardsRaw, err := json.Marshal(result.Flashcards)
	if err != nil {
		return errors.Wrap(err, "encode flashcards")
	}

	stmt := `UPDATE conversations
		 SET transcript = ?, flashcards = ?, analysis = ?, ended_at = ?
		 WHERE id = ?`
	res, err := s.db.ExecContext(ctx, stmt,
		string(transcriptRaw), string(flashcardsRaw), result.Analysis, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "finalize conversation")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "finalize conversation")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
