// Package transcript stores answered chat questions in PostgreSQL.
package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/errors"
	"youthunion-chat/internal/queryrouter"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_transcripts (
	id          UUID PRIMARY KEY,
	question    TEXT NOT NULL,
	intent      TEXT NOT NULL,
	score       INTEGER NOT NULL DEFAULT 0,
	params      JSONB NOT NULL DEFAULT '{}',
	outcome     TEXT NOT NULL,
	answer      TEXT NOT NULL,
	error       TEXT,
	duration_ms BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`

// Entry is one stored question.
type Entry struct {
	ID         string            `json:"id"`
	Question   string            `json:"question"`
	Intent     string            `json:"intent"`
	Score      int               `json:"score"`
	Params     map[string]string `json:"params,omitempty"`
	Outcome    string            `json:"outcome"`
	Answer     string            `json:"answer"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

type Store struct {
	db      *sql.DB
	timeout time.Duration
	logger  Logger
	now     func() time.Time
}

func NewStore(db *sql.DB, cfg config.TranscriptConfig, log Logger) *Store {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Store{db: db, timeout: timeout, logger: log, now: time.Now}
}

// EnsureSchema creates the table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create chat_transcripts: %w", err)
	}
	return nil
}

// Record inserts res. The write outlives a cancelled request context but is
// bounded by the configured timeout.
func (s *Store) Record(ctx context.Context, res queryrouter.Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	params := res.Analysis.Params
	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return errors.NewTranscriptWriteFailedError(err)
	}

	var errText sql.NullString
	if res.Err != nil {
		errText = sql.NullString{String: res.Err.Error(), Valid: true}
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_transcripts (
			id, question, intent, score, params, outcome, answer, error, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id,
		res.Query,
		res.Analysis.Intent,
		res.Analysis.Score,
		paramsJSON,
		res.Outcome,
		res.Answer,
		errText,
		res.Duration.Milliseconds(),
		s.now().UTC(),
	)
	if err != nil {
		return errors.NewTranscriptWriteFailedError(err)
	}
	return nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, intent, score, params, outcome, answer, error, duration_ms, created_at
		FROM chat_transcripts
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			paramsJSON []byte
			errText    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Question, &e.Intent, &e.Score, &paramsJSON, &e.Outcome, &e.Answer, &errText, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &e.Params); err != nil {
				s.logger.Warn("transcript params unreadable", map[string]interface{}{
					"id":    e.ID,
					"error": err.Error(),
				})
			}
		}
		e.Error = errText.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transcripts: %w", err)
	}
	return entries, nil
}
