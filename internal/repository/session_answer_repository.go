package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

// SessionAnswerRepository persists autosaved answers so an in-flight session
// survives both a browser reload and a cache flush.
type SessionAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewSessionAnswerRepository creates a new SessionAnswerRepository.
func NewSessionAnswerRepository(pool *pgxpool.Pool) *SessionAnswerRepository {
	return &SessionAnswerRepository{pool: pool}
}

// AnswerRow is one autosaved answer as queued by the session service.
type AnswerRow struct {
	SessionID  string            `json:"session_id"`
	QuestionID string            `json:"question_id"`
	Answer     model.AnswerValue `json:"answer"`
}

// BulkUpsert writes a batch of autosaved answers in one round trip. Later
// answers for the same question overwrite earlier ones.
func (r *SessionAnswerRepository) BulkUpsert(ctx context.Context, rows []AnswerRow) error {
	if len(rows) == 0 {
		return nil
	}

	sessionIDs := make([]string, 0, len(rows))
	questionIDs := make([]string, 0, len(rows))
	answers := make([]string, 0, len(rows))

	for _, row := range rows {
		raw, err := json.Marshal(row.Answer)
		if err != nil {
			return err
		}
		sessionIDs = append(sessionIDs, row.SessionID)
		questionIDs = append(questionIDs, row.QuestionID)
		answers = append(answers, string(raw))
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO session_answers (session_id, question_id, answer, updated_at)
		SELECT u.session_id, u.question_id, u.answer::jsonb, NOW()
		FROM UNNEST($1::uuid[], $2::uuid[], $3::text[]) AS u (session_id, question_id, answer)
		ON CONFLICT (session_id, question_id)
		DO UPDATE SET answer = EXCLUDED.answer, updated_at = NOW()
	`, sessionIDs, questionIDs, answers)
	return err
}

// ListBySession returns the autosaved answers for one session, keyed by
// question ID. Rows whose payload no longer decodes are skipped.
func (r *SessionAnswerRepository) ListBySession(ctx context.Context, sessionID string) (map[string]model.AnswerValue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, answer FROM session_answers WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(map[string]model.AnswerValue)
	for rows.Next() {
		var qid string
		var raw []byte
		if err := rows.Scan(&qid, &raw); err != nil {
			return nil, err
		}
		var v model.AnswerValue
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		answers[qid] = v
	}
	return answers, rows.Err()
}

// DeleteBySession removes a session's autosaved answers once its submission
// is safely persisted.
func (r *SessionAnswerRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM session_answers WHERE session_id = $1`, sessionID)
	return err
}
