package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

// AccessCodeRepository handles one-time entry code data access.
type AccessCodeRepository struct {
	pool *pgxpool.Pool
}

// NewAccessCodeRepository creates a new AccessCodeRepository.
func NewAccessCodeRepository(pool *pgxpool.Pool) *AccessCodeRepository {
	return &AccessCodeRepository{pool: pool}
}

// InsertBatch stores freshly generated codes. Codes colliding with an
// existing one are skipped, and only the stored rows are returned.
func (r *AccessCodeRepository) InsertBatch(ctx context.Context, codes []string) ([]model.AccessCode, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`INSERT INTO access_codes (code)
		 SELECT UNNEST($1::text[])
		 ON CONFLICT (code) DO NOTHING
		 RETURNING id, code, created_at, used, used_at`,
		codes,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AccessCode
	for rows.Next() {
		var ac model.AccessCode
		if err := rows.Scan(&ac.ID, &ac.Code, &ac.CreatedAt, &ac.Used, &ac.UsedAt); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}

// Consume atomically marks a code as used. Returns false when the code does
// not exist or was already consumed.
func (r *AccessCodeRepository) Consume(ctx context.Context, code string) (bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`UPDATE access_codes
		 SET used = TRUE, used_at = NOW()
		 WHERE code = $1 AND used = FALSE
		 RETURNING id`,
		code,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List retrieves codes newest first with pagination. When unusedOnly is set,
// consumed codes are filtered out.
func (r *AccessCodeRepository) List(ctx context.Context, page, perPage int, unusedOnly bool) ([]model.AccessCode, int64, error) {
	offset := (page - 1) * perPage

	filter := ""
	if unusedOnly {
		filter = " WHERE used = FALSE"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM access_codes"+filter).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, code, created_at, used, used_at
		 FROM access_codes`+filter+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var codes []model.AccessCode
	for rows.Next() {
		var ac model.AccessCode
		if err := rows.Scan(&ac.ID, &ac.Code, &ac.CreatedAt, &ac.Used, &ac.UsedAt); err != nil {
			return nil, 0, err
		}
		codes = append(codes, ac)
	}
	return codes, total, rows.Err()
}
