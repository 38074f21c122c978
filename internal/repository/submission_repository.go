package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

// SubmissionRepository handles finished-session record data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, ts, name, email, school, top3, riasec, radar_data,
	 area_percents, interest_percents, aptitude, duration_sec, remaining_sec, incomplete`

// Create inserts a single submission. Used as the fallback path when a bulk
// insert fails.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	top3, riasec, radar, areas, interests, aptitude, err := marshalDerived(s)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO submissions (`+submissionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.TS, s.Name, s.Email, s.School, top3, riasec, radar,
		areas, interests, aptitude, s.DurationSec, s.RemainingSec, s.Incomplete,
	)
	return err
}

// BulkInsert persists a batch of submissions in one round trip using UNNEST.
func (r *SubmissionRepository) BulkInsert(ctx context.Context, batch []*model.Submission) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	tss := make([]time.Time, 0, n)
	names := make([]string, 0, n)
	emails := make([]string, 0, n)
	schools := make([]string, 0, n)
	top3s := make([]string, 0, n)
	riasecs := make([]string, 0, n)
	radars := make([]string, 0, n)
	areas := make([]string, 0, n)
	interests := make([]string, 0, n)
	aptitudes := make([]string, 0, n)
	durations := make([]int, 0, n)
	remainings := make([]int, 0, n)
	incompletes := make([]bool, 0, n)

	for _, s := range batch {
		top3, riasec, radar, area, interest, aptitude, err := marshalDerived(s)
		if err != nil {
			return err
		}
		ids = append(ids, s.ID)
		tss = append(tss, s.TS)
		names = append(names, s.Name)
		emails = append(emails, s.Email)
		schools = append(schools, s.School)
		top3s = append(top3s, string(top3))
		riasecs = append(riasecs, string(riasec))
		radars = append(radars, string(radar))
		areas = append(areas, string(area))
		interests = append(interests, string(interest))
		aptitudes = append(aptitudes, string(aptitude))
		durations = append(durations, s.DurationSec)
		remainings = append(remainings, s.RemainingSec)
		incompletes = append(incompletes, s.Incomplete)
	}

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		SELECT u.id, u.ts, u.name, u.email, u.school,
		       u.top3::jsonb, u.riasec::jsonb, u.radar_data::jsonb,
		       u.area_percents::jsonb, u.interest_percents::jsonb, u.aptitude::jsonb,
		       u.duration_sec, u.remaining_sec, u.incomplete
		FROM UNNEST(
			$1::uuid[], $2::timestamptz[], $3::text[], $4::text[], $5::text[],
			$6::text[], $7::text[], $8::text[], $9::text[], $10::text[], $11::text[],
			$12::int[], $13::int[], $14::bool[]
		) AS u (id, ts, name, email, school, top3, riasec, radar_data,
		        area_percents, interest_percents, aptitude,
		        duration_sec, remaining_sec, incomplete)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, tss, names, emails, schools,
		top3s, riasecs, radars, areas, interests, aptitudes,
		durations, remainings, incompletes,
	)
	return err
}

// GetByID retrieves one submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

// List retrieves submissions ordered newest first, with optional school
// filter and pagination.
func (r *SubmissionRepository) List(ctx context.Context, page, perPage int, school *string) ([]model.Submission, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := ` FROM submissions WHERE 1=1`
	args := []any{}

	if school != nil && *school != "" {
		args = append(args, *school)
		baseQuery += fmt.Sprintf(" AND school = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + submissionColumns + baseQuery + `
		ORDER BY ts DESC
		LIMIT $` + fmt.Sprintf("%d", len(args)+1) + ` OFFSET $` + fmt.Sprintf("%d", len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *s)
	}
	return subs, total, rows.Err()
}

// CountStats returns the staff dashboard aggregates in one round trip.
func (r *SubmissionRepository) CountStats(ctx context.Context) (total, today, incomplete int64, avgDurationSec float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE ts >= date_trunc('day', NOW())),
		        COUNT(*) FILTER (WHERE incomplete),
		        COALESCE(AVG(duration_sec), 0)
		 FROM submissions`,
	).Scan(&total, &today, &incomplete, &avgDurationSec)
	return
}

// TopCategoryCounts returns how often each category led the top3 ranking.
func (r *SubmissionRepository) TopCategoryCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT top3->>0 AS leader, COUNT(*)
		 FROM submissions
		 WHERE jsonb_array_length(top3) > 0
		 GROUP BY leader`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var leader string
		var count int
		if err := rows.Scan(&leader, &count); err != nil {
			return nil, err
		}
		counts[leader] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	s := &model.Submission{}
	var top3, riasec, radar, areas, interests, aptitude []byte

	if err := row.Scan(
		&s.ID, &s.TS, &s.Name, &s.Email, &s.School,
		&top3, &riasec, &radar, &areas, &interests, &aptitude,
		&s.DurationSec, &s.RemainingSec, &s.Incomplete,
	); err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{top3, &s.Top3},
		{riasec, &s.RIASEC},
		{radar, &s.RadarData},
		{areas, &s.AreaPercents},
		{interests, &s.InterestPercents},
		{aptitude, &s.Aptitude},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("decode submission field: %w", err)
		}
	}
	return s, nil
}

func marshalDerived(s *model.Submission) (top3, riasec, radar, areas, interests, aptitude []byte, err error) {
	if top3, err = json.Marshal(s.Top3); err != nil {
		return
	}
	if riasec, err = json.Marshal(s.RIASEC); err != nil {
		return
	}
	if radar, err = json.Marshal(s.RadarData); err != nil {
		return
	}
	if areas, err = json.Marshal(s.AreaPercents); err != nil {
		return
	}
	if interests, err = json.Marshal(s.InterestPercents); err != nil {
		return
	}
	aptitude, err = json.Marshal(s.Aptitude)
	return
}
