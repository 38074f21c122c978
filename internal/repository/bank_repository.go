package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

// BankRepository handles question bank data access.
type BankRepository struct {
	pool *pgxpool.Pool
}

// NewBankRepository creates a new BankRepository.
func NewBankRepository(pool *pgxpool.Pool) *BankRepository {
	return &BankRepository{pool: pool}
}

// ListSections returns all sections in display order.
func (r *BankRepository) ListSections(ctx context.Context) ([]model.Section, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, title, kind, order_num
		 FROM sections
		 ORDER BY order_num ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.Code, &s.Title, &s.Kind, &s.OrderNum); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// ListQuestions returns every question, ordered by section order then
// question order. This ordering defines the global question sequence.
func (r *BankRepository) ListQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.section_id, q.text, q.kind,
		        COALESCE(q.category, ''), COALESCE(q.area, ''), COALESCE(q.domain, ''),
		        q.options, COALESCE(q.correct_index, -1), q.order_num
		 FROM questions q
		 JOIN sections s ON s.id = q.section_id
		 ORDER BY s.order_num ASC, q.order_num ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.SectionID, &q.Text, &q.Kind,
			&q.Category, &q.Area, &q.Domain,
			&q.Options, &q.CorrectIndex, &q.OrderNum,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceBank swaps the entire bank atomically: all sections and questions
// are deleted and the new set inserted in one transaction.
func (r *BankRepository) ReplaceBank(ctx context.Context, sections []model.Section, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bank replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sections`); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}

	for _, s := range sections {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sections (id, code, title, kind, order_num)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.ID, s.Code, s.Title, s.Kind, s.OrderNum,
		); err != nil {
			return fmt.Errorf("insert section %s: %w", s.Code, err)
		}
	}

	for _, q := range questions {
		var correct *int
		if q.Kind == model.SectionKindChoice {
			c := q.CorrectIndex
			correct = &c
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions
			 (id, section_id, text, kind, category, area, domain, options, correct_index, order_num)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)`,
			q.ID, q.SectionID, q.Text, q.Kind,
			q.Category, q.Area, q.Domain, q.Options, correct, q.OrderNum,
		); err != nil {
			return fmt.Errorf("insert question %d of section %s: %w", q.OrderNum, q.SectionID, err)
		}
	}

	return tx.Commit(ctx)
}
