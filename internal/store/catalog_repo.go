package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mathtrail/mathtrail/internal/numrange"
)

// CatalogQuestion is a pre-authored fact from the question catalog. The
// catalog is an optimization over synthetic generation, never a
// correctness dependency: when a lookup yields nothing the generator's
// synthetic fallback takes over.
type CatalogQuestion struct {
	ID       int64  `db:"id"`
	Operator string `db:"operator"`
	Grade    int    `db:"grade"`
	Operand1 int    `db:"operand1"`
	Operand2 int    `db:"operand2"`
	Answer   int    `db:"answer"`
	FactType string `db:"fact_type"`
}

// CatalogRepo queries and maintains the pre-authored question catalog.
type CatalogRepo struct {
	db *sqlx.DB
}

// Random returns a random catalog fact for (op, grade) whose second
// operand lies inside band, or nil when the catalog has nothing matching.
func (r *CatalogRepo) Random(ctx context.Context, op numrange.Operation, grade int, band *numrange.Span) (*CatalogQuestion, error) {
	query := `SELECT * FROM catalog_questions WHERE operator = ? AND grade = ?`
	args := []any{string(op), grade}
	if band != nil {
		query += ` AND operand2 BETWEEN ? AND ?`
		args = append(args, band.Lo, band.Hi)
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	var q CatalogQuestion
	err := r.db.GetContext(ctx, &q, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	return &q, nil
}

// Insert adds one fact to the catalog.
func (r *CatalogRepo) Insert(ctx context.Context, q CatalogQuestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_questions (operator, grade, operand1, operand2, answer, fact_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		q.Operator, q.Grade, q.Operand1, q.Operand2, q.Answer, q.FactType)
	if err != nil {
		return fmt.Errorf("insert catalog question: %w", err)
	}
	return nil
}

// Count returns the catalog size, for the import command's summary.
func (r *CatalogRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM catalog_questions`); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}
