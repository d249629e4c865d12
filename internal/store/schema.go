package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Mastery state lives in normalized rows per (user, operator) with atomic
// column updates, not in a JSON blob patched by path. The stage list is
// the only JSON column and it is merged in Go before being written whole.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS mastery_records (
		user_id         TEXT NOT NULL,
		operator        TEXT NOT NULL,
		test_taken      INTEGER NOT NULL DEFAULT 0,
		mastery_level   INTEGER NOT NULL DEFAULT 0,
		types_complete  TEXT NOT NULL DEFAULT '[]',
		current_step    INTEGER NOT NULL DEFAULT 0,
		good_attempts   INTEGER NOT NULL DEFAULT 0,
		bad_attempts    INTEGER NOT NULL DEFAULT 0,
		tokens_earned   INTEGER NOT NULL DEFAULT 0,
		total_answered  INTEGER NOT NULL DEFAULT 0,
		correct_answers INTEGER NOT NULL DEFAULT 0,
		streak_current  INTEGER NOT NULL DEFAULT 0,
		streak_best     INTEGER NOT NULL DEFAULT 0,
		last_played     TIMESTAMP,
		PRIMARY KEY (user_id, operator)
	)`,
	`CREATE TABLE IF NOT EXISTS subject_mastery (
		user_id             TEXT NOT NULL,
		subject             TEXT NOT NULL,
		grade               INTEGER NOT NULL,
		total_attempts      INTEGER NOT NULL DEFAULT 0,
		correct_attempts    INTEGER NOT NULL DEFAULT 0,
		mastery_level       INTEGER NOT NULL DEFAULT 0,
		unlocked            INTEGER NOT NULL DEFAULT 1,
		next_grade_unlocked INTEGER NOT NULL DEFAULT 0,
		downgraded          INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, subject, grade)
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_questions (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		operator  TEXT NOT NULL,
		grade     INTEGER NOT NULL,
		operand1  INTEGER NOT NULL,
		operand2  INTEGER NOT NULL,
		answer    INTEGER NOT NULL,
		fact_type TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_lookup
		ON catalog_questions (operator, grade, operand2)`,
}

func migrate(db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
