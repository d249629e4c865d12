package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mathtrail/mathtrail/internal/mastery"
	"github.com/mathtrail/mathtrail/internal/numrange"
)

// MasteryRepo implements mastery.Repo over SQLite.
type MasteryRepo struct {
	db *sqlx.DB
}

// masteryRow mirrors the mastery_records table.
type masteryRow struct {
	UserID         string       `db:"user_id"`
	Operator       string       `db:"operator"`
	TestTaken      bool         `db:"test_taken"`
	MasteryLevel   bool         `db:"mastery_level"`
	TypesComplete  string       `db:"types_complete"`
	CurrentStep    int          `db:"current_step"`
	GoodAttempts   int          `db:"good_attempts"`
	BadAttempts    int          `db:"bad_attempts"`
	TokensEarned   int          `db:"tokens_earned"`
	TotalAnswered  int          `db:"total_answered"`
	CorrectAnswers int          `db:"correct_answers"`
	StreakCurrent  int          `db:"streak_current"`
	StreakBest     int          `db:"streak_best"`
	LastPlayed     sql.NullTime `db:"last_played"`
}

func (r *MasteryRepo) LoadRecord(ctx context.Context, userID string, op numrange.Operation) (*mastery.Record, error) {
	var row masteryRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM mastery_records WHERE user_id = ? AND operator = ?`,
		userID, string(op))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query mastery record: %w", err)
	}
	return rowToRecord(row)
}

func (r *MasteryRepo) SaveRecord(ctx context.Context, rec *mastery.Record) error {
	types, err := json.Marshal(rec.TypesComplete)
	if err != nil {
		return fmt.Errorf("marshal stage list: %w", err)
	}

	var lastPlayed any
	if !rec.LastPlayed.IsZero() {
		lastPlayed = rec.LastPlayed.UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mastery_records (
			user_id, operator, test_taken, mastery_level, types_complete,
			current_step, good_attempts, bad_attempts, tokens_earned,
			total_answered, correct_answers, streak_current, streak_best,
			last_played
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, operator) DO UPDATE SET
			test_taken      = excluded.test_taken,
			mastery_level   = excluded.mastery_level,
			types_complete  = excluded.types_complete,
			current_step    = excluded.current_step,
			good_attempts   = excluded.good_attempts,
			bad_attempts    = excluded.bad_attempts,
			tokens_earned   = excluded.tokens_earned,
			total_answered  = excluded.total_answered,
			correct_answers = excluded.correct_answers,
			streak_current  = excluded.streak_current,
			streak_best     = excluded.streak_best,
			last_played     = excluded.last_played`,
		rec.UserID, string(rec.Operator), rec.TestTaken, rec.MasteryLevel,
		string(types), rec.CurrentStep, rec.GoodAttempts, rec.BadAttempts,
		rec.TokensEarned, rec.TotalAnswered, rec.CorrectAnswers,
		rec.StreakCurrent, rec.StreakBest, lastPlayed)
	if err != nil {
		return fmt.Errorf("upsert mastery record: %w", err)
	}
	return nil
}

// AddTokens is a single-statement increment, atomic at the database level.
func (r *MasteryRepo) AddTokens(ctx context.Context, userID string, op numrange.Operation, tokens int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mastery_records SET tokens_earned = tokens_earned + ?
		 WHERE user_id = ? AND operator = ?`,
		tokens, userID, string(op))
	if err != nil {
		return fmt.Errorf("increment tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment tokens: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no mastery record for user %s operator %s", userID, op)
	}
	return nil
}

type subjectRow struct {
	UserID            string `db:"user_id"`
	Subject           string `db:"subject"`
	Grade             int    `db:"grade"`
	TotalAttempts     int    `db:"total_attempts"`
	CorrectAttempts   int    `db:"correct_attempts"`
	MasteryLevel      int    `db:"mastery_level"`
	Unlocked          bool   `db:"unlocked"`
	NextGradeUnlocked bool   `db:"next_grade_unlocked"`
	Downgraded        bool   `db:"downgraded"`
}

func (r *MasteryRepo) LoadSubject(ctx context.Context, userID, subject string, grade int) (*mastery.SubjectMastery, error) {
	var row subjectRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM subject_mastery WHERE user_id = ? AND subject = ? AND grade = ?`,
		userID, subject, grade)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subject mastery: %w", err)
	}
	return &mastery.SubjectMastery{
		UserID:            row.UserID,
		Subject:           row.Subject,
		Grade:             row.Grade,
		TotalAttempts:     row.TotalAttempts,
		CorrectAttempts:   row.CorrectAttempts,
		MasteryLevel:      row.MasteryLevel,
		Unlocked:          row.Unlocked,
		NextGradeUnlocked: row.NextGradeUnlocked,
		Downgraded:        row.Downgraded,
	}, nil
}

func (r *MasteryRepo) SaveSubject(ctx context.Context, sm *mastery.SubjectMastery) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subject_mastery (
			user_id, subject, grade, total_attempts, correct_attempts,
			mastery_level, unlocked, next_grade_unlocked, downgraded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, subject, grade) DO UPDATE SET
			total_attempts      = excluded.total_attempts,
			correct_attempts    = excluded.correct_attempts,
			mastery_level       = excluded.mastery_level,
			unlocked            = excluded.unlocked,
			next_grade_unlocked = excluded.next_grade_unlocked,
			downgraded          = excluded.downgraded`,
		sm.UserID, sm.Subject, sm.Grade, sm.TotalAttempts, sm.CorrectAttempts,
		sm.MasteryLevel, sm.Unlocked, sm.NextGradeUnlocked, sm.Downgraded)
	if err != nil {
		return fmt.Errorf("upsert subject mastery: %w", err)
	}
	return nil
}

// DeleteUser removes all mastery state for one learner. Used by the
// reset command; the question catalog is left untouched.
func (r *MasteryRepo) DeleteUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM mastery_records WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete mastery records: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM subject_mastery WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete subject mastery: %w", err)
	}
	return nil
}

func rowToRecord(row masteryRow) (*mastery.Record, error) {
	var types []string
	if err := json.Unmarshal([]byte(row.TypesComplete), &types); err != nil {
		return nil, fmt.Errorf("unmarshal stage list: %w", err)
	}

	var lastPlayed time.Time
	if row.LastPlayed.Valid {
		lastPlayed = row.LastPlayed.Time
	}

	return &mastery.Record{
		UserID:         row.UserID,
		Operator:       numrange.Operation(row.Operator),
		TestTaken:      row.TestTaken,
		MasteryLevel:   row.MasteryLevel,
		TypesComplete:  types,
		CurrentStep:    row.CurrentStep,
		GoodAttempts:   row.GoodAttempts,
		BadAttempts:    row.BadAttempts,
		TokensEarned:   row.TokensEarned,
		TotalAnswered:  row.TotalAnswered,
		CorrectAnswers: row.CorrectAnswers,
		StreakCurrent:  row.StreakCurrent,
		StreakBest:     row.StreakBest,
		LastPlayed:     lastPlayed,
	}, nil
}
