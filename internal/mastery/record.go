// Package mastery tracks per-learner progress for each arithmetic operator
// and per-subject grade gating.
package mastery

import (
	"math"
	"slices"
	"time"

	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
)

// Record is the persistent per-(user, operator) aggregate. Created lazily
// on first interaction; counters are monotonic and TypesComplete only ever
// grows.
type Record struct {
	UserID   string
	Operator numrange.Operation

	TestTaken     bool
	MasteryLevel  bool
	TypesComplete []string
	CurrentStep   int

	GoodAttempts   int
	BadAttempts    int
	TokensEarned   int
	TotalAnswered  int
	CorrectAnswers int

	StreakCurrent int
	StreakBest    int

	LastPlayed time.Time
}

// NewRecord creates a record for a learner's first interaction with an
// operator. The completed set is seeded with the grade's auto-skip stages.
func NewRecord(userID string, op numrange.Operation, grade int) *Record {
	return &Record{
		UserID:        userID,
		Operator:      op,
		TypesComplete: progression.AutoSkip(op, grade),
	}
}

// AddCompletedStages merges newly mastered stages into TypesComplete.
// Append-only and deduplicated; existing entries are never removed.
func (r *Record) AddCompletedStages(stages []string) {
	for _, s := range stages {
		if !slices.Contains(r.TypesComplete, s) {
			r.TypesComplete = append(r.TypesComplete, s)
		}
	}
}

// ApplyAssessment folds an assessment outcome into the record. MasteryLevel
// is a one-way latch: once true it never drops back.
func (r *Record) ApplyAssessment(out progression.Outcome, results []progression.Result) {
	r.TestTaken = true
	r.AddCompletedStages(out.NewStages)
	if out.MasteryAchieved {
		r.MasteryLevel = true
	}
	r.TokensEarned += out.TokenBonus
	r.CurrentStep = len(r.TypesComplete)

	for _, res := range results {
		r.TotalAnswered++
		if res.Correct {
			r.GoodAttempts++
			r.CorrectAnswers++
		} else {
			r.BadAttempts++
		}
	}
	r.LastPlayed = time.Now()
}

// ApplyPractice folds a practice session's per-question results and token
// award into the record, updating streaks in answer order.
func (r *Record) ApplyPractice(results []progression.Result, tokens int) {
	for _, res := range results {
		r.TotalAnswered++
		if res.Correct {
			r.GoodAttempts++
			r.CorrectAnswers++
			r.StreakCurrent++
			if r.StreakCurrent > r.StreakBest {
				r.StreakBest = r.StreakCurrent
			}
		} else {
			r.BadAttempts++
			r.StreakCurrent = 0
		}
	}
	r.TokensEarned += tokens
	r.LastPlayed = time.Now()
}

// SubjectMastery is the per-(user, subject, grade) aggregate used for
// grade-progression gating. Distinct from the per-operator Record.
type SubjectMastery struct {
	UserID  string
	Subject string
	Grade   int

	TotalAttempts   int
	CorrectAttempts int
	MasteryLevel    int // 0-100, always round(100*correct/total)

	Unlocked          bool
	NextGradeUnlocked bool
	Downgraded        bool
}

// RecordAttempts adds a batch of graded attempts and recomputes the
// mastery percentage.
func (sm *SubjectMastery) RecordAttempts(correct, total int) {
	sm.TotalAttempts += total
	sm.CorrectAttempts += correct
	sm.recalculate()
}

func (sm *SubjectMastery) recalculate() {
	if sm.TotalAttempts == 0 {
		sm.MasteryLevel = 0
		return
	}
	ratio := float64(sm.CorrectAttempts) / float64(sm.TotalAttempts)
	sm.MasteryLevel = int(math.Round(ratio * 100))
}
