// Package session exposes the caller-facing operations the route layer
// invokes: fetch the next question, submit an assessment, submit a
// practice session.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mathtrail/mathtrail/internal/factgen"
	"github.com/mathtrail/mathtrail/internal/mastery"
	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
	"github.com/mathtrail/mathtrail/internal/qcache"
	"github.com/mathtrail/mathtrail/internal/rewards"
	"github.com/mathtrail/mathtrail/internal/store"
)

// DefaultSubject is the subject bucket all arithmetic practice feeds for
// grade gating.
const DefaultSubject = "math"

// Catalog supplies pre-authored questions. Optional: a nil Catalog (or an
// empty one) leaves the synthetic generator as the only source.
type Catalog interface {
	Random(ctx context.Context, op numrange.Operation, grade int, band *numrange.Span) (*store.CatalogQuestion, error)
}

// Service orchestrates generation, gating, mastery tracking and rewards.
type Service struct {
	tracker *mastery.Tracker
	gen     *factgen.Generator
	catalog Catalog
	cache   *qcache.Cache
	log     *zap.Logger
}

// NewService wires the session service. catalog may be nil.
func NewService(tracker *mastery.Tracker, gen *factgen.Generator, catalog Catalog, cache *qcache.Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		tracker: tracker,
		gen:     gen,
		catalog: catalog,
		cache:   cache,
		log:     log,
	}
}

// NextQuestion returns the next question for (user, operator) at the
// learner's current progression stage. The catalog is consulted first;
// synthetic generation is the always-available fallback.
func (s *Service) NextQuestion(ctx context.Context, userID string, op numrange.Operation, grade int) (factgen.Question, error) {
	rec, err := s.tracker.Record(ctx, userID, op, grade)
	if err != nil {
		return factgen.Question{}, err
	}

	var band *numrange.Span
	factType := ""
	if stage := progression.NextStage(op, grade, rec.TypesComplete); stage != nil {
		band = &stage.Band
		factType = stage.Name
	}

	seen := s.seenSet(userID, op)

	if s.catalog != nil {
		row, err := s.catalog.Random(ctx, op, grade, band)
		if err != nil {
			// The catalog is an optimization; a lookup failure must not
			// take question serving down with it.
			s.log.Warn("catalog lookup failed, using synthetic generation",
				zap.String("user", userID), zap.String("operator", string(op)), zap.Error(err))
		} else if row != nil {
			sig := factgen.Signature(op, row.Operand1, row.Operand2)
			if !seen.Contains(sig) {
				q := s.gen.Compose(op, grade, row.FactType, row.Operand1, row.Operand2, row.Answer)
				seen.Add(sig)
				return q, nil
			}
		}
	}

	q := s.gen.Generate(factgen.GenerateInput{
		Operation: op,
		Grade:     grade,
		Band:      band,
		FactType:  factType,
		Seen:      seen,
	})
	return q, nil
}

// SubmitAssessment grades a finished assessment, folds it into the mastery
// record and persists. The summary is only reported once the save
// confirms, so a failed save can never over-credit the learner.
func (s *Service) SubmitAssessment(ctx context.Context, userID string, op numrange.Operation, grade int, results []progression.Result) (*AssessmentSummary, error) {
	unlock := s.tracker.Lock(userID, op)
	defer unlock()

	rec, err := s.tracker.Record(ctx, userID, op, grade)
	if err != nil {
		return nil, err
	}

	out := progression.EvaluateAssessment(op, grade, rec.TypesComplete, results, rec.MasteryLevel)
	rec.ApplyAssessment(out, results)

	if err := s.tracker.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("assessment not recorded: %w", err)
	}

	if out.NewlyMastered {
		s.log.Info("operator mastered",
			zap.String("user", userID), zap.String("operator", string(op)),
			zap.Bool("perfectScore", out.PerfectScore))
	}

	return &AssessmentSummary{
		TokensEarned:    out.TokenBonus,
		MasteryAchieved: rec.MasteryLevel,
		NewStages:       out.NewStages,
		PerfectScore:    out.PerfectScore,
	}, nil
}

// SubmitPractice folds a practice session into the mastery record, awards
// tokens by the session-length tier, updates subject mastery and decides
// grade movement. Nothing is reported until both saves confirm.
func (s *Service) SubmitPractice(ctx context.Context, userID string, op numrange.Operation, grade int, results []progression.Result, durationSeconds int) (*PracticeSummary, error) {
	unlock := s.tracker.Lock(userID, op)
	defer unlock()

	rec, err := s.tracker.Record(ctx, userID, op, grade)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, r := range results {
		if r.Correct {
			correct++
		}
	}
	tokens := rewards.CalculateTokens(correct, len(results), durationSeconds)
	rec.ApplyPractice(results, tokens)

	subject, err := s.tracker.Subject(ctx, userID, DefaultSubject, grade)
	if err != nil {
		return nil, err
	}
	subject.RecordAttempts(correct, len(results))

	levelChanged := false
	newGrade := grade
	switch mastery.DecideGrade(*subject) {
	case mastery.GradeAdvance:
		if !subject.NextGradeUnlocked {
			levelChanged = true
		}
		subject.NextGradeUnlocked = true
		newGrade = grade + 1
	case mastery.GradeDowngrade:
		if grade > 0 {
			if !subject.Downgraded {
				levelChanged = true
			}
			subject.Downgraded = true
			newGrade = grade - 1
		}
	}

	if err := s.tracker.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("practice session not recorded: %w", err)
	}
	if err := s.tracker.SaveSubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("practice session not recorded: %w", err)
	}

	// The session is over; the next one starts with a fresh seen set.
	s.cache.Delete(seenKey(userID, op))

	if levelChanged {
		s.log.Info("grade level changed",
			zap.String("user", userID), zap.Int("from", grade), zap.Int("to", newGrade),
			zap.Int("masteryPct", subject.MasteryLevel))
	}

	return &PracticeSummary{
		TokensEarned:    tokens,
		MasteryAchieved: rec.MasteryLevel,
		LevelChanged:    levelChanged,
		NewGrade:        newGrade,
		StreakBest:      rec.StreakBest,
	}, nil
}

// MicroTokens applies in-session token drips (1 per 3 correct) with an
// atomic increment, see mastery.Tracker.RecordMicroTokens.
func (s *Service) MicroTokens(ctx context.Context, userID string, op numrange.Operation, correctCount int) (int, error) {
	return s.tracker.RecordMicroTokens(ctx, userID, op, correctCount)
}

// Mastery exposes the learner's record for read-only display. It never
// persists anything; an unknown learner gets the seeded default in memory.
func (s *Service) Mastery(ctx context.Context, userID string, op numrange.Operation, grade int) (*mastery.Record, error) {
	return s.tracker.Peek(ctx, userID, op, grade)
}

// ResetSeen clears the duplicate-avoidance state for one (user, operator),
// e.g. on explicit session reset.
func (s *Service) ResetSeen(userID string, op numrange.Operation) {
	s.cache.Delete(seenKey(userID, op))
}

func seenKey(userID string, op numrange.Operation) string {
	return "seen|" + userID + "|" + string(op)
}

// seenSet fetches or creates the per-(user, operator) SeenSet.
func (s *Service) seenSet(userID string, op numrange.Operation) *factgen.SeenSet {
	key := seenKey(userID, op)
	if v, ok := s.cache.Get(key); ok {
		if seen, ok := v.(*factgen.SeenSet); ok {
			return seen
		}
	}
	seen := factgen.NewSeenSet(factgen.DefaultSeenCap)
	s.cache.Set(key, seen)
	return seen
}
