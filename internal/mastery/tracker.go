package mastery

import (
	"context"
	"fmt"
	"sync"

	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/rewards"
)

// Repo is the persistence collaborator for mastery state. The tracker
// treats these as atomic-enough read/write calls; durability belongs to
// the implementation.
type Repo interface {
	// LoadRecord returns the record for (userID, op), or nil if the
	// learner has never touched the operator.
	LoadRecord(ctx context.Context, userID string, op numrange.Operation) (*Record, error)

	// SaveRecord upserts the full record.
	SaveRecord(ctx context.Context, rec *Record) error

	// AddTokens atomically increments the stored token counter and
	// returns nothing else; concurrent callers must not lose increments.
	AddTokens(ctx context.Context, userID string, op numrange.Operation, tokens int) error

	// LoadSubject returns the aggregate for (userID, subject, grade), or
	// nil if none exists yet.
	LoadSubject(ctx context.Context, userID, subject string, grade int) (*SubjectMastery, error)

	// SaveSubject upserts the subject aggregate.
	SaveSubject(ctx context.Context, sm *SubjectMastery) error
}

// Tracker mediates all mastery-record access. Multi-device access to the
// same learner is serialized only within this process: the per-(user,
// operator) mutex closes the read-modify-write race for concurrent
// requests handled here, not across replicas.
type Tracker struct {
	repo Repo

	mu sync.Mutex
	// locks holds one entry per (user, operator) ever seen and is never
	// pruned. Entries are a key string plus a mutex, so growth is bounded
	// by the learner population times four operators; revisit with a
	// striped lock if that stops being small.
	locks map[string]*sync.Mutex
}

// NewTracker creates a tracker over a persistence collaborator.
func NewTracker(repo Repo) *Tracker {
	return &Tracker{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the per-(user, operator) mutex and returns its release
// func. Callers hold it across their read-modify-write span.
func (t *Tracker) Lock(userID string, op numrange.Operation) func() {
	t.mu.Lock()
	key := userID + "|" + string(op)
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Record loads the learner's record for an operator, creating and seeding
// it on first access.
func (t *Tracker) Record(ctx context.Context, userID string, op numrange.Operation, grade int) (*Record, error) {
	rec, err := t.repo.LoadRecord(ctx, userID, op)
	if err != nil {
		return nil, fmt.Errorf("load mastery record: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	rec = NewRecord(userID, op, grade)
	if err := t.repo.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("seed mastery record: %w", err)
	}
	return rec, nil
}

// Peek loads the learner's record without creating it. Absent learners
// get an unsaved seeded default, so read-only callers never write.
func (t *Tracker) Peek(ctx context.Context, userID string, op numrange.Operation, grade int) (*Record, error) {
	rec, err := t.repo.LoadRecord(ctx, userID, op)
	if err != nil {
		return nil, fmt.Errorf("load mastery record: %w", err)
	}
	if rec != nil {
		return rec, nil
	}
	return NewRecord(userID, op, grade), nil
}

// Save persists a mutated record.
func (t *Tracker) Save(ctx context.Context, rec *Record) error {
	if err := t.repo.SaveRecord(ctx, rec); err != nil {
		return fmt.Errorf("save mastery record: %w", err)
	}
	return nil
}

// RecordMicroTokens converts a batch of in-session correct answers into
// incremental tokens (1 per 3 correct) and applies them with an atomic
// store-side increment, so concurrent sessions cannot lose awards. Returns
// the tokens granted by this call.
func (t *Tracker) RecordMicroTokens(ctx context.Context, userID string, op numrange.Operation, correctCount int) (int, error) {
	tokens := rewards.MicroTokens(correctCount)
	if tokens == 0 {
		return 0, nil
	}
	if err := t.repo.AddTokens(ctx, userID, op, tokens); err != nil {
		return 0, fmt.Errorf("award micro tokens: %w", err)
	}
	return tokens, nil
}

// Subject loads the subject aggregate, creating an unlocked default for
// the learner's current grade on first access.
func (t *Tracker) Subject(ctx context.Context, userID, subject string, grade int) (*SubjectMastery, error) {
	sm, err := t.repo.LoadSubject(ctx, userID, subject, grade)
	if err != nil {
		return nil, fmt.Errorf("load subject mastery: %w", err)
	}
	if sm != nil {
		return sm, nil
	}
	return &SubjectMastery{
		UserID:   userID,
		Subject:  subject,
		Grade:    grade,
		Unlocked: true,
	}, nil
}

// SaveSubject persists a mutated subject aggregate.
func (t *Tracker) SaveSubject(ctx context.Context, sm *SubjectMastery) error {
	if err := t.repo.SaveSubject(ctx, sm); err != nil {
		return fmt.Errorf("save subject mastery: %w", err)
	}
	return nil
}
