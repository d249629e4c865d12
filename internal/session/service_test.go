package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/mathtrail/mathtrail/internal/factgen"
	"github.com/mathtrail/mathtrail/internal/mastery"
	"github.com/mathtrail/mathtrail/internal/numrange"
	"github.com/mathtrail/mathtrail/internal/progression"
	"github.com/mathtrail/mathtrail/internal/qcache"
	"github.com/mathtrail/mathtrail/internal/store"
)

// memRepo is an in-memory mastery.Repo for testing.
type memRepo struct {
	mu           sync.Mutex
	records      map[string]*mastery.Record
	subjects     map[string]*mastery.SubjectMastery
	failSaves    bool
	failSubjects bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		records:  make(map[string]*mastery.Record),
		subjects: make(map[string]*mastery.SubjectMastery),
	}
}

func (m *memRepo) key(userID string, op numrange.Operation) string {
	return userID + "|" + string(op)
}

func (m *memRepo) LoadRecord(_ context.Context, userID string, op numrange.Operation) (*mastery.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[m.key(userID, op)]; ok {
		cp := *rec
		cp.TypesComplete = append([]string(nil), rec.TypesComplete...)
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepo) SaveRecord(_ context.Context, rec *mastery.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.New("save failed")
	}
	cp := *rec
	cp.TypesComplete = append([]string(nil), rec.TypesComplete...)
	m.records[m.key(rec.UserID, rec.Operator)] = &cp
	return nil
}

func (m *memRepo) AddTokens(_ context.Context, userID string, op numrange.Operation, tokens int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[m.key(userID, op)]; ok {
		rec.TokensEarned += tokens
		return nil
	}
	return errors.New("no record")
}

func (m *memRepo) LoadSubject(_ context.Context, userID, subject string, grade int) (*mastery.SubjectMastery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sm, ok := m.subjects[userID+"|"+subject]; ok && sm.Grade == grade {
		cp := *sm
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepo) SaveSubject(_ context.Context, sm *mastery.SubjectMastery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSubjects {
		return errors.New("subject save failed")
	}
	cp := *sm
	m.subjects[sm.UserID+"|"+sm.Subject] = &cp
	return nil
}

// fakeCatalog serves a fixed row, or fails.
type fakeCatalog struct {
	row  *store.CatalogQuestion
	err  error
	hits int
}

func (f *fakeCatalog) Random(_ context.Context, _ numrange.Operation, _ int, _ *numrange.Span) (*store.CatalogQuestion, error) {
	f.hits++
	return f.row, f.err
}

func newTestService(repo *memRepo, catalog Catalog) *Service {
	tracker := mastery.NewTracker(repo)
	gen := factgen.New(rand.NewSource(1))
	cache := qcache.New(100, time.Hour)
	return NewService(tracker, gen, catalog, cache, nil)
}

func TestNextQuestion_SyntheticFallbackWithoutCatalog(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)

	q, err := svc.NextQuestion(context.Background(), "u1", numrange.OpAddition, 1)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if q.Operation != numrange.OpAddition || len(q.Options) != factgen.OptionCount {
		t.Errorf("malformed question: %+v", q)
	}
	// Grade-1 learner starts at the first stage.
	if q.FactType != "0-5" {
		t.Errorf("FactType = %q, want 0-5", q.FactType)
	}
}

func TestNextQuestion_UsesCatalogWhenAvailable(t *testing.T) {
	catalog := &fakeCatalog{row: &store.CatalogQuestion{
		Operator: "addition", Grade: 1, Operand1: 2, Operand2: 3, Answer: 5, FactType: "0-5",
	}}
	svc := newTestService(newMemRepo(), catalog)

	q, err := svc.NextQuestion(context.Background(), "u1", numrange.OpAddition, 1)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if q.Operand1 != 2 || q.Operand2 != 3 || q.Answer != 5 {
		t.Errorf("catalog row not used: %+v", q)
	}
	if catalog.hits != 1 {
		t.Errorf("catalog hits = %d, want 1", catalog.hits)
	}

	// The same fact is now in the seen set; the second request must not
	// serve it again even though the catalog keeps returning it.
	q2, err := svc.NextQuestion(context.Background(), "u1", numrange.OpAddition, 1)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if q2.Signature() == q.Signature() {
		t.Errorf("catalog fact repeated back-to-back: %s", q2.Signature())
	}
}

func TestNextQuestion_CatalogErrorFallsBackToSynthetic(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("catalog down")}
	svc := newTestService(newMemRepo(), catalog)

	q, err := svc.NextQuestion(context.Background(), "u1", numrange.OpDivision, 3)
	if err != nil {
		t.Fatalf("catalog failure must not fail question serving: %v", err)
	}
	if q.Operand2 == 0 || q.Operand1%q.Operand2 != 0 {
		t.Errorf("fallback question malformed: %+v", q)
	}
}

func TestNextQuestion_StageForAutoSkipGrade(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)

	// A grade-5 learner auto-skips addition 0-5 and 6-10.
	q, err := svc.NextQuestion(context.Background(), "u5", numrange.OpAddition, 5)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if q.FactType != "11-20" {
		t.Errorf("FactType = %q, want 11-20", q.FactType)
	}
}

func TestSubmitAssessment_PersistsAndSummarizes(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	results := []progression.Result{
		{Stage: "0-5", Correct: true},
		{Stage: "6-10", Correct: false},
	}
	sum, err := svc.SubmitAssessment(ctx, "u1", numrange.OpAddition, 1, results)
	if err != nil {
		t.Fatalf("SubmitAssessment: %v", err)
	}
	if sum.MasteryAchieved {
		t.Error("partial assessment must not award mastery")
	}
	if len(sum.NewStages) != 1 || sum.NewStages[0] != "0-5" {
		t.Errorf("NewStages = %v, want [0-5]", sum.NewStages)
	}

	rec := repo.records["u1|addition"]
	if rec == nil {
		t.Fatal("record not persisted")
	}
	if rec.GoodAttempts != 1 || rec.BadAttempts != 1 {
		t.Errorf("persisted attempts = %d/%d, want 1/1", rec.GoodAttempts, rec.BadAttempts)
	}
}

func TestSubmitAssessment_PerfectScoreAwardsBonusOnce(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	results := []progression.Result{{Stage: "0-5", Correct: true}}
	sum, err := svc.SubmitAssessment(ctx, "u1", numrange.OpAddition, 1, results)
	if err != nil {
		t.Fatalf("SubmitAssessment: %v", err)
	}
	if !sum.MasteryAchieved || sum.TokensEarned != progression.MasteryBonusTokens {
		t.Errorf("summary = %+v, want mastery with %d bonus", sum, progression.MasteryBonusTokens)
	}

	// Re-running must be idempotent: mastery kept, no second bonus.
	sum2, err := svc.SubmitAssessment(ctx, "u1", numrange.OpAddition, 1, results)
	if err != nil {
		t.Fatalf("SubmitAssessment rerun: %v", err)
	}
	if !sum2.MasteryAchieved || sum2.TokensEarned != 0 {
		t.Errorf("rerun summary = %+v, want retained mastery and 0 tokens", sum2)
	}
	if repo.records["u1|addition"].TokensEarned != progression.MasteryBonusTokens {
		t.Errorf("persisted tokens = %d, want %d",
			repo.records["u1|addition"].TokensEarned, progression.MasteryBonusTokens)
	}
}

func TestSubmitAssessment_SaveFailureReturnsNoSummary(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	// Seed the record first, then make saves fail.
	if _, err := svc.NextQuestion(ctx, "u1", numrange.OpAddition, 1); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo.failSaves = true

	sum, err := svc.SubmitAssessment(ctx, "u1", numrange.OpAddition, 1,
		[]progression.Result{{Stage: "0-5", Correct: true}})
	if err == nil {
		t.Fatal("expected save failure to surface")
	}
	if sum != nil {
		t.Errorf("summary reported despite failed save: %+v", sum)
	}
}

func TestSubmitPractice_TokensAndCounters(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	var results []progression.Result
	for i := 0; i < 17; i++ {
		results = append(results, progression.Result{Stage: "0-5", Correct: true})
	}
	for i := 0; i < 3; i++ {
		results = append(results, progression.Result{Stage: "0-5", Correct: false})
	}

	sum, err := svc.SubmitPractice(ctx, "u1", numrange.OpAddition, 1, results, 60)
	if err != nil {
		t.Fatalf("SubmitPractice: %v", err)
	}
	if sum.TokensEarned != 9 {
		t.Errorf("TokensEarned = %d, want 9 (17 correct, short tier)", sum.TokensEarned)
	}
	if sum.LevelChanged {
		t.Error("20 attempts at 85%% should hold the grade (needs 30)")
	}

	rec := repo.records["u1|addition"]
	if rec.TotalAnswered != 20 || rec.CorrectAnswers != 17 {
		t.Errorf("persisted counters = %d/%d, want 20/17", rec.TotalAnswered, rec.CorrectAnswers)
	}
	if rec.TokensEarned != 9 {
		t.Errorf("persisted tokens = %d, want 9", rec.TokensEarned)
	}

	sub := repo.subjects["u1|"+DefaultSubject]
	if sub == nil || sub.TotalAttempts != 20 || sub.CorrectAttempts != 17 {
		t.Fatalf("subject aggregate = %+v, want 20 attempts / 17 correct", sub)
	}
	if sub.MasteryLevel != 85 {
		t.Errorf("subject mastery = %d, want 85", sub.MasteryLevel)
	}
}

func TestSubmitPractice_GradeAdvance(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	var results []progression.Result
	for i := 0; i < 30; i++ {
		results = append(results, progression.Result{Stage: "0-5", Correct: i < 27})
	}

	sum, err := svc.SubmitPractice(ctx, "u1", numrange.OpAddition, 2, results, 120)
	if err != nil {
		t.Fatalf("SubmitPractice: %v", err)
	}
	if !sum.LevelChanged || sum.NewGrade != 3 {
		t.Errorf("summary = %+v, want advance to grade 3", sum)
	}

	// A second qualifying session reports the already-unlocked grade
	// without flagging another change.
	sum2, err := svc.SubmitPractice(ctx, "u1", numrange.OpAddition, 2, results, 120)
	if err != nil {
		t.Fatalf("SubmitPractice: %v", err)
	}
	if sum2.LevelChanged {
		t.Error("advance reported twice for the same unlock")
	}
	if sum2.NewGrade != 3 {
		t.Errorf("NewGrade = %d, want 3", sum2.NewGrade)
	}
}

func TestSubmitPractice_GradeDowngrade(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	var results []progression.Result
	for i := 0; i < 12; i++ {
		results = append(results, progression.Result{Stage: "0-5", Correct: i < 3})
	}

	sum, err := svc.SubmitPractice(ctx, "u1", numrange.OpSubtraction, 2, results, 300)
	if err != nil {
		t.Fatalf("SubmitPractice: %v", err)
	}
	if !sum.LevelChanged || sum.NewGrade != 1 {
		t.Errorf("summary = %+v, want downgrade to grade 1", sum)
	}
}

func TestSubmitPractice_NoDowngradeBelowKindergarten(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	var results []progression.Result
	for i := 0; i < 12; i++ {
		results = append(results, progression.Result{Stage: "0-5", Correct: false})
	}

	sum, err := svc.SubmitPractice(ctx, "u1", numrange.OpAddition, 0, results, 300)
	if err != nil {
		t.Fatalf("SubmitPractice: %v", err)
	}
	if sum.LevelChanged || sum.NewGrade != 0 {
		t.Errorf("summary = %+v, want grade held at kindergarten", sum)
	}
}

func TestSubmitPractice_SubjectSaveFailureReturnsNoSummary(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()
	repo.failSubjects = true

	sum, err := svc.SubmitPractice(ctx, "u1", numrange.OpAddition, 1,
		[]progression.Result{{Stage: "0-5", Correct: true}}, 30)
	if err == nil {
		t.Fatal("expected subject save failure to surface")
	}
	if sum != nil {
		t.Errorf("summary reported despite failed save: %+v", sum)
	}
}

func TestMicroTokens(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	if _, err := svc.NextQuestion(ctx, "u1", numrange.OpAddition, 1); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tokens, err := svc.MicroTokens(ctx, "u1", numrange.OpAddition, 6)
	if err != nil {
		t.Fatalf("MicroTokens: %v", err)
	}
	if tokens != 2 {
		t.Errorf("tokens = %d, want 2", tokens)
	}
	if repo.records["u1|addition"].TokensEarned != 2 {
		t.Errorf("persisted tokens = %d, want 2", repo.records["u1|addition"].TokensEarned)
	}
}

func TestNextQuestion_ConcurrentSameUserOperator(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				q, err := svc.NextQuestion(ctx, "u1", numrange.OpAddition, 2)
				if err != nil {
					t.Errorf("NextQuestion: %v", err)
					return
				}
				if q.Answer != q.Operand1+q.Operand2 {
					t.Errorf("malformed question under concurrency: %+v", q)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMastery_ReadOnlyForUnknownLearner(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil)

	rec, err := svc.Mastery(context.Background(), "ghost", numrange.OpMultiplication, 4)
	if err != nil {
		t.Fatalf("Mastery: %v", err)
	}
	if rec.Operator != numrange.OpMultiplication || rec.TestTaken {
		t.Errorf("unexpected default record: %+v", rec)
	}
	if len(repo.records) != 0 {
		t.Errorf("read-only lookup persisted a record: %v", repo.records)
	}
}
