package mastery

// Grade-progression thresholds. Advancement demands sustained accuracy
// over a meaningful sample; downgrading trips earlier so a struggling
// learner is not left stuck.
const (
	AdvanceMasteryPct    = 80
	AdvanceMinAttempts   = 30
	DowngradeBelowPct    = 50
	DowngradeMinAttempts = 10
)

// GradeDecision says what should happen to a learner's grade for a subject.
type GradeDecision int

const (
	GradeHold GradeDecision = iota
	GradeAdvance
	GradeDowngrade
)

// String returns the decision label used in logs and summaries.
func (d GradeDecision) String() string {
	switch d {
	case GradeAdvance:
		return "advance"
	case GradeDowngrade:
		return "downgrade"
	default:
		return "hold"
	}
}

// DecideGrade is a pure function of the subject aggregate against the
// fixed thresholds: advance at ≥80% over ≥30 attempts, downgrade below
// 50% once ≥10 attempts exist, otherwise hold.
func DecideGrade(sm SubjectMastery) GradeDecision {
	if sm.TotalAttempts >= AdvanceMinAttempts && sm.MasteryLevel >= AdvanceMasteryPct {
		return GradeAdvance
	}
	if sm.TotalAttempts >= DowngradeMinAttempts && sm.MasteryLevel < DowngradeBelowPct {
		return GradeDowngrade
	}
	return GradeHold
}
