package progression

import "github.com/mathtrail/mathtrail/internal/numrange"

// MasteryBonusTokens is awarded once, when an operator first reaches mastery.
const MasteryBonusTokens = 50

// Result is one graded question from an assessment, tagged with the stage
// it was drawn from.
type Result struct {
	Stage   string
	Correct bool
}

// Outcome summarizes what an assessment changed.
type Outcome struct {
	// NewStages are stage names mastered by this assessment, in curriculum
	// order, excluding anything already complete.
	NewStages []string

	// MasteryAchieved is true when the operator is mastered after this
	// assessment (whether or not it was already mastered before).
	MasteryAchieved bool

	// NewlyMastered is true only when this assessment flipped the operator
	// from unmastered to mastered. Gates the one-time token bonus.
	NewlyMastered bool

	// PerfectScore is true when every question was answered correctly.
	PerfectScore bool

	// TokenBonus is MasteryBonusTokens when NewlyMastered, else 0.
	TokenBonus int
}

// NextStage walks the operator's curriculum in order and returns the first
// stage that is neither auto-skipped at the grade nor already complete.
// Returns nil when the curriculum is exhausted for this operator.
func NextStage(op numrange.Operation, grade int, typesComplete []string) *Stage {
	done := toSet(typesComplete)
	for _, st := range curriculum[op] {
		if isSkipped(st, grade) || done[st.Name] {
			continue
		}
		stage := st
		return &stage
	}
	return nil
}

// IsComplete reports whether every non-skipped stage of the operator's
// curriculum is in the completed set.
func IsComplete(op numrange.Operation, grade int, typesComplete []string) bool {
	done := toSet(typesComplete)
	for _, st := range curriculum[op] {
		if isSkipped(st, grade) {
			continue
		}
		if !done[st.Name] {
			return false
		}
	}
	return true
}

// EvaluateAssessment grades a finished assessment against the operator's
// curriculum.
//
// A stage is mastered only when it appears among the correct results and
// never among the incorrect ones: a single miss voids mastery for that
// stage, no matter how many correct answers it also collected.
//
// The operator as a whole is mastered when the curriculum is complete after
// merging the new stages, or when the assessment was a perfect score. The
// perfect-score path can award mastery even when the question set never
// covered every stage; partial coverage without a perfect score cannot.
// Keep the asymmetry: it is the shipped pass criterion (see DESIGN.md).
func EvaluateAssessment(op numrange.Operation, grade int, typesComplete []string, results []Result, alreadyMastered bool) Outcome {
	correct := make(map[string]bool)
	missed := make(map[string]bool)
	allCorrect := len(results) > 0
	for _, r := range results {
		if r.Correct {
			correct[r.Stage] = true
		} else {
			missed[r.Stage] = true
			allCorrect = false
		}
	}

	done := toSet(typesComplete)
	var newStages []string
	for _, st := range curriculum[op] {
		if done[st.Name] {
			continue
		}
		if correct[st.Name] && !missed[st.Name] {
			newStages = append(newStages, st.Name)
		}
	}

	merged := append(append([]string(nil), typesComplete...), newStages...)
	mastered := IsComplete(op, grade, merged) || allCorrect

	out := Outcome{
		NewStages:       newStages,
		MasteryAchieved: mastered || alreadyMastered,
		PerfectScore:    allCorrect,
	}
	if mastered && !alreadyMastered {
		out.NewlyMastered = true
		out.TokenBonus = MasteryBonusTokens
	}
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
