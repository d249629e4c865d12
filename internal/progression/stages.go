package progression

import "github.com/mathtrail/mathtrail/internal/numrange"

// Stage is one named step in an operator's fact-type curriculum.
// Stages are practiced strictly in the order they appear in the table.
type Stage struct {
	// Name is the stable identifier stored in mastery records, e.g. "0-5".
	Name string

	// Band is the operand range the stage drills. For division it
	// constrains the divisor; for the other operations it constrains the
	// second operand (the "fact family" operand).
	Band numrange.Span

	// SkipAtGrade marks the stage auto-complete for learners at or above
	// this grade. Zero means the stage is never skipped.
	SkipAtGrade int
}

// curriculum lists each operator's stages easiest-first. The table is
// immutable; Stages returns copies.
var curriculum = map[numrange.Operation][]Stage{
	numrange.OpAddition: {
		{Name: "0-5", Band: numrange.Span{Lo: 0, Hi: 5}, SkipAtGrade: 3},
		{Name: "6-10", Band: numrange.Span{Lo: 6, Hi: 10}, SkipAtGrade: 5},
		{Name: "11-20", Band: numrange.Span{Lo: 11, Hi: 20}},
	},
	numrange.OpSubtraction: {
		{Name: "0-5", Band: numrange.Span{Lo: 0, Hi: 5}, SkipAtGrade: 3},
		{Name: "6-10", Band: numrange.Span{Lo: 6, Hi: 10}, SkipAtGrade: 5},
		{Name: "11-20", Band: numrange.Span{Lo: 11, Hi: 20}},
	},
	numrange.OpMultiplication: {
		{Name: "0-2", Band: numrange.Span{Lo: 0, Hi: 2}, SkipAtGrade: 4},
		{Name: "3-5", Band: numrange.Span{Lo: 3, Hi: 5}, SkipAtGrade: 6},
		{Name: "6-9", Band: numrange.Span{Lo: 6, Hi: 9}},
		{Name: "10-12", Band: numrange.Span{Lo: 10, Hi: 12}},
	},
	numrange.OpDivision: {
		{Name: "1-5", Band: numrange.Span{Lo: 1, Hi: 5}, SkipAtGrade: 5},
		{Name: "6-9", Band: numrange.Span{Lo: 6, Hi: 9}},
		{Name: "10-12", Band: numrange.Span{Lo: 10, Hi: 12}},
	},
}

// Stages returns the ordered stage list for an operator.
func Stages(op numrange.Operation) []Stage {
	src := curriculum[op]
	out := make([]Stage, len(src))
	copy(out, src)
	return out
}

// StageByName looks up a stage in an operator's curriculum.
func StageByName(op numrange.Operation, name string) (Stage, bool) {
	for _, st := range curriculum[op] {
		if st.Name == name {
			return st, true
		}
	}
	return Stage{}, false
}

// AutoSkip returns the stage names a learner at the given grade is excused
// from. These seed a new mastery record's completed set.
func AutoSkip(op numrange.Operation, grade int) []string {
	var skipped []string
	for _, st := range curriculum[op] {
		if st.SkipAtGrade > 0 && grade >= st.SkipAtGrade {
			skipped = append(skipped, st.Name)
		}
	}
	return skipped
}

// isSkipped reports whether a single stage is auto-skipped at the grade.
func isSkipped(st Stage, grade int) bool {
	return st.SkipAtGrade > 0 && grade >= st.SkipAtGrade
}
