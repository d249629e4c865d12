package numrange

// Span is an inclusive integer interval.
type Span struct {
	Lo int
	Hi int
}

// Contains reports whether n falls inside the span.
func (s Span) Contains(n int) bool {
	return n >= s.Lo && n <= s.Hi
}

// Width returns the number of integers in the span.
func (s Span) Width() int {
	return s.Hi - s.Lo + 1
}

// NumberRange holds the numeric bounds for one (operation, grade) pair.
// The meaning of the two spans depends on the operation:
//
//   - addition:       First and Second are the two addend ranges
//   - subtraction:    First is the non-negative difference range, Second is
//     the subtrahend range (the minuend is constructed as
//     subtrahend + difference)
//   - multiplication: First and Second are the two factor ranges
//   - division:       First is the divisor range, Second is the quotient
//     range (the dividend is constructed as divisor × quotient)
//
// Records are immutable; the table is never mutated at runtime.
type NumberRange struct {
	Operation Operation
	Grade     int
	First     Span
	Second    Span
}

// GradeDefault is the sentinel grade for the fallback bucket used when a
// grade has no explicit entry (e.g. grades above 6).
const GradeDefault = -1

// Kindergarten is grade 0 throughout the tables.
const Kindergarten = 0

// MaxTableGrade is the highest grade with explicit entries.
const MaxTableGrade = 6

// table is keyed by operation, then grade. Values chosen to keep every
// generated fact inside what the grade band practices.
var table = map[Operation]map[int]NumberRange{
	OpAddition: {
		Kindergarten: {OpAddition, Kindergarten, Span{0, 5}, Span{0, 5}},
		1:            {OpAddition, 1, Span{0, 10}, Span{0, 10}},
		2:            {OpAddition, 2, Span{1, 20}, Span{1, 20}},
		3:            {OpAddition, 3, Span{1, 50}, Span{1, 50}},
		4:            {OpAddition, 4, Span{1, 100}, Span{1, 100}},
		5:            {OpAddition, 5, Span{10, 500}, Span{10, 500}},
		6:            {OpAddition, 6, Span{10, 1000}, Span{10, 1000}},
		GradeDefault: {OpAddition, GradeDefault, Span{10, 1000}, Span{10, 1000}},
	},
	OpSubtraction: {
		Kindergarten: {OpSubtraction, Kindergarten, Span{0, 3}, Span{0, 5}},
		1:            {OpSubtraction, 1, Span{0, 5}, Span{0, 10}},
		2:            {OpSubtraction, 2, Span{0, 10}, Span{1, 20}},
		3:            {OpSubtraction, 3, Span{0, 25}, Span{1, 50}},
		4:            {OpSubtraction, 4, Span{0, 50}, Span{1, 100}},
		5:            {OpSubtraction, 5, Span{0, 250}, Span{10, 500}},
		6:            {OpSubtraction, 6, Span{0, 500}, Span{10, 1000}},
		GradeDefault: {OpSubtraction, GradeDefault, Span{0, 500}, Span{10, 1000}},
	},
	OpMultiplication: {
		Kindergarten: {OpMultiplication, Kindergarten, Span{0, 2}, Span{0, 2}},
		1:            {OpMultiplication, 1, Span{0, 3}, Span{0, 3}},
		2:            {OpMultiplication, 2, Span{0, 5}, Span{0, 5}},
		3:            {OpMultiplication, 3, Span{0, 10}, Span{0, 10}},
		4:            {OpMultiplication, 4, Span{0, 12}, Span{0, 12}},
		5:            {OpMultiplication, 5, Span{2, 12}, Span{2, 25}},
		6:            {OpMultiplication, 6, Span{2, 12}, Span{2, 50}},
		GradeDefault: {OpMultiplication, GradeDefault, Span{2, 12}, Span{2, 50}},
	},
	OpDivision: {
		Kindergarten: {OpDivision, Kindergarten, Span{1, 2}, Span{0, 2}},
		1:            {OpDivision, 1, Span{1, 3}, Span{0, 3}},
		2:            {OpDivision, 2, Span{1, 5}, Span{0, 5}},
		3:            {OpDivision, 3, Span{1, 10}, Span{0, 10}},
		4:            {OpDivision, 4, Span{1, 12}, Span{0, 12}},
		5:            {OpDivision, 5, Span{2, 12}, Span{1, 25}},
		6:            {OpDivision, 6, Span{2, 12}, Span{1, 50}},
		GradeDefault: {OpDivision, GradeDefault, Span{2, 12}, Span{1, 50}},
	},
}

// ForGrade returns the bounds for (op, grade). Grades outside the explicit
// table fall back to the default bucket; negative grades clamp to
// kindergarten.
func ForGrade(op Operation, grade int) NumberRange {
	byGrade := table[op]
	if grade < Kindergarten {
		grade = Kindergarten
	}
	if nr, ok := byGrade[grade]; ok {
		return nr
	}
	return byGrade[GradeDefault]
}
