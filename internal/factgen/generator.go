package factgen

import (
	"math/rand"
	"sync"

	"github.com/mathtrail/mathtrail/internal/numrange"
)

// DuplicateRetryCap bounds how many times Generate redraws operands to
// avoid a signature already in the SeenSet. On exhaustion the duplicate is
// accepted: availability wins over strict uniqueness.
const DuplicateRetryCap = 20

// GenerateInput carries everything Generate needs for one question.
type GenerateInput struct {
	// Operation is one of the four arithmetic operators. Callers validate
	// it at the boundary with numrange.ParseOperation.
	Operation numrange.Operation

	// Grade selects the number-range bucket; grades beyond the table fall
	// back to the default bucket.
	Grade int

	// Band, when non-nil, narrows the fact-family operand to a progression
	// stage's range (the divisor for division, the second operand
	// otherwise).
	Band *numrange.Span

	// FactType tags the question with the stage it was drawn for.
	FactType string

	// Seen is mutated in place: the chosen question's signature is added
	// after selection. Nil disables duplicate avoidance.
	Seen *SeenSet
}

// Generator produces synthetic questions from the number-range table.
// Safe for concurrent use: one Generator is shared by every request
// goroutine, and rand.Source is not. The zero value is not usable;
// construct with New.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator from an injectable random source, so tests can
// pin the sequence of draws.
func New(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Generate returns a well-formed question for the input. It never fails:
// operands are constructed so the operation's invariants (non-negative
// difference, integer quotient) hold without rejection sampling.
func (g *Generator) Generate(in GenerateInput) Question {
	g.mu.Lock()
	defer g.mu.Unlock()

	var a, b, answer int
	for attempt := 0; ; attempt++ {
		a, b, answer = g.draw(in)
		if in.Seen == nil || attempt >= DuplicateRetryCap {
			break
		}
		if !in.Seen.Contains(Signature(in.Operation, a, b)) {
			break
		}
	}

	q := Question{
		ID:         newID(),
		Operation:  in.Operation,
		Symbol:     in.Operation.Symbol(),
		Operand1:   a,
		Operand2:   b,
		Answer:     answer,
		Grade:      in.Grade,
		Difficulty: difficulty(in.Grade),
		FactType:   in.FactType,
	}
	q.Options = g.buildOptions(answer)

	if in.Seen != nil {
		in.Seen.Add(q.Signature())
	}
	return q
}

// draw picks operands for one candidate question.
func (g *Generator) draw(in GenerateInput) (a, b, answer int) {
	nr := numrange.ForGrade(in.Operation, in.Grade)
	first, second := nr.First, nr.Second
	if in.Band != nil {
		// The stage band constrains the fact-family operand: the divisor
		// for division, the second operand for everything else.
		if in.Operation == numrange.OpDivision {
			first = clampBand(*in.Band, 1)
		} else {
			second = *in.Band
		}
	}

	switch in.Operation {
	case numrange.OpAddition:
		a = g.pick(first)
		b = g.pick(second)
		return a, b, a + b

	case numrange.OpSubtraction:
		// Draw the subtrahend and a non-negative difference, then build
		// the minuend from them. Non-negative by construction.
		diff := g.pick(first)
		sub := g.pick(second)
		return sub + diff, sub, diff

	case numrange.OpMultiplication:
		a = g.pick(first)
		b = g.pick(second)
		return a, b, a * b

	case numrange.OpDivision:
		// Draw divisor and quotient, then build the dividend. Integer
		// result by construction, never by trial division.
		divisor := g.pick(first)
		quotient := g.pick(second)
		return divisor * quotient, divisor, quotient
	}

	// Unreachable for the closed operation set; callers reject unknown
	// operators at the boundary.
	return 0, 0, 0
}

// pick draws uniformly from an inclusive span.
func (g *Generator) pick(s numrange.Span) int {
	if s.Hi <= s.Lo {
		return s.Lo
	}
	return s.Lo + g.rng.Intn(s.Width())
}

// clampBand keeps a stage band above a floor (division bands must exclude
// zero divisors).
func clampBand(s numrange.Span, floor int) numrange.Span {
	if s.Lo < floor {
		s.Lo = floor
	}
	if s.Hi < s.Lo {
		s.Hi = s.Lo
	}
	return s
}

// difficulty maps a grade to the question's 1-5 difficulty label.
func difficulty(grade int) int {
	switch {
	case grade <= 1:
		return 1
	case grade <= 2:
		return 2
	case grade <= 4:
		return 3
	case grade <= 6:
		return 4
	default:
		return 5
	}
}
