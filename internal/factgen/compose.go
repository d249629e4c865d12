package factgen

import "github.com/mathtrail/mathtrail/internal/numrange"

// Compose builds a full question from pre-authored operands, e.g. a row
// from the question catalog. The catalog stores only the fact; the ID and
// distractor options are always built fresh.
func (g *Generator) Compose(op numrange.Operation, grade int, factType string, operand1, operand2, answer int) Question {
	q := Question{
		ID:         newID(),
		Operation:  op,
		Symbol:     op.Symbol(),
		Operand1:   operand1,
		Operand2:   operand2,
		Answer:     answer,
		Grade:      grade,
		Difficulty: difficulty(grade),
		FactType:   factType,
	}
	g.mu.Lock()
	q.Options = g.buildOptions(answer)
	g.mu.Unlock()
	return q
}
