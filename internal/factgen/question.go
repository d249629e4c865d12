// Package factgen produces grade-appropriate arithmetic questions.
//
// Generation is total and synchronous: operands are constructed to satisfy
// the operation's constraints (non-negative differences, clean quotients)
// rather than validated after random draws, so every call returns a
// well-formed question without I/O.
package factgen

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mathtrail/mathtrail/internal/numrange"
)

// OptionCount is the fixed number of answer choices on every question.
const OptionCount = 4

// Question is a generated, ephemeral value object. It is never persisted;
// only its signature is retained in the per-session SeenSet.
type Question struct {
	ID         string             `json:"id"`
	Operation  numrange.Operation `json:"operation"`
	Symbol     string             `json:"symbol"`
	Operand1   int                `json:"operand1"`
	Operand2   int                `json:"operand2"`
	Answer     int                `json:"answer"`
	Options    []string           `json:"options"`
	Grade      int                `json:"grade"`
	Difficulty int                `json:"difficulty"`
	FactType   string             `json:"factType,omitempty"`
}

// Text renders the question prompt.
func (q Question) Text() string {
	return fmt.Sprintf("%d %s %d = ?", q.Operand1, q.Symbol, q.Operand2)
}

// Signature returns the canonical duplicate key for a question. Operands of
// commutative operations are order-normalized so "3+5" and "5+3" collide.
func (q Question) Signature() string {
	return Signature(q.Operation, q.Operand1, q.Operand2)
}

// Signature builds the canonical key for an (operation, operands) triple.
func Signature(op numrange.Operation, a, b int) string {
	if op.Commutative() && a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d%s%d", a, op.Symbol(), b)
}

// newID returns a fresh question identifier.
func newID() string {
	return uuid.NewString()
}
