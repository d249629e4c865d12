package numrange

import "fmt"

// Operation represents one of the four arithmetic operators.
type Operation string

const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
)

// AllOperations returns all operations in curriculum order.
func AllOperations() []Operation {
	return []Operation{OpAddition, OpSubtraction, OpMultiplication, OpDivision}
}

// Symbol returns the display symbol for the operation.
func (op Operation) Symbol() string {
	switch op {
	case OpAddition:
		return "+"
	case OpSubtraction:
		return "-"
	case OpMultiplication:
		return "×"
	case OpDivision:
		return "÷"
	default:
		return "?"
	}
}

// Commutative reports whether operand order is interchangeable.
// Used to canonicalize question signatures so "3+5" and "5+3" dedupe.
func (op Operation) Commutative() bool {
	return op == OpAddition || op == OpMultiplication
}

// DisplayName returns a human-readable label for the operation.
func (op Operation) DisplayName() string {
	switch op {
	case OpAddition:
		return "Addition"
	case OpSubtraction:
		return "Subtraction"
	case OpMultiplication:
		return "Multiplication"
	case OpDivision:
		return "Division"
	default:
		return string(op)
	}
}

// ErrUnknownOperation is returned by ParseOperation for operators outside
// the closed set. Unknown operators are rejected at the boundary; the
// generator itself never sees one.
var ErrUnknownOperation = fmt.Errorf("unknown operation")

// ParseOperation validates a raw operator string from a caller.
func ParseOperation(raw string) (Operation, error) {
	switch Operation(raw) {
	case OpAddition, OpSubtraction, OpMultiplication, OpDivision:
		return Operation(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, raw)
}
