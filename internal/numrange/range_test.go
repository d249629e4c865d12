package numrange

import "testing"

func TestForGrade_ExplicitGrades(t *testing.T) {
	for _, op := range AllOperations() {
		for grade := Kindergarten; grade <= MaxTableGrade; grade++ {
			nr := ForGrade(op, grade)
			if nr.Grade != grade {
				t.Errorf("ForGrade(%s, %d) returned grade %d", op, grade, nr.Grade)
			}
			if nr.Operation != op {
				t.Errorf("ForGrade(%s, %d) returned operation %s", op, grade, nr.Operation)
			}
			if nr.First.Width() < 1 || nr.Second.Width() < 1 {
				t.Errorf("ForGrade(%s, %d) has an empty span: %+v", op, grade, nr)
			}
		}
	}
}

func TestForGrade_DefaultFallback(t *testing.T) {
	for _, grade := range []int{7, 9, 12, 99} {
		nr := ForGrade(OpAddition, grade)
		if nr.Grade != GradeDefault {
			t.Errorf("ForGrade(addition, %d) = grade %d, want default bucket", grade, nr.Grade)
		}
	}
}

func TestForGrade_NegativeClampsToKindergarten(t *testing.T) {
	nr := ForGrade(OpMultiplication, -3)
	if nr.Grade != Kindergarten {
		t.Errorf("ForGrade(multiplication, -3) = grade %d, want kindergarten", nr.Grade)
	}
}

func TestForGrade_DivisorNeverZero(t *testing.T) {
	// The First span for division is the divisor range; a zero divisor
	// would make the constructed dividend ambiguous.
	for grade := Kindergarten; grade <= MaxTableGrade+2; grade++ {
		nr := ForGrade(OpDivision, grade)
		if nr.First.Lo < 1 {
			t.Errorf("division grade %d allows divisor %d", grade, nr.First.Lo)
		}
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		raw     string
		want    Operation
		wantErr bool
	}{
		{"addition", OpAddition, false},
		{"subtraction", OpSubtraction, false},
		{"multiplication", OpMultiplication, false},
		{"division", OpDivision, false},
		{"modulo", "", true},
		{"", "", true},
		{"Addition", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOperation(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOperation(%q) expected error, got %q", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOperation(%q) unexpected error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("ParseOperation(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpAddition, "+"},
		{OpSubtraction, "-"},
		{OpMultiplication, "×"},
		{OpDivision, "÷"},
	}

	for _, tt := range tests {
		if got := tt.op.Symbol(); got != tt.want {
			t.Errorf("%s.Symbol() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestCommutative(t *testing.T) {
	if !OpAddition.Commutative() || !OpMultiplication.Commutative() {
		t.Error("addition and multiplication must be commutative")
	}
	if OpSubtraction.Commutative() || OpDivision.Commutative() {
		t.Error("subtraction and division must not be commutative")
	}
}
