package progression

import (
	"testing"

	"github.com/mathtrail/mathtrail/internal/numrange"
)

func TestStages_EveryOperatorHasOrderedCurriculum(t *testing.T) {
	for _, op := range numrange.AllOperations() {
		stages := Stages(op)
		if len(stages) < 2 {
			t.Errorf("%s has %d stages, want at least 2", op, len(stages))
		}
		for i := 1; i < len(stages); i++ {
			if stages[i].Band.Lo <= stages[i-1].Band.Hi {
				t.Errorf("%s stages %q and %q overlap or are out of order",
					op, stages[i-1].Name, stages[i].Name)
			}
		}
	}
}

func TestStages_ReturnsCopy(t *testing.T) {
	a := Stages(numrange.OpAddition)
	a[0].Name = "mutated"
	b := Stages(numrange.OpAddition)
	if b[0].Name == "mutated" {
		t.Error("Stages returned a live reference to the curriculum table")
	}
}

func TestStageByName(t *testing.T) {
	st, ok := StageByName(numrange.OpMultiplication, "3-5")
	if !ok {
		t.Fatal("StageByName(multiplication, 3-5) not found")
	}
	if st.Band.Lo != 3 || st.Band.Hi != 5 {
		t.Errorf("stage band = %+v, want [3,5]", st.Band)
	}

	if _, ok := StageByName(numrange.OpAddition, "99-100"); ok {
		t.Error("StageByName found a stage that does not exist")
	}
}

func TestAutoSkip(t *testing.T) {
	tests := []struct {
		op    numrange.Operation
		grade int
		want  []string
	}{
		{numrange.OpAddition, 0, nil},
		{numrange.OpAddition, 2, nil},
		{numrange.OpAddition, 3, []string{"0-5"}},
		{numrange.OpAddition, 4, []string{"0-5"}},
		{numrange.OpAddition, 5, []string{"0-5", "6-10"}},
		{numrange.OpAddition, 6, []string{"0-5", "6-10"}},
		{numrange.OpMultiplication, 3, nil},
		{numrange.OpMultiplication, 4, []string{"0-2"}},
		{numrange.OpMultiplication, 6, []string{"0-2", "3-5"}},
		{numrange.OpDivision, 4, nil},
		{numrange.OpDivision, 5, []string{"1-5"}},
	}

	for _, tt := range tests {
		got := AutoSkip(tt.op, tt.grade)
		if len(got) != len(tt.want) {
			t.Errorf("AutoSkip(%s, %d) = %v, want %v", tt.op, tt.grade, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("AutoSkip(%s, %d) = %v, want %v", tt.op, tt.grade, got, tt.want)
				break
			}
		}
	}
}

func TestAutoSkip_NeverSkipsHardestStage(t *testing.T) {
	// Every operator must keep at least one stage to practice at any grade
	// the table serves, otherwise a new record would start fully complete.
	for _, op := range numrange.AllOperations() {
		for grade := 0; grade <= 8; grade++ {
			if len(AutoSkip(op, grade)) >= len(Stages(op)) {
				t.Errorf("grade %d auto-skips the entire %s curriculum", grade, op)
			}
		}
	}
}
