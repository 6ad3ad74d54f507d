package breakdown

import (
	"reflect"
	"testing"
)

func TestStartWizardOrder(t *testing.T) {
	tests := []struct {
		name       string
		partial    Record
		wantStep   string
		wantNeeded []string
	}{
		{
			name:       "nothing known",
			partial:    Record{},
			wantStep:   FieldSpots,
			wantNeeded: []string{FieldSpots, FieldBoxes, FieldCostPerBox},
		},
		{
			name:       "spots known asks boxes first",
			partial:    Record{Spots: 75},
			wantStep:   FieldBoxes,
			wantNeeded: []string{FieldBoxes, FieldCostPerBox},
		},
		{
			name:       "only price missing",
			partial:    Record{Spots: 75, Boxes: 3},
			wantStep:   FieldCostPerBox,
			wantNeeded: []string{FieldCostPerBox},
		},
		{
			name:     "already complete",
			partial:  Record{Spots: 75, Boxes: 3, CostPerBox: 92},
			wantStep: StepDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StartWizard(tt.partial)
			if s.Step != tt.wantStep {
				t.Errorf("Step = %q, want %q", s.Step, tt.wantStep)
			}
			if !reflect.DeepEqual(s.Needed, tt.wantNeeded) {
				t.Errorf("Needed = %v, want %v", s.Needed, tt.wantNeeded)
			}
		})
	}
}

func TestAdvanceFillsFieldsInOrder(t *testing.T) {
	s := StartWizard(Record{Spots: 75})

	s = Advance(s, "3")
	if s.Data.Boxes != 3 || s.Step != FieldCostPerBox {
		t.Fatalf("after boxes answer: %+v", s)
	}

	s = Advance(s, "92")
	if !s.Done() {
		t.Fatalf("wizard not done after final answer: %+v", s)
	}
	want := Record{Spots: 75, Boxes: 3, CostPerBox: 92}
	if s.Data != want {
		t.Errorf("Data = %+v, want %+v", s.Data, want)
	}
}

func TestAdvanceTruncatesCountAnswers(t *testing.T) {
	s := StartWizard(Record{Spots: 75, Boxes: 0, CostPerBox: 92})
	s = Advance(s, "3.9")
	if s.Data.Boxes != 3 {
		t.Errorf("Boxes = %d, want 3 (truncated toward zero)", s.Data.Boxes)
	}
}

func TestAdvanceKeepsDecimalForPrice(t *testing.T) {
	s := StartWizard(Record{Spots: 75, Boxes: 3})
	s = Advance(s, "98.98")
	if s.Data.CostPerBox != 98.98 {
		t.Errorf("CostPerBox = %v, want 98.98", s.Data.CostPerBox)
	}
}

func TestAdvanceReprompsWithoutNumber(t *testing.T) {
	s := StartWizard(Record{Spots: 75})
	next := Advance(s, "umm not sure")

	if next.Step != FieldBoxes {
		t.Errorf("Step = %q, want still %q", next.Step, FieldBoxes)
	}
	if next.Prompt != promptDidNotCatch {
		t.Errorf("Prompt = %q, want didn't-catch notice", next.Prompt)
	}
	if next.Data != s.Data {
		t.Errorf("Data changed on unusable answer: %+v", next.Data)
	}
}

func TestAdvanceFullCommandShortCircuits(t *testing.T) {
	s := StartWizard(Record{Spots: 10})
	// A prior partial answer for boxes is discarded by the full re-parse.
	s = Advance(s, "2")

	next := Advance(s, "75 spots 3 boxes at 92 each")
	if !next.Done() {
		t.Fatalf("pasted full command did not finish wizard: %+v", next)
	}
	want := Record{Spots: 75, Boxes: 3, CostPerBox: 92}
	if next.Data != want {
		t.Errorf("Data = %+v, want full replace %+v", next.Data, want)
	}
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	s := StartWizard(Record{Spots: 75})
	before := s.Data
	_ = Advance(s, "3")
	if s.Data != before {
		t.Errorf("Advance mutated its input session: %+v", s.Data)
	}
}

func TestAdvanceIgnoresNonPositiveAnswer(t *testing.T) {
	s := StartWizard(Record{Spots: 75})
	next := Advance(s, "0")
	if next.Data.Boxes != 0 {
		t.Errorf("zero answer stored: %+v", next.Data)
	}
	if next.Prompt != promptDidNotCatch {
		t.Errorf("Prompt = %q, want didn't-catch notice", next.Prompt)
	}
}
