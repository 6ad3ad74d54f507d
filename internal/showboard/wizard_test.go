package showboard

import "testing"

func TestApplyWalksStepsInOrder(t *testing.T) {
	s := Session{}

	answers := []struct {
		step   string
		answer string
	}{
		{StepName, "wafflefan"},
		{StepDate, "Jan 9"},
		{StepTime, "7:00pm ET"},
		{StepDescription, "Marvel break, 2 boxes"},
	}

	for _, a := range answers {
		if s.Current() != a.step {
			t.Fatalf("Current() = %q, want %q", s.Current(), a.step)
		}
		s = Apply(s, a.answer)
	}

	if !s.Data.Complete() {
		t.Fatalf("Data not complete after required answers: %+v", s.Data)
	}
	if s.Current() != StepLink {
		t.Errorf("Current() = %q, want link step still pending", s.Current())
	}
}

func TestApplyLinkSkipTokens(t *testing.T) {
	for _, token := range []string{"skip", "SKIP", "none", "None"} {
		s := Session{StepIndex: 4, Data: Fields{
			WhatnotName: "w", Date: "d", Time: "t", Description: "x",
		}}
		s = Apply(s, token)
		if s.Data.Link != "" {
			t.Errorf("Apply(%q) stored link %q, want absent", token, s.Data.Link)
		}
	}
}

func TestApplyLinkValue(t *testing.T) {
	s := Session{StepIndex: 4, Data: Fields{
		WhatnotName: "w", Date: "d", Time: "t", Description: "x",
	}}
	s = Apply(s, "https://whatnot.com/live/abc")
	if s.Data.Link != "https://whatnot.com/live/abc" {
		t.Errorf("link = %q", s.Data.Link)
	}
}

func TestApplyTrimsAnswers(t *testing.T) {
	s := Apply(Session{}, "  wafflefan  ")
	if s.Data.WhatnotName != "wafflefan" {
		t.Errorf("WhatnotName = %q, want trimmed", s.Data.WhatnotName)
	}
}

func TestNeedsLinkPrompt(t *testing.T) {
	// Completed on the description answer: link still owed one ask.
	s := Session{StepIndex: 4, Data: Fields{
		WhatnotName: "w", Date: "d", Time: "t", Description: "x",
	}}
	if !s.NeedsLinkPrompt(StepDescription) {
		t.Error("NeedsLinkPrompt = false right after description, want true")
	}

	// The link answer itself never re-prompts.
	done := Apply(s, "skip")
	if done.NeedsLinkPrompt(StepLink) {
		t.Error("NeedsLinkPrompt = true after link answer, want false")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := Session{}
	_ = Apply(s, "wafflefan")
	if s.Data.WhatnotName != "" || s.StepIndex != 0 {
		t.Errorf("Apply mutated its input: %+v", s)
	}
}
