package showboard

import "strings"

// Wizard steps in fixed order. Link is optional: it is asked exactly once if
// reached, and skip/none tokens store it as absent.
const (
	StepName        = "whatnotName"
	StepDate        = "date"
	StepTime        = "time"
	StepDescription = "description"
	StepLink        = "link"
)

var steps = []string{StepName, StepDate, StepTime, StepDescription, StepLink}

// Fields is the collected show data. Empty string means absent.
type Fields struct {
	WhatnotName string
	Date        string
	Time        string
	Description string
	Link        string
}

// Complete reports whether every non-optional field is present.
func (f Fields) Complete() bool {
	return f.WhatnotName != "" && f.Date != "" && f.Time != "" && f.Description != ""
}

// Session is one in-flight show wizard; transitions return new values.
type Session struct {
	StepIndex int
	Data      Fields
	TrailID   []string
}

// Current names the step awaiting an answer.
func (s Session) Current() string {
	if s.StepIndex < len(steps) {
		return steps[s.StepIndex]
	}
	return "done"
}

func promptFor(step string) string {
	switch step {
	case StepName:
		return "🧠🥞 What is your **Whatnot username**?"
	case StepDate:
		return "🧠🥞 What is the **date** of the show? (example: `Jan 9` or `2026-01-09`)"
	case StepTime:
		return "🧠🥞 What is the **time**? (example: `7:00pm ET` or `8pm`)"
	case StepDescription:
		return "🧠🥞 Drop a short **description** (what’s breaking / format / anything important)."
	case StepLink:
		return "🧠🥞 Optional: paste the **Whatnot link** (or reply `skip`)."
	default:
		return "🧠🥞 Got it."
	}
}

// Apply records one answer against the current step and advances the cursor.
func Apply(s Session, answer string) Session {
	t := strings.TrimSpace(answer)

	next := s
	switch s.Current() {
	case StepName:
		next.Data.WhatnotName = t
	case StepDate:
		next.Data.Date = t
	case StepTime:
		next.Data.Time = t
	case StepDescription:
		next.Data.Description = t
	case StepLink:
		lower := strings.ToLower(t)
		if lower == "skip" || lower == "none" {
			next.Data.Link = ""
		} else {
			next.Data.Link = t
		}
	}
	next.StepIndex++
	return next
}

// NeedsLinkPrompt reports whether the wizard reached completion before the
// optional link step and should still ask it once. answeredStep is the step
// the last answer was applied to.
func (s Session) NeedsLinkPrompt(answeredStep string) bool {
	return s.Data.Link == "" && answeredStep != StepLink && s.Current() == StepLink
}
