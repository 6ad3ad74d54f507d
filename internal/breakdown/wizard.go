package breakdown

// Session is one in-flight breakdown wizard. Sessions are immutable values:
// every transition returns a new session rather than patching in place.
type Session struct {
	Step    string
	Needed  []string
	Data    Record
	Prompt  string
	TrailID []string

	OriginGuildID   string
	OriginChannelID string
}

// StepDone marks the terminal state.
const StepDone = "done"

func promptForStep(step string) string {
	switch step {
	case FieldSpots:
		return "🧠🥞 How many **spots**? (reply with just a number)"
	case FieldBoxes:
		return "🧠🥞 How many **boxes**? (reply with just a number)"
	case FieldCostPerBox:
		return "🧠🥞 What’s the **cost per box**? (reply with just a number)"
	default:
		return "🧠🥞 Got it."
	}
}

const promptDidNotCatch = "🧠🥞 I didn’t catch a number—reply with just the number (or type `mw cancel`)."

func neededFields(rec Record) []string {
	var needed []string
	if rec.Spots <= 0 {
		needed = append(needed, FieldSpots)
	}
	if rec.Boxes <= 0 {
		needed = append(needed, FieldBoxes)
	}
	if rec.CostPerBox <= 0 {
		needed = append(needed, FieldCostPerBox)
	}
	return needed
}

// StartWizard builds the initial session for a partially-extracted record.
// The first still-missing field, in fixed order, becomes the current step.
func StartWizard(partial Record) Session {
	needed := neededFields(partial)

	step := StepDone
	if len(needed) > 0 {
		step = needed[0]
	}

	return Session{
		Step:   step,
		Needed: needed,
		Data:   partial,
		Prompt: promptForStep(step),
	}
}

// Advance consumes one textual answer and returns the next session state.
//
// A pasted full command short-circuits straight to done, replacing prior
// partial data wholesale with the fresh parse. Otherwise the first numeric
// token answers the current step; with no usable number the current prompt is
// re-issued with a didn't-understand notice instead of advancing.
func Advance(s Session, answer string) Session {
	parsed := Extract(answer)
	if len(parsed.Missing) == 0 {
		next := s
		next.Step = StepDone
		next.Needed = nil
		next.Data = parsed.Data
		return next
	}

	next := s
	value := firstNumber(answer)
	if value > 0 {
		switch s.Step {
		case FieldSpots:
			next.Data.Spots = int(value)
		case FieldBoxes:
			next.Data.Boxes = int(value)
		case FieldCostPerBox:
			next.Data.CostPerBox = value
		}
	}

	needed := neededFields(next.Data)
	next.Needed = needed
	if len(needed) == 0 {
		next.Step = StepDone
		return next
	}

	next.Step = needed[0]
	if value > 0 {
		next.Prompt = promptForStep(next.Step)
	} else {
		next.Prompt = promptDidNotCatch
	}
	return next
}

// Done reports whether the session has reached its terminal state.
func (s Session) Done() bool {
	return s.Step == StepDone
}
