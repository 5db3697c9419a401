package types

import "fmt"

// Action is the execution-side trading action.
type Action int

const (
	ActionBuy Action = iota
	ActionSell
	ActionHold
)

// NumScoredActions is the width of the predictor's score vectors.
const NumScoredActions = 2

// scoredActions maps a predictor score index to the action it scores.
// HOLD is never scored; it only appears as a downgrade at execution time.
var scoredActions = [NumScoredActions]Action{
	0: ActionBuy,
	1: ActionSell,
}

// ActionForScoreIndex returns the execution action scored at index i of a
// predictor estimate.
func ActionForScoreIndex(i int) (Action, bool) {
	if i < 0 || i >= NumScoredActions {
		return ActionHold, false
	}

	return scoredActions[i], true
}

// ScoreIndex returns the estimate index that scores a, or false for actions
// the predictor does not score.
func (a Action) ScoreIndex() (int, bool) {
	for i, scored := range scoredActions {
		if scored == a {
			return i, true
		}
	}

	return -1, false
}

// IsValid reports whether a is one of BUY, SELL or HOLD.
func (a Action) IsValid() bool {
	return a == ActionBuy || a == ActionSell || a == ActionHold
}

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	case ActionHold:
		return "HOLD"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// MarshalYAML writes the action by name.
func (a Action) MarshalYAML() (any, error) {
	return a.String(), nil
}
