package agent

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
)

// defaultConfidence is used when no estimate is available at selection time.
const defaultConfidence = 0.5

// DecideAction picks an action for the current tick using the agent's
// exploration bias and random source.
func (a *TradingAgent) DecideAction(pred types.Prediction, epsilon float64) (types.Decision, error) {
	return SelectAction(pred, epsilon, a.explorationBias, a.rng)
}

// SelectAction is the epsilon-greedy selection behind DecideAction. The policy
// estimate is preferred over the value estimate. Missing or flat estimates
// force exploration. Exploratory actions are BUY with probability bias and
// otherwise drawn uniformly from the remaining scored actions, with zero
// confidence.
func SelectAction(pred types.Prediction, epsilon, bias float64, rng RandomSource) (types.Decision, error) {
	estimate, fromPolicy := chooseEstimate(pred)

	if estimate.IsNone() {
		epsilon = 1
	} else {
		scores := estimate.Unwrap()
		if len(scores) != types.NumScoredActions {
			return types.Decision{}, errors.Newf(errors.ErrCodeInvalidEstimate,
				"estimate has %d scores, expected %d", len(scores), types.NumScoredActions)
		}

		if scores.AllEqual() {
			epsilon = 1
		}
	}

	if rng.Float64() < epsilon {
		action := types.ActionBuy
		if rng.Float64() >= bias {
			action, _ = types.ActionForScoreIndex(rng.Intn(types.NumScoredActions-1) + 1)
		}

		return types.Decision{Action: action, Confidence: 0, Exploration: true}, nil
	}

	if estimate.IsNone() {
		return types.Decision{Action: types.ActionBuy, Confidence: defaultConfidence, Exploration: false}, nil
	}

	scores := estimate.Unwrap()
	index := scores.ArgMax()
	action, _ := types.ActionForScoreIndex(index)

	confidence := scores[index]
	if !fromPolicy {
		confidence = types.Sigmoid(scores[index])
	}

	return types.Decision{Action: action, Confidence: confidence, Exploration: false}, nil
}

func chooseEstimate(pred types.Prediction) (optional.Option[types.Estimate], bool) {
	if pred.Policy.IsSome() {
		return pred.Policy, true
	}

	if pred.Value.IsSome() {
		return pred.Value, false
	}

	return optional.None[types.Estimate](), false
}
