package types

import (
	"math"

	"github.com/moznion/go-optional"
)

// Estimate is a per-action score vector indexed by score index
// (see ActionForScoreIndex).
type Estimate []float64

// ArgMax returns the index of the first maximum score.
func (e Estimate) ArgMax() int {
	best := 0
	for i := 1; i < len(e); i++ {
		if e[i] > e[best] {
			best = i
		}
	}

	return best
}

// AllEqual reports whether every score equals the maximum, i.e. the estimate
// carries no signal to discriminate between actions.
func (e Estimate) AllEqual() bool {
	if len(e) == 0 {
		return true
	}

	maxScore := e[e.ArgMax()]
	for _, v := range e {
		if v != maxScore {
			return false
		}
	}

	return true
}

// Prediction is what a predictor supplies for one tick. Either estimate may be absent.
type Prediction struct {
	// Value holds arbitrary-scale scores per action.
	Value optional.Option[Estimate]
	// Policy holds per-action probabilities summing to roughly one.
	Policy optional.Option[Estimate]
}

// EmptyPrediction returns a prediction with neither estimate, which forces exploration.
func EmptyPrediction() Prediction {
	return Prediction{
		Value:  optional.None[Estimate](),
		Policy: optional.None[Estimate](),
	}
}

// Sigmoid squashes x into (0, 1).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Softmax converts logits into probabilities.
func Softmax(logits []float64) Estimate {
	if len(logits) == 0 {
		return Estimate{}
	}

	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	out := make(Estimate, len(logits))
	sum := 0.0

	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}

	for i := range out {
		out[i] /= sum
	}

	return out
}
