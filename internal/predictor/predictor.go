// Package predictor supplies the per-action value and policy estimates the
// agent selects actions from.
package predictor

import (
	"context"

	"github.com/rxtech-lab/argo-rl/internal/types"
)

// Input is what a predictor sees for one tick.
type Input struct {
	// State is the agent's state vector for the tick.
	State types.StateVector
	// History holds the most recent observed records, oldest first, ending
	// at the current record.
	History []types.MarketData
}

// Predictor produces estimates for the scored actions. Returning an empty
// prediction is valid and makes the agent explore.
type Predictor interface {
	Predict(ctx context.Context, input Input) (types.Prediction, error)
	// HistoryLength is the number of records the predictor wants in Input.History.
	HistoryLength() int
	Close() error
}

// NopPredictor never has an opinion, so every decision is exploratory.
type NopPredictor struct{}

// NewNopPredictor returns a predictor that always yields an empty prediction.
func NewNopPredictor() *NopPredictor {
	return &NopPredictor{}
}

// Predict implements Predictor.
func (NopPredictor) Predict(ctx context.Context, _ Input) (types.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return types.Prediction{}, err
	}

	return types.EmptyPrediction(), nil
}

// HistoryLength implements Predictor.
func (NopPredictor) HistoryLength() int {
	return 0
}

// Close implements Predictor.
func (NopPredictor) Close() error {
	return nil
}
