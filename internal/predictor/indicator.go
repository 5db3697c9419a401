package predictor

import (
	"context"

	"github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"go.uber.org/zap"
)

// IndicatorPredictor scores BUY by how oversold the market is (RSI below 50)
// and how far the close sits under its EMA. SELL is scored as the negation.
type IndicatorPredictor struct {
	rsiPeriod int
	emaPeriod int
	logger    *logger.Logger
}

// NewIndicatorPredictor creates an indicator predictor.
func NewIndicatorPredictor(rsiPeriod, emaPeriod int, log *logger.Logger) (*IndicatorPredictor, error) {
	if rsiPeriod < 2 || emaPeriod < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"indicator periods must be at least 2, got rsi=%d ema=%d", rsiPeriod, emaPeriod)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &IndicatorPredictor{
		rsiPeriod: rsiPeriod,
		emaPeriod: emaPeriod,
		logger:    log,
	}, nil
}

// warmup is the shortest history both indicators produce a value for.
func (p *IndicatorPredictor) warmup() int {
	return max(p.rsiPeriod+1, p.emaPeriod)
}

// HistoryLength implements Predictor. RSI smoothing settles with a longer
// history than the bare warm-up.
func (p *IndicatorPredictor) HistoryLength() int {
	return 4 * p.warmup()
}

// Predict implements Predictor. Until the history covers the warm-up it
// returns an empty prediction.
func (p *IndicatorPredictor) Predict(ctx context.Context, input Input) (types.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return types.Prediction{}, err
	}

	score, err := p.BuyScore(input.History)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return types.EmptyPrediction(), nil
		}

		return types.Prediction{}, err
	}

	return types.Prediction{
		Value:  optional.Some(types.Estimate{score, -score}),
		Policy: optional.None[types.Estimate](),
	}, nil
}

// BuyScore computes (50 - RSI)/50 - (close - EMA)/EMA over history.
func (p *IndicatorPredictor) BuyScore(history []types.MarketData) (float64, error) {
	symbol := ""
	if len(history) > 0 {
		symbol = history[len(history)-1].Symbol
	}

	if len(history) < p.warmup() {
		return 0, errors.NewInsufficientDataErrorf(p.warmup(), len(history), symbol,
			"indicator predictor needs %d records, got %d", p.warmup(), len(history))
	}

	closes := types.Closes(history)
	last := len(closes) - 1

	rsi := talib.Rsi(closes, p.rsiPeriod)[last]
	ema := talib.Ema(closes, p.emaPeriod)[last]

	if ema <= 0 {
		return 0, errors.Newf(errors.ErrCodeInferenceFailed, "EMA of %s is %v", symbol, ema)
	}

	score := (50-rsi)/50 - (closes[last]-ema)/ema

	p.logger.Debug("Indicator score",
		zap.String("symbol", symbol),
		zap.Float64("rsi", rsi),
		zap.Float64("ema", ema),
		zap.Float64("score", score),
	)

	return score, nil
}

// Close implements Predictor.
func (p *IndicatorPredictor) Close() error {
	return nil
}
