package predictor

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PredictorTestSuite struct {
	suite.Suite
	log *logger.Logger
}

func TestPredictorSuite(t *testing.T) {
	suite.Run(t, new(PredictorTestSuite))
}

func (suite *PredictorTestSuite) SetupTest() {
	suite.log = logger.NewNopLogger()
}

func history(closes ...float64) []types.MarketData {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]types.MarketData, len(closes))

	for i, c := range closes {
		out[i] = types.MarketData{Symbol: "TEST", Time: start.AddDate(0, 0, i), Close: c}
	}

	return out
}

// wave builds n records oscillating around a slow uptrend.
func wave(n int) []types.MarketData {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5) + 0.1*float64(i)
	}

	return history(closes...)
}

func (suite *PredictorTestSuite) TestNopPredictor() {
	p := NewNopPredictor()

	pred, err := p.Predict(context.Background(), Input{})
	suite.Require().NoError(err)
	suite.True(pred.Value.IsNone())
	suite.True(pred.Policy.IsNone())
	suite.Zero(p.HistoryLength())
	suite.NoError(p.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Predict(ctx, Input{})
	suite.ErrorIs(err, context.Canceled)
}

func (suite *PredictorTestSuite) TestIndicatorWarmup() {
	p, err := NewIndicatorPredictor(14, 20, suite.log)
	suite.Require().NoError(err)
	suite.Equal(80, p.HistoryLength())

	feed := wave(19)

	_, err = p.BuyScore(feed)
	suite.True(errors.IsInsufficientDataError(err))

	pred, err := p.Predict(context.Background(), Input{History: feed})
	suite.Require().NoError(err)
	suite.True(pred.Value.IsNone())
	suite.True(pred.Policy.IsNone())
}

func (suite *PredictorTestSuite) TestIndicatorScore() {
	p, err := NewIndicatorPredictor(14, 20, suite.log)
	suite.Require().NoError(err)

	feed := wave(80)
	closes := types.Closes(feed)
	last := len(closes) - 1
	rsi := talib.Rsi(closes, 14)[last]
	ema := talib.Ema(closes, 20)[last]
	expected := (50-rsi)/50 - (closes[last]-ema)/ema

	pred, err := p.Predict(context.Background(), Input{History: feed})
	suite.Require().NoError(err)
	suite.Require().True(pred.Value.IsSome())
	suite.True(pred.Policy.IsNone())

	scores := pred.Value.Unwrap()
	suite.Len(scores, types.NumScoredActions)
	suite.InDelta(expected, scores[0], 1e-12)
	suite.InDelta(-expected, scores[1], 1e-12)
}

func (suite *PredictorTestSuite) TestIndicatorDirection() {
	p, err := NewIndicatorPredictor(5, 5, suite.log)
	suite.Require().NoError(err)

	falling := make([]float64, 30)
	rising := make([]float64, 30)

	for i := range falling {
		falling[i] = 200 - 3*float64(i) + math.Sin(float64(i))
		rising[i] = 100 + 3*float64(i) + math.Sin(float64(i))
	}

	buyAfterFall, err := p.BuyScore(history(falling...))
	suite.Require().NoError(err)
	suite.Positive(buyAfterFall)

	buyAfterRise, err := p.BuyScore(history(rising...))
	suite.Require().NoError(err)
	suite.Negative(buyAfterRise)
}

func (suite *PredictorTestSuite) TestIndicatorRejectsBadPeriods() {
	_, err := NewIndicatorPredictor(1, 20, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *PredictorTestSuite) TestBuildFeatures() {
	input := Input{
		State:   types.StateVector{StockHoldingRatio: 0.25, PortfolioValueRatio: 1.1},
		History: history(90, 100, 110, 100),
	}

	features, ok := BuildFeatures(input, 3)
	suite.Require().True(ok)
	suite.Len(features, 3+types.StateDim)
	suite.InDelta(0.0, features[0], 1e-6)
	suite.InDelta(0.1, features[1], 1e-6)
	suite.InDelta(0.0, features[2], 1e-6)
	suite.InDelta(0.25, features[3], 1e-6)
	suite.InDelta(1.1, features[4], 1e-6)

	_, ok = BuildFeatures(input, 5)
	suite.False(ok)

	_, ok = BuildFeatures(Input{History: history(1, 0)}, 2)
	suite.False(ok)
}

func (suite *PredictorTestSuite) TestReadScores() {
	pred := ReadScores([]float64{1, 1}, OutputPolicy)
	suite.True(pred.Value.IsNone())
	suite.Equal(types.Estimate{0.5, 0.5}, pred.Policy.Unwrap())

	pred = ReadScores([]float64{2, -3}, OutputValue)
	suite.True(pred.Policy.IsNone())
	suite.Equal(types.Estimate{2, -3}, pred.Value.Unwrap())
}

func (suite *PredictorTestSuite) TestFactory() {
	tests := []struct {
		name    string
		config  Config
		want    any
		errCode errors.ErrorCode
	}{
		{name: "empty type is nop", config: Config{}, want: &NopPredictor{}},
		{name: "none", config: Config{Type: TypeNone}, want: &NopPredictor{}},
		{name: "indicator", config: Config{Type: TypeIndicator, RSIPeriod: 7}, want: &IndicatorPredictor{}},
		{name: "unknown type", config: Config{Type: "lstm"}, errCode: errors.ErrCodeInvalidConfiguration},
		{name: "onnx without model", config: Config{Type: TypeONNX}, errCode: errors.ErrCodeInvalidConfiguration},
		{
			name:    "onnx with missing model",
			config:  Config{Type: TypeONNX, ModelPath: filepath.Join(suite.T().TempDir(), "missing.onnx")},
			errCode: errors.ErrCodePredictorLoadFailed,
		},
		{name: "bad window", config: Config{Type: TypeIndicator, Window: -1}, errCode: errors.ErrCodeInvalidConfiguration},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			p, err := New(tc.config, suite.log)
			if tc.errCode != 0 {
				suite.Error(err)
				suite.True(errors.HasCode(err, tc.errCode), "got %v", err)

				return
			}

			suite.Require().NoError(err)
			suite.IsType(tc.want, p)
			suite.NoError(p.Close())
		})
	}
}

func (suite *PredictorTestSuite) TestConfigDefaults() {
	config := Config{}.WithDefaults()

	suite.Equal(TypeNone, config.Type)
	suite.Equal(14, config.RSIPeriod)
	suite.Equal(20, config.EMAPeriod)
	suite.Equal(20, config.Window)
	suite.Equal(OutputPolicy, config.Output)
	suite.Equal("input", config.InputName)
	suite.Equal("output", config.OutputName)
}
