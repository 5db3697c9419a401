package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/predictor"
	"github.com/rxtech-lab/argo-rl/internal/simulation"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/mocks"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SimulationEngineV1TestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
}

func TestSimulationEngineV1Suite(t *testing.T) {
	suite.Run(t, new(SimulationEngineV1TestSuite))
}

func (suite *SimulationEngineV1TestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
}

func (suite *SimulationEngineV1TestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func someTime(year int, month time.Month, day int) optional.Option[time.Time] {
	return optional.Some(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func sequence(closes ...float64) []types.MarketData {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]types.MarketData, len(closes))

	for i, c := range closes {
		out[i] = types.MarketData{Symbol: "TEST", Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}

	return out
}

func (suite *SimulationEngineV1TestSuite) newEngine(config string) *SimulationEngineV1 {
	eng := NewSimulationEngineV1WithLogger(logger.NewNopLogger()).(*SimulationEngineV1)
	suite.Require().NoError(eng.Initialize(config))

	return eng
}

func (suite *SimulationEngineV1TestSuite) TestRunRequiresInitialize() {
	eng := NewSimulationEngineV1WithLogger(logger.NewNopLogger())
	suite.Require().NoError(eng.SetSequence(sequence(100, 101)))

	_, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeSimulationNotInitialized))
}

func (suite *SimulationEngineV1TestSuite) TestRunRequiresData() {
	eng := suite.newEngine("initial_balance: 1000")

	_, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeSimulationNoDatasource))
}

func (suite *SimulationEngineV1TestSuite) TestInitializeErrors() {
	tests := []struct {
		name   string
		config string
		code   errors.ErrorCode
	}{
		{"malformed yaml", "initial_balance: [", errors.ErrCodeSimulationConfigError},
		{"missing balance", "episodes: 2", errors.ErrCodeSimulationConfigError},
		{"incompatible version", "version: v2.0.0\ninitial_balance: 1000", errors.ErrCodeInvalidVersion},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			eng := NewSimulationEngineV1WithLogger(logger.NewNopLogger())
			err := eng.Initialize(tc.config)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *SimulationEngineV1TestSuite) TestSetterValidation() {
	eng := NewSimulationEngineV1WithLogger(logger.NewNopLogger())

	suite.True(errors.HasCode(eng.SetSequence(nil), errors.ErrCodeSimulationNoData))
	suite.True(errors.HasCode(eng.SetDataSource(nil), errors.ErrCodeInvalidParameter))
	suite.True(errors.HasCode(eng.SetPredictor(nil), errors.ErrCodeInvalidParameter))
	suite.True(errors.HasCode(eng.SetDataPath("feed.json"), errors.ErrCodeUnsupportedFormat))
	suite.NoError(eng.SetDataPath("feed.parquet"))
}

func (suite *SimulationEngineV1TestSuite) TestRunWithSequence() {
	eng := suite.newEngine(`
initial_balance: 1000000
episodes: 3
start_epsilon: 1
seed: 42
record_experiences: true
`)
	seq := mocks.GenerateFeed("TEST", 60, 5)
	suite.Require().NoError(eng.SetSequence(seq))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Require().Len(results, 3)

	_, err = uuid.Parse(results[0].RunID)
	suite.NoError(err)

	for i, result := range results {
		suite.Equal(i, result.Episode)
		suite.Equal(results[0].RunID, result.RunID)
		suite.Equal("TEST", result.Symbol)
		suite.Equal(types.StopReasonFeedExhausted, result.StopReason)
		suite.Equal(len(seq), result.Steps)
		suite.Len(result.Experiences, len(seq))
		suite.Equal(seq[0].Close, result.FirstPrice)
		suite.Equal(seq[len(seq)-1].Close, result.LastPrice)
		suite.GreaterOrEqual(result.ExplorationBias, 0.5)
		suite.Less(result.ExplorationBias, 1.0)

		// The nop predictor forces exploration on every step.
		suite.Equal(result.Steps, result.ExplorationCount)

		p := result.Portfolio
		suite.Equal(result.Steps, p.BuyCount+p.SellCount+p.HoldCount)
		suite.GreaterOrEqual(p.CashBalance, 0.0)
		suite.GreaterOrEqual(p.StockCount, 0)
		suite.Equal(p.CashBalance+float64(result.LastPrice*float64(p.StockCount)), p.PortfolioValue)

		for step, experience := range result.Experiences {
			suite.Equal(step, experience.Step)
			suite.Equal(seq[step].Time, experience.Time)
			suite.True(experience.Executed.IsValid())

			index, ok := experience.Decision.Action.ScoreIndex()
			suite.True(ok)
			suite.Equal(index, experience.ActionIndex)
		}
	}

	suite.Equal(1.0, results[0].Epsilon)
	suite.Equal(0.5, results[1].Epsilon)
	suite.Equal(0.0, results[2].Epsilon)
}

func (suite *SimulationEngineV1TestSuite) TestParallelMatchesSequential() {
	seq := mocks.GenerateFeed("TEST", 80, 8)
	config := `
initial_balance: 20000
episodes: 6
start_epsilon: 0.9
seed: 3
parallel: %d
agent:
  min_trading_unit: 1
  max_trading_unit: 10
  delayed_reward_threshold: 0.01
predictor:
  type: indicator
  rsi_period: 5
  ema_period: 5
`

	run := func(parallel int) []types.EpisodeResult {
		eng := suite.newEngine(fmt.Sprintf(config, parallel))
		suite.Require().NoError(eng.SetSequence(seq))

		results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
		suite.Require().NoError(err)

		for i := range results {
			results[i].RunID = ""
		}

		return results
	}

	sequential := run(1)
	parallel := run(4)

	suite.Equal(sequential, parallel)
	suite.NotEqual(sequential[0].ExplorationBias, sequential[1].ExplorationBias)
}

func (suite *SimulationEngineV1TestSuite) TestMaxSteps() {
	eng := suite.newEngine("initial_balance: 1000\nmax_steps: 3")
	suite.Require().NoError(eng.SetSequence(sequence(100, 101, 102, 103, 104)))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(3, results[0].Steps)
	suite.Equal(types.StopReasonMaxSteps, results[0].StopReason)
	suite.Equal(102.0, results[0].LastPrice)
}

func (suite *SimulationEngineV1TestSuite) TestInsufficientFundsEndsEpisode() {
	eng := suite.newEngine("initial_balance: 50")
	suite.Require().NoError(eng.SetSequence(sequence(100, 101)))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(types.StopReasonInsufficientFunds, results[0].StopReason)
	suite.Zero(results[0].Steps)
	suite.Equal(50.0, results[0].Portfolio.CashBalance)
}

func (suite *SimulationEngineV1TestSuite) TestExploitsPredictor() {
	eng := suite.newEngine(`
initial_balance: 1000
start_epsilon: 0
record_experiences: true
`)
	seq := sequence(100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	suite.Require().NoError(eng.SetSequence(seq))

	mockPredictor := mocks.NewMockPredictor(suite.ctrl)
	mockPredictor.EXPECT().HistoryLength().Return(3).AnyTimes()
	mockPredictor.EXPECT().Predict(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, input predictor.Input) (types.Prediction, error) {
			suite.NotEmpty(input.History)
			suite.LessOrEqual(len(input.History), 3)

			pred := types.EmptyPrediction()
			pred.Policy = optional.Some(types.Estimate{0.9, 0.1})

			return pred, nil
		},
	).Times(len(seq))
	suite.Require().NoError(eng.SetPredictor(mockPredictor))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)

	result := results[0]
	suite.Zero(result.ExplorationCount)
	suite.Equal(len(seq), result.Steps)
	suite.Zero(result.Portfolio.SellCount)
	suite.Positive(result.Portfolio.BuyCount)
	suite.Equal(len(seq), result.Portfolio.BuyCount+result.Portfolio.HoldCount)

	for _, experience := range result.Experiences {
		suite.Equal(types.ActionBuy, experience.Decision.Action)
		suite.Equal(0.9, experience.Decision.Confidence)
		suite.Equal(0, experience.ActionIndex)
	}

	last := result.Experiences[len(result.Experiences)-1]
	suite.Equal(types.ActionHold, last.Executed)
}

func (suite *SimulationEngineV1TestSuite) TestPredictorErrorFailsRun() {
	eng := suite.newEngine("initial_balance: 1000")
	suite.Require().NoError(eng.SetSequence(sequence(100, 101)))

	mockPredictor := mocks.NewMockPredictor(suite.ctrl)
	mockPredictor.EXPECT().HistoryLength().Return(0).AnyTimes()
	mockPredictor.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(types.Prediction{}, fmt.Errorf("model crashed"))
	suite.Require().NoError(eng.SetPredictor(mockPredictor))

	_, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInferenceFailed))
	suite.Contains(err.Error(), "model crashed")
}

func (suite *SimulationEngineV1TestSuite) TestCallbacks() {
	eng := suite.newEngine("initial_balance: 1000\nepisodes: 2\nparallel: 2")
	seq := sequence(100, 101, 102)
	suite.Require().NoError(eng.SetSequence(seq))

	var (
		runStarts     int
		runEndErr     error
		episodeStarts []int
		episodeEnds   []types.EpisodeResult
		steps         int
	)

	onRunStart := simulation.OnRunStartCallback(func(runID string, totalEpisodes int, totalRecords int) error {
		runStarts++
		suite.NotEmpty(runID)
		suite.Equal(2, totalEpisodes)
		suite.Equal(len(seq), totalRecords)

		return nil
	})
	onRunEnd := simulation.OnRunEndCallback(func(err error) { runEndErr = err })
	onEpisodeStart := simulation.OnEpisodeStartCallback(func(episode int, _ float64) error {
		episodeStarts = append(episodeStarts, episode)

		return nil
	})
	onEpisodeEnd := simulation.OnEpisodeEndCallback(func(result types.EpisodeResult) error {
		episodeEnds = append(episodeEnds, result)

		return nil
	})
	onStep := simulation.OnStepCallback(func(_ int, _ types.Experience) error {
		steps++

		return nil
	})

	_, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{
		OnRunStart:     &onRunStart,
		OnRunEnd:       &onRunEnd,
		OnEpisodeStart: &onEpisodeStart,
		OnEpisodeEnd:   &onEpisodeEnd,
		OnStep:         &onStep,
	})
	suite.Require().NoError(err)

	suite.Equal(1, runStarts)
	suite.NoError(runEndErr)
	suite.ElementsMatch([]int{0, 1}, episodeStarts)
	suite.Len(episodeEnds, 2)
	suite.Equal(2*len(seq), steps)
}

func (suite *SimulationEngineV1TestSuite) TestCallbackErrorAbortsRun() {
	eng := suite.newEngine("initial_balance: 1000")
	suite.Require().NoError(eng.SetSequence(sequence(100, 101, 102)))

	var runEndErr error

	onRunEnd := simulation.OnRunEndCallback(func(err error) { runEndErr = err })
	onStep := simulation.OnStepCallback(func(_ int, experience types.Experience) error {
		if experience.Step == 1 {
			return fmt.Errorf("stop here")
		}

		return nil
	})

	_, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{OnRunEnd: &onRunEnd, OnStep: &onStep})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeCallbackFailed))
	suite.Equal(err, runEndErr)
}

func (suite *SimulationEngineV1TestSuite) TestContextCancellation() {
	eng := suite.newEngine("initial_balance: 1000")
	suite.Require().NoError(eng.SetSequence(sequence(100, 101, 102)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Run(ctx, simulation.LifecycleCallbacks{})
	suite.ErrorIs(err, context.Canceled)
}

func (suite *SimulationEngineV1TestSuite) TestRunFromCSVDataPath() {
	path := filepath.Join(suite.T().TempDir(), "feed.csv")

	var b strings.Builder
	b.WriteString("time,symbol,open,high,low,close,volume\n")

	for i := 0; i < 10; i++ {
		day := time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02 15:04:05")
		fmt.Fprintf(&b, "%s,AAA,%d,%d,%d,%d,1000\n", day, 100+i, 100+i, 100+i, 100+i)
		fmt.Fprintf(&b, "%s,BBB,%d,%d,%d,%d,1000\n", day, 50+i, 50+i, 50+i, 50+i)
	}

	suite.Require().NoError(os.WriteFile(path, []byte(b.String()), 0644))

	eng := suite.newEngine(`
initial_balance: 10000
symbol: AAA
start_time: 2024-01-04T00:00:00Z
end_time: 2024-01-08T00:00:00Z
`)
	suite.Require().NoError(eng.SetDataPath(path))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal("AAA", results[0].Symbol)
	suite.Equal(5, results[0].Steps)
	suite.Equal(102.0, results[0].FirstPrice)
	suite.Equal(106.0, results[0].LastPrice)
}

func (suite *SimulationEngineV1TestSuite) TestRunFromYAMLDataPath() {
	path := filepath.Join(suite.T().TempDir(), "feed.yaml")
	content := `
- {symbol: SPY, time: 2024-01-02T00:00:00Z, close: 100}
- {symbol: SPY, time: 2024-01-03T00:00:00Z, close: 101}
`
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	eng := suite.newEngine("initial_balance: 1000")
	suite.Require().NoError(eng.SetDataPath(path))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(2, results[0].Steps)
}

func (suite *SimulationEngineV1TestSuite) TestRunWithDataSource() {
	eng := suite.newEngine("initial_balance: 1000")
	seq := sequence(100, 101, 102)

	ds := mocks.NewMockDataSource(suite.ctrl)
	ds.EXPECT().Initialize(gomock.Any()).Return(nil)
	ds.EXPECT().Count(gomock.Any(), gomock.Any()).Return(len(seq), nil)
	ds.EXPECT().ReadAll(gomock.Any(), gomock.Any()).Return(func(yield func(types.MarketData, error) bool) {
		for _, record := range seq {
			if !yield(record, nil) {
				return
			}
		}
	})

	suite.Require().NoError(eng.SetDataSource(ds))
	suite.Require().NoError(eng.SetDataPath("feed.parquet"))

	results, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(3, results[0].Steps)
}

func (suite *SimulationEngineV1TestSuite) TestNoDataInRange() {
	eng := suite.newEngine("initial_balance: 1000\nstart_time: 2030-01-01T00:00:00Z")

	ds := mocks.NewMockDataSource(suite.ctrl)
	ds.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	suite.Require().NoError(eng.SetDataSource(ds))

	_, err := eng.Run(context.Background(), simulation.LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeSimulationNoData))
}

func (suite *SimulationEngineV1TestSuite) TestGetConfigSchema() {
	eng := NewSimulationEngineV1()

	schema, err := eng.GetConfigSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, "simulation-engine-v1-config")
}
