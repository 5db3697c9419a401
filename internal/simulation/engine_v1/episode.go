package engine

import (
	"context"

	"github.com/rxtech-lab/argo-rl/internal/agent"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/observer"
	"github.com/rxtech-lab/argo-rl/internal/predictor"
	"github.com/rxtech-lab/argo-rl/internal/simulation"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"go.uber.org/zap"
)

// episodeRunner plays one episode with its own observer, agent and random
// source. Only the sequence and the predictor are shared between runners.
type episodeRunner struct {
	engine    *SimulationEngineV1
	runID     string
	episode   int
	epsilon   float64
	seed      int64
	sequence  []types.MarketData
	predictor predictor.Predictor
	callbacks simulation.LifecycleCallbacks
	log       *logger.Logger
}

func (r *episodeRunner) run(ctx context.Context) (types.EpisodeResult, error) {
	config := r.engine.config

	obs := observer.NewMarketObserver(r.sequence)

	tradingAgent, err := agent.NewTradingAgent(obs, config.Agent, agent.NewRandomSource(r.seed), r.log)
	if err != nil {
		return types.EpisodeResult{}, err
	}

	if err := tradingAgent.SetBalance(config.InitialBalance); err != nil {
		return types.EpisodeResult{}, err
	}

	tradingAgent.Reset()
	tradingAgent.ResetExploration()

	if r.callbacks.OnEpisodeStart != nil {
		err := r.engine.withCallback(func() error {
			return (*r.callbacks.OnEpisodeStart)(r.episode, r.epsilon)
		})
		if err != nil {
			return types.EpisodeResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "episode start callback failed", err)
		}
	}

	r.log.Debug("Episode started",
		zap.Float64("epsilon", r.epsilon),
		zap.Float64("exploration_bias", tradingAgent.ExplorationBias()),
	)

	result := types.EpisodeResult{
		RunID:           r.runID,
		Episode:         r.episode,
		Symbol:          r.sequence[0].Symbol,
		StopReason:      types.StopReasonFeedExhausted,
		FirstPrice:      r.sequence[0].Close,
		Epsilon:         r.epsilon,
		ExplorationBias: tradingAgent.ExplorationBias(),
	}

	historyLength := r.predictor.HistoryLength()

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return types.EpisodeResult{}, err
		}

		if config.MaxSteps > 0 && step >= config.MaxSteps {
			result.StopReason = types.StopReasonMaxSteps

			break
		}

		current := obs.Observe()
		if current.IsNone() {
			break
		}

		record := current.Unwrap()

		experience, err := r.step(ctx, tradingAgent, obs, record, step, historyLength)
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeStateUndefined) {
				r.log.Info("Portfolio cannot afford a single share, ending episode",
					zap.Int("step", step),
					zap.Float64("price", record.Close),
				)

				result.StopReason = types.StopReasonInsufficientFunds

				break
			}

			return types.EpisodeResult{}, err
		}

		result.Steps++
		result.LastPrice = record.Close

		if experience.Decision.Exploration {
			result.ExplorationCount++
		}

		if experience.Reward.Delayed != 0 {
			result.DelayedRewards++
		}

		if config.RecordExperiences {
			result.Experiences = append(result.Experiences, experience)
		}

		if r.callbacks.OnStep != nil {
			err := r.engine.withCallback(func() error {
				return (*r.callbacks.OnStep)(r.episode, experience)
			})
			if err != nil {
				return types.EpisodeResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "step callback failed", err)
			}
		}
	}

	result.Portfolio = tradingAgent.Portfolio()

	r.log.Info("Episode finished",
		zap.Int("episode", r.episode),
		zap.String("stop_reason", string(result.StopReason)),
		zap.Int("steps", result.Steps),
		zap.Int("explorations", result.ExplorationCount),
		zap.Float64("portfolio_value", result.Portfolio.PortfolioValue),
		zap.Float64("profit_loss", result.Portfolio.ProfitLoss),
	)

	if r.callbacks.OnEpisodeEnd != nil {
		err := r.engine.withCallback(func() error {
			return (*r.callbacks.OnEpisodeEnd)(result)
		})
		if err != nil {
			return types.EpisodeResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "episode end callback failed", err)
		}
	}

	return result, nil
}

// step runs observe-decide-act for the record the observer just advanced to.
func (r *episodeRunner) step(
	ctx context.Context,
	tradingAgent *agent.TradingAgent,
	obs *observer.MarketObserver,
	record types.MarketData,
	step int,
	historyLength int,
) (types.Experience, error) {
	state, err := tradingAgent.StateVector()
	if err != nil {
		return types.Experience{}, err
	}

	prediction, err := r.predictor.Predict(ctx, predictor.Input{
		State:   state,
		History: obs.History(historyLength),
	})
	if err != nil {
		return types.Experience{}, errors.Wrapf(errors.ErrCodeInferenceFailed, err, "prediction failed at step %d", step)
	}

	decision, err := tradingAgent.DecideAction(prediction, r.epsilon)
	if err != nil {
		return types.Experience{}, err
	}

	actionIndex, _ := decision.Action.ScoreIndex()
	executed := tradingAgent.ExecutableAction(decision.Action)

	reward, err := tradingAgent.Act(decision.Action, decision.Confidence)
	if err != nil {
		return types.Experience{}, errors.Wrapf(errors.ErrCodeEpisodeFailed, err, "settlement failed at step %d", step)
	}

	return types.Experience{
		Step:        step,
		Time:        record.Time,
		Price:       record.Close,
		State:       state,
		Decision:    decision,
		ActionIndex: actionIndex,
		Executed:    executed,
		Reward:      reward,
	}, nil
}
