// Package agent implements the trading agent: action selection, validation,
// unit sizing, settlement against a cash/stock portfolio and reward signals.
package agent

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/internal/utils"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"go.uber.org/zap"
)

// PriceSource exposes the reference price of the current tick.
// *observer.MarketObserver satisfies it.
type PriceSource interface {
	CurrentPrice() optional.Option[float64]
}

// TradingAgent owns one episode's portfolio. It is driven by a single
// goroutine; parallel episodes each build their own agent.
type TradingAgent struct {
	prices PriceSource
	config Config
	fees   Fees
	rng    RandomSource
	log    *logger.Logger

	initialBalance     float64
	cashBalance        float64
	stockCount         int
	portfolioValue     float64
	basePortfolioValue float64
	profitLoss         float64
	baseProfitLoss     float64
	immediateReward    float64

	buyCount  int
	sellCount int
	holdCount int

	explorationBias float64

	stockHoldingRatio   float64
	portfolioValueRatio float64
}

// NewTradingAgent creates an agent reading prices from prices. A nil rng is
// replaced by a source seeded with 0; a nil log discards output.
func NewTradingAgent(prices PriceSource, config Config, rng RandomSource, log *logger.Logger) (*TradingAgent, error) {
	if prices == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "price source is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if rng == nil {
		rng = NewRandomSource(0)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &TradingAgent{
		prices: prices,
		config: config,
		fees:   DefaultFees(),
		rng:    rng,
		log:    log,
	}, nil
}

// SetBalance sets the initial balance used by the next Reset. Rewards are
// ratios over this balance, so it must be positive.
func (a *TradingAgent) SetBalance(balance float64) error {
	if balance <= 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
		return errors.Newf(errors.ErrCodeInvalidBalance, "initial balance must be a positive finite number, got %v", balance)
	}

	a.initialBalance = balance

	return nil
}

// Reset starts a new episode from the initial balance.
func (a *TradingAgent) Reset() {
	a.cashBalance = a.initialBalance
	a.stockCount = 0
	a.portfolioValue = a.initialBalance
	a.basePortfolioValue = a.initialBalance
	a.profitLoss = 0
	a.baseProfitLoss = 0
	a.buyCount = 0
	a.sellCount = 0
	a.holdCount = 0
	a.immediateReward = 0
	a.stockHoldingRatio = 0
	a.portfolioValueRatio = 0
}

// ResetExploration redraws the episode's BUY bias for exploratory actions
// from [0.5, 1.0).
func (a *TradingAgent) ResetExploration() {
	a.explorationBias = 0.5 + a.rng.Float64()/2
}

// ExplorationBias returns the probability that an exploratory action is BUY.
func (a *TradingAgent) ExplorationBias() float64 {
	return a.explorationBias
}

// Fees returns the agent's charge and tax rates.
func (a *TradingAgent) Fees() Fees {
	return a.fees
}

// Config returns the agent's trading parameters.
func (a *TradingAgent) Config() Config {
	return a.config
}

// Portfolio returns a snapshot of the portfolio as of the last settlement.
func (a *TradingAgent) Portfolio() types.PortfolioState {
	return types.PortfolioState{
		CashBalance:        a.cashBalance,
		StockCount:         a.stockCount,
		PortfolioValue:     a.portfolioValue,
		InitialBalance:     a.initialBalance,
		BasePortfolioValue: a.basePortfolioValue,
		ProfitLoss:         a.profitLoss,
		BaseProfitLoss:     a.baseProfitLoss,
		BuyCount:           a.buyCount,
		SellCount:          a.sellCount,
		HoldCount:          a.holdCount,
	}
}

// currentPrice returns the observed price or a coded error when there is no
// usable price for the tick.
func (a *TradingAgent) currentPrice() (float64, error) {
	price := a.prices.CurrentPrice()
	if price.IsNone() {
		return 0, errors.New(errors.ErrCodeMarketDataMissing, "no market record has been observed")
	}

	value := price.Unwrap()
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Newf(errors.ErrCodeMarketDataMissing, "current price %v is not usable", value)
	}

	return value, nil
}

// StateVector returns the agent's state for the current tick. It fails when
// no usable price has been observed or when the portfolio cannot afford a
// single share at the current price.
func (a *TradingAgent) StateVector() (types.StateVector, error) {
	price, err := a.currentPrice()
	if err != nil {
		return types.StateVector{}, err
	}

	maxStocks := math.Trunc(a.portfolioValue / price)
	if maxStocks == 0 {
		return types.StateVector{}, errors.Newf(errors.ErrCodeStateUndefined,
			"portfolio value %v cannot buy one share at %v", a.portfolioValue, price)
	}

	if a.basePortfolioValue == 0 {
		return types.StateVector{}, errors.New(errors.ErrCodeZeroBaseline, "base portfolio value is zero, call SetBalance and Reset first")
	}

	a.stockHoldingRatio = float64(a.stockCount) / maxStocks
	a.portfolioValueRatio = a.portfolioValue / a.basePortfolioValue

	return types.StateVector{
		StockHoldingRatio:   a.stockHoldingRatio,
		PortfolioValueRatio: a.portfolioValueRatio,
	}, nil
}

// Validate reports whether action can be executed in the current portfolio.
// BUY needs cash for the minimum unit with charge, SELL needs shares, HOLD is
// always valid and anything else is invalid.
func (a *TradingAgent) Validate(action types.Action) bool {
	switch action {
	case types.ActionBuy:
		price, err := a.currentPrice()
		if err != nil {
			return false
		}

		return a.cashBalance >= a.fees.BuyCost(price, a.config.MinTradingUnit)
	case types.ActionSell:
		return a.stockCount > 0
	case types.ActionHold:
		return true
	default:
		return false
	}
}

// SizeTrade maps a confidence in [0, 1] onto [MinTradingUnit, MaxTradingUnit].
// NaN confidence trades the minimum unit.
func (a *TradingAgent) SizeTrade(confidence float64) int {
	if math.IsNaN(confidence) {
		return a.config.MinTradingUnit
	}

	span := a.config.MaxTradingUnit - a.config.MinTradingUnit

	return a.config.MinTradingUnit + utils.ScaleWithin(confidence, span)
}

// Act validates, sizes and settles action at the current price and returns
// the immediate and delayed rewards. Invalid actions are settled as HOLD.
// Nothing is mutated when it returns an error.
func (a *TradingAgent) Act(action types.Action, confidence float64) (types.Reward, error) {
	price, err := a.currentPrice()
	if err != nil {
		return types.Reward{}, err
	}

	if a.initialBalance == 0 {
		return types.Reward{}, errors.New(errors.ErrCodeZeroBaseline, "initial balance is zero, call SetBalance first")
	}

	if a.basePortfolioValue == 0 {
		return types.Reward{}, errors.New(errors.ErrCodeZeroBaseline, "base portfolio value is zero, call Reset first")
	}

	requested := action
	if !a.Validate(action) {
		action = types.ActionHold
	}

	a.immediateReward = 0

	var tradingUnit int

	switch action {
	case types.ActionBuy:
		tradingUnit = a.SizeTrade(confidence)
		if a.cashBalance-a.fees.BuyCost(price, tradingUnit) < 0 {
			tradingUnit = utils.ClampInt(
				utils.MaxAffordableUnits(a.cashBalance, a.fees.BuyUnitCost(price), a.config.MaxTradingUnit),
				a.config.MinTradingUnit,
				a.config.MaxTradingUnit,
			)
		}

		investAmount := a.fees.BuyCost(price, tradingUnit)
		if investAmount > 0 {
			a.cashBalance -= investAmount
			a.stockCount += tradingUnit
			a.buyCount++
		}
	case types.ActionSell:
		tradingUnit = min(a.SizeTrade(confidence), a.stockCount)

		investAmount := a.fees.SellProceeds(price, tradingUnit)
		if investAmount > 0 {
			a.stockCount -= tradingUnit
			a.cashBalance += investAmount
			a.sellCount++
		}
	case types.ActionHold:
		a.holdCount++
	}

	a.portfolioValue = a.cashBalance + float64(price*float64(a.stockCount))
	a.profitLoss = (a.portfolioValue - a.initialBalance) / a.initialBalance
	a.immediateReward = a.profitLoss

	delayedReward := 0.0

	a.baseProfitLoss = (a.portfolioValue - a.basePortfolioValue) / a.basePortfolioValue
	if a.baseProfitLoss > a.config.DelayedRewardThreshold || a.baseProfitLoss < -a.config.DelayedRewardThreshold {
		a.basePortfolioValue = a.portfolioValue
		delayedReward = a.immediateReward
	}

	a.log.Debug("Settled action",
		zap.Stringer("requested", requested),
		zap.Stringer("executed", action),
		zap.Int("trading_unit", tradingUnit),
		zap.Float64("price", price),
		zap.Float64("cash_balance", a.cashBalance),
		zap.Int("stock_count", a.stockCount),
		zap.Float64("portfolio_value", a.portfolioValue),
		zap.Float64("immediate_reward", a.immediateReward),
		zap.Float64("delayed_reward", delayedReward),
	)

	return types.Reward{Immediate: a.immediateReward, Delayed: delayedReward}, nil
}

// ExecutableAction returns what Act would settle for action right now, after
// the HOLD downgrade for invalid actions.
func (a *TradingAgent) ExecutableAction(action types.Action) types.Action {
	if a.Validate(action) {
		return action
	}

	return types.ActionHold
}
