package agent

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
)

// Config holds the per-episode trading parameters of a TradingAgent.
type Config struct {
	// MinTradingUnit is the smallest number of shares in one BUY or SELL.
	MinTradingUnit int `yaml:"min_trading_unit" json:"min_trading_unit" validate:"gte=1" jsonschema:"title=Minimum Trading Unit,description=Smallest number of shares per trade,minimum=1,default=1"`
	// MaxTradingUnit is the largest number of shares in one BUY or SELL.
	MaxTradingUnit int `yaml:"max_trading_unit" json:"max_trading_unit" validate:"gtefield=MinTradingUnit" jsonschema:"title=Maximum Trading Unit,description=Largest number of shares per trade,minimum=1,default=2"`
	// DelayedRewardThreshold is the drift since the last checkpoint, in either
	// direction, that releases a delayed reward.
	DelayedRewardThreshold float64 `yaml:"delayed_reward_threshold" json:"delayed_reward_threshold" validate:"gt=0" jsonschema:"title=Delayed Reward Threshold,description=Profit/loss drift since the last checkpoint that triggers a delayed reward,exclusiveMinimum=0,default=0.5"`
}

// DefaultConfig returns the agent parameters used when none are configured.
func DefaultConfig() Config {
	return Config{
		MinTradingUnit:         1,
		MaxTradingUnit:         2,
		DelayedRewardThreshold: 0.5,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid agent configuration", err)
	}

	return nil
}
