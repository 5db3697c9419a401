package types

import "time"

// Experience is one observe-decide-act step, handed to whatever learner
// consumes the simulation.
type Experience struct {
	Step     int         `yaml:"step" json:"step"`
	Time     time.Time   `yaml:"time" json:"time"`
	Price    float64     `yaml:"price" json:"price"`
	State    StateVector `yaml:"state" json:"state"`
	Decision Decision    `yaml:"decision" json:"decision"`
	// ActionIndex is the estimate index scoring Decision.Action, the output a
	// learner credits with the reward. It is -1 for unscored actions.
	ActionIndex int `yaml:"action_index" json:"action_index"`
	// Executed is the action actually settled after validation.
	Executed Action `yaml:"executed" json:"executed"`
	Reward   Reward `yaml:"reward" json:"reward"`
}

// StopReason says why an episode ended.
type StopReason string

const (
	StopReasonFeedExhausted     StopReason = "feed_exhausted"
	StopReasonMaxSteps          StopReason = "max_steps"
	StopReasonInsufficientFunds StopReason = "insufficient_funds"
)

// EpisodeResult is the outcome of one simulated episode.
type EpisodeResult struct {
	RunID            string         `yaml:"run_id" json:"run_id"`
	Episode          int            `yaml:"episode" json:"episode"`
	Symbol           string         `yaml:"symbol" json:"symbol"`
	StopReason       StopReason     `yaml:"stop_reason" json:"stop_reason"`
	FirstPrice       float64        `yaml:"first_price" json:"first_price"`
	LastPrice        float64        `yaml:"last_price" json:"last_price"`
	Epsilon          float64        `yaml:"epsilon" json:"epsilon"`
	ExplorationBias  float64        `yaml:"exploration_bias" json:"exploration_bias"`
	Steps            int            `yaml:"steps" json:"steps"`
	ExplorationCount int            `yaml:"exploration_count" json:"exploration_count"`
	DelayedRewards   int            `yaml:"delayed_rewards" json:"delayed_rewards"`
	Portfolio        PortfolioState `yaml:"portfolio" json:"portfolio"`
	Experiences      []Experience   `yaml:"-" json:"-"`
}
