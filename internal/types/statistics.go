package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EpisodeStats summarises an EpisodeResult for reporting.
type EpisodeStats struct {
	// RunID identifies the simulation run the episode belongs to.
	RunID string `yaml:"run_id" json:"run_id"`
	// Timestamp is when the stats were produced.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the simulated feed.
	Symbol  string  `yaml:"symbol" json:"symbol"`
	Episode int     `yaml:"episode" json:"episode"`
	Epsilon float64 `yaml:"epsilon" json:"epsilon"`
	// ExplorationBias is the episode's BUY bias for random actions.
	ExplorationBias float64 `yaml:"exploration_bias" json:"exploration_bias"`
	Steps           int     `yaml:"steps" json:"steps"`
	// ExplorationRate is the share of steps decided by exploration.
	ExplorationRate float64 `yaml:"exploration_rate" json:"exploration_rate"`
	BuyCount        int     `yaml:"buy_count" json:"buy_count"`
	SellCount       int     `yaml:"sell_count" json:"sell_count"`
	HoldCount       int     `yaml:"hold_count" json:"hold_count"`
	// DelayedRewards counts the checkpoints where a delayed reward fired.
	DelayedRewards int     `yaml:"delayed_rewards" json:"delayed_rewards"`
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance"`
	FinalValue     float64 `yaml:"final_value" json:"final_value"`
	CashBalance    float64 `yaml:"cash_balance" json:"cash_balance"`
	StockCount     int     `yaml:"stock_count" json:"stock_count"`
	// ProfitLoss is the final profit/loss ratio.
	ProfitLoss float64 `yaml:"profit_loss" json:"profit_loss"`
	// BuyAndHoldPnl is the profit/loss ratio of holding the first close to the last.
	BuyAndHoldPnl float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`
	// DataPath is the feed file used for this run, if any.
	DataPath string `yaml:"data_path,omitempty" json:"data_path,omitempty"`
}

// WriteEpisodeStats writes stats as YAML to path.
func WriteEpisodeStats(path string, stats []EpisodeStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal episode stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write episode stats to file: %w", err)
	}

	return nil
}

// ReadEpisodeStats reads a stats file written by WriteEpisodeStats.
func ReadEpisodeStats(path string) ([]EpisodeStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read episode stats file: %w", err)
	}

	var stats []EpisodeStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal episode stats: %w", err)
	}

	return stats, nil
}
