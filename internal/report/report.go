// Package report turns episode results into stats files and terminal summaries.
package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"github.com/shopspring/decimal"
)

// StatsFileName is the file Write produces inside the output directory.
const StatsFileName = "stats.yaml"

const (
	moneyPlaces = 2
	ratioPlaces = 6
)

// FromResult summarises one episode.
func FromResult(result types.EpisodeResult, dataPath string, timestamp time.Time) types.EpisodeStats {
	portfolio := result.Portfolio

	explorationRate := 0.0
	if result.Steps > 0 {
		explorationRate = decimal.NewFromInt(int64(result.ExplorationCount)).
			Div(decimal.NewFromInt(int64(result.Steps))).
			Round(ratioPlaces).
			InexactFloat64()
	}

	buyAndHold := 0.0
	if result.FirstPrice > 0 && result.LastPrice > 0 {
		first := decimal.NewFromFloat(result.FirstPrice)
		buyAndHold = decimal.NewFromFloat(result.LastPrice).Sub(first).Div(first).Round(ratioPlaces).InexactFloat64()
	}

	return types.EpisodeStats{
		RunID:           result.RunID,
		Timestamp:       timestamp,
		Symbol:          result.Symbol,
		Episode:         result.Episode,
		Epsilon:         round(result.Epsilon, ratioPlaces),
		ExplorationBias: round(result.ExplorationBias, ratioPlaces),
		Steps:           result.Steps,
		ExplorationRate: explorationRate,
		BuyCount:        portfolio.BuyCount,
		SellCount:       portfolio.SellCount,
		HoldCount:       portfolio.HoldCount,
		DelayedRewards:  result.DelayedRewards,
		InitialBalance:  round(portfolio.InitialBalance, moneyPlaces),
		FinalValue:      round(portfolio.PortfolioValue, moneyPlaces),
		CashBalance:     round(portfolio.CashBalance, moneyPlaces),
		StockCount:      portfolio.StockCount,
		ProfitLoss:      round(portfolio.ProfitLoss, ratioPlaces),
		BuyAndHoldPnl:   buyAndHold,
		DataPath:        dataPath,
	}
}

// Summarize summarises every result, keeping episode order.
func Summarize(results []types.EpisodeResult, dataPath string) []types.EpisodeStats {
	now := time.Now().UTC()
	stats := make([]types.EpisodeStats, 0, len(results))

	for _, result := range results {
		stats = append(stats, FromResult(result, dataPath, now))
	}

	return stats
}

// Write stores stats as dir/stats.yaml, creating dir when needed, and
// returns the file path.
func Write(dir string, stats []types.EpisodeStats) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create output directory %s", dir)
	}

	path := filepath.Join(dir, StatsFileName)
	if err := types.WriteEpisodeStats(path, stats); err != nil {
		return "", errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write stats", err)
	}

	return path, nil
}

// Aggregate holds run-level figures across episodes.
type Aggregate struct {
	Episodes            int
	MeanProfitLoss      float64
	MeanExplorationRate float64
	BestEpisode         int
	WorstEpisode        int
}

// Aggregated computes run-level figures. Best and worst are by ProfitLoss,
// first occurrence wins; both are -1 for no stats.
func Aggregated(stats []types.EpisodeStats) Aggregate {
	agg := Aggregate{Episodes: len(stats), BestEpisode: -1, WorstEpisode: -1}
	if len(stats) == 0 {
		return agg
	}

	pnl := decimal.Zero
	exploration := decimal.Zero
	best, worst := 0, 0

	for i, s := range stats {
		pnl = pnl.Add(decimal.NewFromFloat(s.ProfitLoss))
		exploration = exploration.Add(decimal.NewFromFloat(s.ExplorationRate))

		if s.ProfitLoss > stats[best].ProfitLoss {
			best = i
		}

		if s.ProfitLoss < stats[worst].ProfitLoss {
			worst = i
		}
	}

	count := decimal.NewFromInt(int64(len(stats)))
	agg.MeanProfitLoss = pnl.Div(count).Round(ratioPlaces).InexactFloat64()
	agg.MeanExplorationRate = exploration.Div(count).Round(ratioPlaces).InexactFloat64()
	agg.BestEpisode = stats[best].Episode
	agg.WorstEpisode = stats[worst].Episode

	return agg
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
