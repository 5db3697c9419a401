// Package simulation defines the episode driver that steps a trading agent
// through a market feed.
package simulation

import (
	"context"

	"github.com/rxtech-lab/argo-rl/internal/feed"
	"github.com/rxtech-lab/argo-rl/internal/predictor"
	"github.com/rxtech-lab/argo-rl/internal/types"
)

// Lifecycle callback types for simulation phases.
// Callbacks returning an error abort the run. With parallel episodes the
// engine still invokes callbacks one at a time.

// OnRunStartCallback is called once the feed is loaded, before the first episode.
type OnRunStartCallback func(runID string, totalEpisodes int, totalRecords int) error

// OnRunEndCallback is called when the run finishes, with the run error if any.
type OnRunEndCallback func(err error)

// OnEpisodeStartCallback is called before an episode takes its first step.
type OnEpisodeStartCallback func(episode int, epsilon float64) error

// OnEpisodeEndCallback is called with the result of every finished episode.
type OnEpisodeEndCallback func(result types.EpisodeResult) error

// OnStepCallback is called after every settled step.
type OnStepCallback func(episode int, experience types.Experience) error

// LifecycleCallbacks holds the lifecycle callbacks of a run.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart     *OnRunStartCallback
	OnRunEnd       *OnRunEndCallback
	OnEpisodeStart *OnEpisodeStartCallback
	OnEpisodeEnd   *OnEpisodeEndCallback
	OnStep         *OnStepCallback
}

type Engine interface {
	// Initialize parses the YAML engine configuration.
	Initialize(config string) error
	// SetDataSource sets the feed to read the sequence from.
	SetDataSource(dataSource feed.DataSource) error
	// SetDataPath sets the feed file (.parquet, .csv or .yaml). Without an
	// explicit data source the engine picks one from the extension.
	SetDataPath(path string) error
	// SetSequence supplies the market sequence directly, bypassing any feed.
	SetSequence(sequence []types.MarketData) error
	// SetPredictor overrides the predictor built from the configuration.
	SetPredictor(p predictor.Predictor) error
	// Run simulates every configured episode and returns their results in
	// episode order. The context cancels the run between steps.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]types.EpisodeResult, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
