package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-rl/internal/feed"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/predictor"
	"github.com/rxtech-lab/argo-rl/internal/simulation"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/internal/version"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type SimulationEngineV1 struct {
	config      SimulationEngineV1Config
	initialized bool
	log         *logger.Logger
	dataSource  feed.DataSource
	ownedSource bool
	dataPath    string
	sequence    []types.MarketData
	predictor   predictor.Predictor
	// callbackMu serialises lifecycle callbacks across parallel episodes.
	callbackMu sync.Mutex
}

// NewSimulationEngineV1 creates an engine that builds its own logger on Initialize.
func NewSimulationEngineV1() simulation.Engine {
	return &SimulationEngineV1{
		config: EmptyConfig(),
	}
}

// NewSimulationEngineV1WithLogger creates an engine logging to log.
func NewSimulationEngineV1WithLogger(log *logger.Logger) simulation.Engine {
	return &SimulationEngineV1{
		config: EmptyConfig(),
		log:    log,
	}
}

// Initialize implements simulation.Engine.
func (s *SimulationEngineV1) Initialize(config string) error {
	var parsed SimulationEngineV1Config
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeSimulationConfigError, "failed to parse simulation configuration", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	if parsed.Version != "" {
		if err := version.CheckVersionCompatibility(version.GetVersion(), parsed.Version); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidVersion, "configuration targets an incompatible engine", err)
		}
	}

	if s.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return err
		}

		s.log = log
	}

	s.config = parsed
	s.initialized = true

	s.log.Debug("Simulation engine initialized",
		zap.Float64("initial_balance", parsed.InitialBalance),
		zap.Int("episodes", parsed.Episodes),
		zap.Float64("start_epsilon", parsed.StartEpsilon),
		zap.Int("parallel", parsed.Parallel),
		zap.String("predictor", string(parsed.Predictor.Type)),
	)

	return nil
}

// SetDataSource implements simulation.Engine.
func (s *SimulationEngineV1) SetDataSource(dataSource feed.DataSource) error {
	if dataSource == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "data source is nil")
	}

	s.dataSource = dataSource
	s.ownedSource = false

	return nil
}

// SetDataPath implements simulation.Engine.
func (s *SimulationEngineV1) SetDataPath(path string) error {
	if _, err := feed.DetectFormat(path); err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid data path %q", path)
	}

	s.dataPath = absPath

	return nil
}

// SetSequence implements simulation.Engine.
func (s *SimulationEngineV1) SetSequence(sequence []types.MarketData) error {
	if len(sequence) == 0 {
		return errors.New(errors.ErrCodeSimulationNoData, "sequence is empty")
	}

	s.sequence = sequence

	return nil
}

// SetPredictor implements simulation.Engine.
func (s *SimulationEngineV1) SetPredictor(p predictor.Predictor) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "predictor is nil")
	}

	s.predictor = p

	return nil
}

// GetConfigSchema implements simulation.Engine.
func (s *SimulationEngineV1) GetConfigSchema() (string, error) {
	config := s.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// Run implements simulation.Engine.
func (s *SimulationEngineV1) Run(ctx context.Context, callbacks simulation.LifecycleCallbacks) (results []types.EpisodeResult, err error) {
	if callbacks.OnRunEnd != nil {
		defer func() { (*callbacks.OnRunEnd)(err) }()
	}

	if err := s.preRunCheck(); err != nil {
		return nil, err
	}

	sequence, err := s.loadSequence()
	if err != nil {
		return nil, err
	}

	p, closePredictor, err := s.resolvePredictor()
	if err != nil {
		return nil, err
	}
	defer closePredictor()

	runID := uuid.New().String()

	s.log.Info("Simulation started",
		zap.String("run_id", runID),
		zap.String("symbol", sequence[0].Symbol),
		zap.Int("records", len(sequence)),
		zap.Int("episodes", s.config.Episodes),
	)

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, s.config.Episodes, len(sequence)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", err)
		}
	}

	results = make([]types.EpisodeResult, s.config.Episodes)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.Parallel)

	for e := 0; e < s.config.Episodes; e++ {
		group.Go(func() error {
			runner := &episodeRunner{
				engine:    s,
				runID:     runID,
				episode:   e,
				epsilon:   s.config.EpsilonFor(e),
				seed:      s.config.Seed + int64(e),
				sequence:  sequence,
				predictor: p,
				callbacks: callbacks,
				log:       s.log.Named(fmt.Sprintf("episode-%d", e)),
			}

			result, err := runner.run(groupCtx)
			if err != nil {
				return err
			}

			results[e] = result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		s.log.Error("Simulation failed", zap.String("run_id", runID), zap.Error(err))

		return nil, err
	}

	s.log.Info("Simulation finished", zap.String("run_id", runID))

	return results, nil
}

// withCallback runs fn while holding the callback lock.
func (s *SimulationEngineV1) withCallback(fn func() error) error {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()

	return fn()
}

func (s *SimulationEngineV1) preRunCheck() error {
	if !s.initialized {
		return errors.New(errors.ErrCodeSimulationNotInitialized, "engine is not initialized, call Initialize first")
	}

	if len(s.sequence) == 0 && s.dataSource == nil && s.dataPath == "" {
		s.log.Error("No market data configured")

		return errors.New(errors.ErrCodeSimulationNoDatasource, "no sequence, data source or data path set")
	}

	return nil
}

// loadSequence resolves the sequence from, in order of preference, an
// explicit sequence, the data source (initialised with the data path when
// one is set) or a data source picked from the data path's extension.
func (s *SimulationEngineV1) loadSequence() ([]types.MarketData, error) {
	if len(s.sequence) > 0 {
		return s.sequence, nil
	}

	if s.dataSource == nil {
		ds, err := s.newDataSource()
		if err != nil {
			return nil, err
		}

		s.dataSource = ds
		s.ownedSource = true
	}

	if s.ownedSource {
		defer func() {
			_ = s.dataSource.Close()
			s.dataSource = nil
			s.ownedSource = false
		}()
	}

	if s.dataPath != "" {
		if err := s.dataSource.Initialize(s.dataPath); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	sequence, err := feed.LoadSequence(s.dataSource, s.config.StartTime, s.config.EndTime)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNoDataFound) {
			return nil, errors.Wrap(errors.ErrCodeSimulationNoData, "no market data in the configured range", err)
		}

		return nil, err
	}

	s.log.Debug("Loaded market sequence",
		zap.String("path", s.dataPath),
		zap.Int("records", len(sequence)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return sequence, nil
}

func (s *SimulationEngineV1) newDataSource() (feed.DataSource, error) {
	format, err := feed.DetectFormat(s.dataPath)
	if err != nil {
		return nil, err
	}

	if format == feed.FormatYAML {
		return feed.NewMemoryDataSource(nil, s.config.Symbol), nil
	}

	return feed.NewDuckDBDataSource(s.config.Symbol, s.log.Named("feed"))
}

// resolvePredictor returns the configured predictor and a cleanup func that
// closes it when the engine built it.
func (s *SimulationEngineV1) resolvePredictor() (predictor.Predictor, func(), error) {
	if s.predictor != nil {
		return s.predictor, func() {}, nil
	}

	p, err := predictor.New(s.config.Predictor, s.log.Named("predictor"))
	if err != nil {
		return nil, nil, err
	}

	return p, func() { _ = p.Close() }, nil
}
