package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/report"
	"github.com/rxtech-lab/argo-rl/internal/simulation"
	engine "github.com/rxtech-lab/argo-rl/internal/simulation/engine_v1"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// logLevelEnv overrides the log level when --verbose is not set.
const logLevelEnv = "ARGO_RL_LOG_LEVEL"

func newLogger(verbose bool) (*logger.Logger, error) {
	level := os.Getenv(logLevelEnv)
	if verbose {
		level = "debug"
	}

	if level == "" {
		level = "warn"
	}

	return logger.NewLoggerWithLevel(level)
}

func simulateAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	outputDir := cmd.String("output")

	if configPath == "" || dataPath == "" {
		return fmt.Errorf("both --config and --data are required")
	}

	log, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	config, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	simulator := engine.NewSimulationEngineV1WithLogger(log)

	if err := simulator.Initialize(string(config)); err != nil {
		return fmt.Errorf("failed to initialize simulation engine: %w", err)
	}

	if err := simulator.SetDataPath(dataPath); err != nil {
		return fmt.Errorf("failed to set data path: %w", err)
	}

	var bar *progressbar.ProgressBar

	onRunStart := simulation.OnRunStartCallback(func(runID string, totalEpisodes int, totalRecords int) error {
		bar = progressbar.Default(int64(totalEpisodes*totalRecords))
		bar.Describe(fmt.Sprintf("Simulating %s", filepath.Base(dataPath)))

		log.Info("Run started", zap.String("run_id", runID))

		return nil
	})
	onStep := simulation.OnStepCallback(func(_ int, _ types.Experience) error {
		return bar.Add(1)
	})
	onRunEnd := simulation.OnRunEndCallback(func(_ error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	results, err := simulator.Run(ctx, simulation.LifecycleCallbacks{
		OnRunStart: &onRunStart,
		OnRunEnd:   &onRunEnd,
		OnStep:     &onStep,
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	stats := report.Summarize(results, dataPath)

	path, err := report.Write(filepath.Join(outputDir, results[0].RunID), stats)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(report.Render(stats))
	fmt.Printf("\nStats written to %s\n", path)

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := engine.NewSimulationEngineV1().GetConfigSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "Run trading agent episodes over historical market data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the simulation config YAML",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the market data file (.parquet, .csv or .yaml)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory stats are written to",
				Value:   "results",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the simulation config",
				Action: schemaAction,
			},
		},
		Action: simulateAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
