package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/agent"
	"github.com/rxtech-lab/argo-rl/internal/predictor"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	"gopkg.in/yaml.v3"
)

type SimulationEngineV1Config struct {
	// Version is the engine version the configuration was written for.
	Version        string  `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Engine version this configuration targets"`
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance" validate:"gt=0" jsonschema:"title=Initial Balance,description=Starting cash of every episode,exclusiveMinimum=0"`
	Episodes       int     `yaml:"episodes" json:"episodes" validate:"gte=1" jsonschema:"title=Episodes,minimum=1,default=1"`
	// StartEpsilon is the exploration rate of the first episode. It decays
	// linearly to zero at the last episode.
	StartEpsilon float64 `yaml:"start_epsilon" json:"start_epsilon" validate:"gte=0,lte=1" jsonschema:"title=Start Epsilon,minimum=0,maximum=1,default=0.5"`
	// MaxSteps caps the steps of an episode. Zero runs until the feed is exhausted.
	MaxSteps int   `yaml:"max_steps" json:"max_steps" validate:"gte=0" jsonschema:"title=Max Steps,minimum=0,default=0"`
	Parallel int   `yaml:"parallel" json:"parallel" validate:"gte=1" jsonschema:"title=Parallel Episodes,minimum=1,default=1"`
	Seed     int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Episode e draws from seed+e"`
	// Symbol filters multi-symbol feeds.
	Symbol string `yaml:"symbol,omitempty" json:"symbol,omitempty" jsonschema:"title=Symbol"`
	// RecordExperiences keeps every step in the episode results.
	RecordExperiences bool                       `yaml:"record_experiences" json:"record_experiences" jsonschema:"title=Record Experiences,default=false"`
	StartTime         optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the simulated period"`
	EndTime           optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the simulated period"`
	Agent             agent.Config               `yaml:"agent" json:"agent" jsonschema:"title=Agent"`
	Predictor         predictor.Config           `yaml:"predictor" json:"predictor" jsonschema:"title=Predictor"`
}

// UnmarshalYAML implements yaml.Unmarshaler. Absent fields keep the
// EmptyConfig defaults.
func (c *SimulationEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	defaults := EmptyConfig()

	type plain struct {
		Version           string           `yaml:"version"`
		InitialBalance    float64          `yaml:"initial_balance"`
		Episodes          int              `yaml:"episodes"`
		StartEpsilon      float64          `yaml:"start_epsilon"`
		MaxSteps          int              `yaml:"max_steps"`
		Parallel          int              `yaml:"parallel"`
		Seed              int64            `yaml:"seed"`
		Symbol            string           `yaml:"symbol"`
		RecordExperiences bool             `yaml:"record_experiences"`
		StartTime         *time.Time       `yaml:"start_time"`
		EndTime           *time.Time       `yaml:"end_time"`
		Agent             agent.Config     `yaml:"agent"`
		Predictor         predictor.Config `yaml:"predictor"`
	}

	config := plain{
		InitialBalance: defaults.InitialBalance,
		Episodes:       defaults.Episodes,
		StartEpsilon:   defaults.StartEpsilon,
		MaxSteps:       defaults.MaxSteps,
		Parallel:       defaults.Parallel,
		Agent:          defaults.Agent,
		Predictor:      defaults.Predictor,
	}

	if err := value.Decode(&config); err != nil {
		return err
	}

	*c = SimulationEngineV1Config{
		Version:           config.Version,
		InitialBalance:    config.InitialBalance,
		Episodes:          config.Episodes,
		StartEpsilon:      config.StartEpsilon,
		MaxSteps:          config.MaxSteps,
		Parallel:          config.Parallel,
		Seed:              config.Seed,
		Symbol:            config.Symbol,
		RecordExperiences: config.RecordExperiences,
		StartTime:         optional.None[time.Time](),
		EndTime:           optional.None[time.Time](),
		Agent:             config.Agent,
		Predictor:         config.Predictor,
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the configuration and its agent and predictor sections.
func (c SimulationEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeSimulationConfigError, "invalid simulation configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeSimulationConfigError, "end_time %s is before start_time %s",
			c.EndTime.Unwrap(), c.StartTime.Unwrap())
	}

	if err := c.Agent.Validate(); err != nil {
		return err
	}

	return c.Predictor.Validate()
}

// EpsilonFor returns the exploration rate of episode e. It decays linearly
// from StartEpsilon at the first episode to zero at the last.
func (c SimulationEngineV1Config) EpsilonFor(episode int) float64 {
	if c.Episodes <= 1 {
		return c.StartEpsilon
	}

	return c.StartEpsilon * (1 - float64(episode)/float64(c.Episodes-1))
}

// GenerateSchema generates a JSON schema for the SimulationEngineV1Config
func (c *SimulationEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "simulation-engine-v1-config"
	schema.Description = "Configuration schema for SimulationEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the SimulationEngineV1Config
func (c *SimulationEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a small valid configuration for tests.
func TestConfig(episodes int, seed int64) SimulationEngineV1Config {
	config := EmptyConfig()
	config.InitialBalance = 1000000
	config.Episodes = episodes
	config.Seed = seed

	return config
}

// EmptyConfig returns a SimulationEngineV1Config with default values. The
// initial balance is left at zero and must be configured.
func EmptyConfig() SimulationEngineV1Config {
	return SimulationEngineV1Config{
		InitialBalance: 0,
		Episodes:       1,
		StartEpsilon:   0.5,
		MaxSteps:       0,
		Parallel:       1,
		Seed:           0,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
		Agent:          agent.DefaultConfig(),
		Predictor:      predictor.Config{Type: predictor.TypeNone},
	}
}
