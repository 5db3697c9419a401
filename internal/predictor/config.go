package predictor

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
)

// Type selects a predictor implementation.
type Type string

const (
	TypeNone      Type = "none"
	TypeIndicator Type = "indicator"
	TypeONNX      Type = "onnx"
)

// OutputKind says how to read a model's two output scores.
type OutputKind string

const (
	// OutputPolicy treats the outputs as logits and reports their softmax as a policy estimate.
	OutputPolicy OutputKind = "policy"
	// OutputValue reports the raw outputs as a value estimate.
	OutputValue OutputKind = "value"
)

// Config configures the predictor of a simulation.
type Config struct {
	Type Type `yaml:"type" json:"type" validate:"omitempty,oneof=none indicator onnx" jsonschema:"title=Predictor Type,enum=none,enum=indicator,enum=onnx,default=none"`

	// RSIPeriod and EMAPeriod configure the indicator predictor.
	RSIPeriod int `yaml:"rsi_period,omitempty" json:"rsi_period,omitempty" validate:"omitempty,gte=2" jsonschema:"title=RSI Period,minimum=2,default=14"`
	EMAPeriod int `yaml:"ema_period,omitempty" json:"ema_period,omitempty" validate:"omitempty,gte=2" jsonschema:"title=EMA Period,minimum=2,default=20"`

	// ModelPath is the ONNX model file.
	ModelPath string `yaml:"model_path,omitempty" json:"model_path,omitempty" validate:"required_if=Type onnx" jsonschema:"title=Model Path,description=Path to the ONNX model"`
	// SharedLibraryPath is the onnxruntime shared library. Empty uses the platform default.
	SharedLibraryPath string     `yaml:"shared_library_path,omitempty" json:"shared_library_path,omitempty" jsonschema:"title=ONNX Runtime Library"`
	Window            int        `yaml:"window,omitempty" json:"window,omitempty" validate:"omitempty,gte=1" jsonschema:"title=Window,description=Number of closes fed to the model,minimum=1,default=20"`
	Output            OutputKind `yaml:"output,omitempty" json:"output,omitempty" validate:"omitempty,oneof=policy value" jsonschema:"title=Output,enum=policy,enum=value,default=policy"`
	InputName         string     `yaml:"input_name,omitempty" json:"input_name,omitempty" jsonschema:"default=input"`
	OutputName        string     `yaml:"output_name,omitempty" json:"output_name,omitempty" jsonschema:"default=output"`
}

// WithDefaults fills zero fields with their defaults.
func (c Config) WithDefaults() Config {
	if c.Type == "" {
		c.Type = TypeNone
	}

	if c.RSIPeriod == 0 {
		c.RSIPeriod = 14
	}

	if c.EMAPeriod == 0 {
		c.EMAPeriod = 20
	}

	if c.Window == 0 {
		c.Window = 20
	}

	if c.Output == "" {
		c.Output = OutputPolicy
	}

	if c.InputName == "" {
		c.InputName = "input"
	}

	if c.OutputName == "" {
		c.OutputName = "output"
	}

	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid predictor configuration", err)
	}

	return nil
}

// New builds the predictor selected by config.
func New(config Config, log *logger.Logger) (Predictor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config = config.WithDefaults()

	switch config.Type {
	case TypeNone:
		return NewNopPredictor(), nil
	case TypeIndicator:
		return NewIndicatorPredictor(config.RSIPeriod, config.EMAPeriod, log)
	case TypeONNX:
		return NewONNXPredictor(config, log)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedPredictor, "unsupported predictor type %q", config.Type)
	}
}
