package predictor

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-rl/internal/logger"
	"github.com/rxtech-lab/argo-rl/internal/types"
	"github.com/rxtech-lab/argo-rl/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

var (
	ortOnce sync.Once
	ortErr  error
)

// initializeRuntime loads the onnxruntime shared library once per process.
func initializeRuntime(libraryPath string) error {
	ortOnce.Do(func() {
		if libraryPath == "" {
			libraryPath = defaultLibraryPath()
		}

		ort.SetSharedLibraryPath(libraryPath)
		ortErr = ort.InitializeEnvironment()
	})

	return ortErr
}

func defaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "/usr/lib/libonnxruntime.so"
	}
}

// ONNXPredictor runs an ONNX model taking [1, window+2] float32 inputs
// (normalised closes followed by the state vector) and producing [1, 2]
// scores. The session's tensors are reused across calls, so Predict is
// serialised.
type ONNXPredictor struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	window  int
	kind    OutputKind
	logger  *logger.Logger
}

// NewONNXPredictor loads the model in config.
func NewONNXPredictor(config Config, log *logger.Logger) (*ONNXPredictor, error) {
	config = config.WithDefaults()

	if log == nil {
		log = logger.NewNopLogger()
	}

	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrapf(errors.ErrCodePredictorLoadFailed, err, "model %q not found", config.ModelPath)
	}

	if err := initializeRuntime(config.SharedLibraryPath); err != nil {
		return nil, errors.Wrap(errors.ErrCodePredictorUnavailable, "failed to initialize onnxruntime", err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(config.Window+types.StateDim)), make([]float32, config.Window+types.StateDim))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePredictorLoadFailed, "failed to create input tensor", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, types.NumScoredActions))
	if err != nil {
		input.Destroy()

		return nil, errors.Wrap(errors.ErrCodePredictorLoadFailed, "failed to create output tensor", err)
	}

	session, err := ort.NewAdvancedSession(config.ModelPath,
		[]string{config.InputName}, []string{config.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()

		return nil, errors.Wrapf(errors.ErrCodePredictorLoadFailed, err, "failed to create session for %q", config.ModelPath)
	}

	log.Info("Loaded ONNX model",
		zap.String("path", config.ModelPath),
		zap.Int("window", config.Window),
		zap.String("output", string(config.Output)),
	)

	return &ONNXPredictor{
		session: session,
		input:   input,
		output:  output,
		window:  config.Window,
		kind:    config.Output,
		logger:  log,
	}, nil
}

// HistoryLength implements Predictor.
func (p *ONNXPredictor) HistoryLength() int {
	return p.window
}

// Predict implements Predictor.
func (p *ONNXPredictor) Predict(ctx context.Context, input Input) (types.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return types.Prediction{}, err
	}

	features, ok := BuildFeatures(input, p.window)
	if !ok {
		return types.EmptyPrediction(), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	copy(p.input.GetData(), features)

	if err := p.session.Run(); err != nil {
		return types.Prediction{}, errors.Wrap(errors.ErrCodeInferenceFailed, "inference failed", err)
	}

	raw := p.output.GetData()
	scores := make([]float64, len(raw))

	for i, v := range raw {
		scores[i] = float64(v)
	}

	return ReadScores(scores, p.kind), nil
}

// Close releases the session and its tensors.
func (p *ONNXPredictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		if err := p.session.Destroy(); err != nil {
			return err
		}

		p.session = nil
	}

	if p.input != nil {
		_ = p.input.Destroy()
		p.input = nil
	}

	if p.output != nil {
		_ = p.output.Destroy()
		p.output = nil
	}

	return nil
}

// BuildFeatures lays out the model input: the last window closes relative to
// the current close, then the state vector. It reports false while the
// history is shorter than window or the current close is not positive.
func BuildFeatures(input Input, window int) ([]float32, bool) {
	if window <= 0 || len(input.History) < window {
		return nil, false
	}

	recent := input.History[len(input.History)-window:]
	current := recent[len(recent)-1].Close

	if current <= 0 {
		return nil, false
	}

	features := make([]float32, 0, window+types.StateDim)
	for _, record := range recent {
		features = append(features, float32(record.Close/current-1))
	}

	for _, v := range input.State.Slice() {
		features = append(features, float32(v))
	}

	return features, true
}

// ReadScores turns raw model outputs into a prediction of the given kind.
func ReadScores(scores []float64, kind OutputKind) types.Prediction {
	pred := types.EmptyPrediction()

	switch kind {
	case OutputValue:
		pred.Value = optional.Some(types.Estimate(scores))
	default:
		pred.Policy = optional.Some(types.Softmax(scores))
	}

	return pred
}
