// internal/predictor/onnx.go
package predictor

import (
	"context"
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

// ONNXOptions configures the onnxruntime backend. The model takes a
// [1,3,S,S] float32 image in [0,1] and [1,L] int64 task tokens and emits a
// [1,1] success logit.
type ONNXOptions struct {
	ModelPath     string
	LibraryPath   string
	ImageInput    string
	TaskInput     string
	Output        string
	MaxTaskTokens int
	VocabSize     int
	Threshold     float64
}

// ONNX wraps an ONNX runtime session for thread-safe inference.
// It implements the Predictor interface.
type ONNX struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tokenizer *Tokenizer
	threshold float64
}

// NewONNX creates a new ONNX predictor by loading the model from opts.ModelPath
func NewONNX(opts ONNXOptions) (*ONNX, error) {
	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}

	// Initialize the ONNX runtime environment
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		opts.ModelPath,
		[]string{opts.ImageInput, opts.TaskInput},
		[]string{opts.Output},
		nil, // Use default session options
	)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", opts.ModelPath, err)
	}

	return &ONNX{
		session:   session,
		tokenizer: NewTokenizer(opts.MaxTaskTokens, opts.VocabSize),
		threshold: opts.Threshold,
	}, nil
}

// PredictOutcome runs the model on one frame and compares the success
// probability against the threshold.
func (o *ONNX) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	if err := checkImage("onnx", img); err != nil {
		return false, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return false, predictionError("onnx", fmt.Errorf("inference session is nil"))
	}

	s := int64(img.Size)
	imageTensor, err := ort.NewTensor(ort.NewShape(1, 3, s, s), img.CHW())
	if err != nil {
		return false, predictionError("onnx", fmt.Errorf("failed to create image tensor: %w", err))
	}
	defer imageTensor.Destroy()

	tokens := o.tokenizer.Encode(task)
	taskTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(tokens))), tokens)
	if err != nil {
		return false, predictionError("onnx", fmt.Errorf("failed to create task tensor: %w", err))
	}
	defer taskTensor.Destroy()

	outputTensor, err := ort.NewTensor(ort.NewShape(1, 1), make([]float32, 1))
	if err != nil {
		return false, predictionError("onnx", fmt.Errorf("failed to create output tensor: %w", err))
	}
	defer outputTensor.Destroy()

	err = o.session.Run(
		[]ort.ArbitraryTensor{imageTensor, taskTensor},
		[]ort.ArbitraryTensor{outputTensor},
	)
	if err != nil {
		return false, predictionError("onnx", fmt.Errorf("inference failed: %w", err))
	}

	return Sigmoid(outputTensor.GetData()[0]) >= o.threshold, nil
}

// Close releases the ONNX session resources
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != nil {
		err := o.session.Destroy()
		o.session = nil
		if err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}

	return ort.DestroyEnvironment()
}

// Sigmoid maps a logit to a probability.
func Sigmoid(logit float32) float64 {
	return 1 / (1 + math.Exp(-float64(logit)))
}

// Ensure ONNX implements Predictor at compile time
var _ Predictor = (*ONNX)(nil)
