// internal/app/orchestrator_test.go
package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/config"
	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/logging"
	"github.com/SyedDaiam9101/success-detector/internal/predictor"
)

func writePNG(t *testing.T, dir string, size int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 120, B: 240, A: 255})
		}
	}
	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func testConfig(size int) *config.Config {
	return &config.Config{
		General: config.GeneralParams{
			ShoulderCameraImageSize: size,
			SizePolicy:              string(imaging.PolicyResize),
			Interpolation:           string(imaging.InterpBilinear),
		},
		Predictor: config.PredictorParams{Backend: "mock", Threshold: 0.5},
	}
}

// harness counts factory calls and hands out one shared mock.
type harness struct {
	cfg        *config.Config
	cfgErr     error
	mock       *predictor.MockPredictor
	initErr    error
	factoryHit int
	stdout     bytes.Buffer
}

func (h *harness) orchestrator() *Orchestrator {
	return &Orchestrator{
		LoadConfig: func(string) (*config.Config, error) {
			return h.cfg, h.cfgErr
		},
		NewPredictor: func(context.Context, *config.Config, *zap.Logger) (predictor.Predictor, error) {
			h.factoryHit++
			if h.initErr != nil {
				return nil, h.initErr
			}
			return h.mock, nil
		},
		NewNormalizer: DefaultNormalizer,
		Stdout:        &h.stdout,
		Logger:        zap.NewNop(),
	}
}

func TestRun_MatchingImageIsAccepted(t *testing.T) {
	h := &harness{cfg: testConfig(128), mock: predictor.NewMockWithOutcome(true)}
	path := writePNG(t, t.TempDir(), 128)

	report, err := h.orchestrator().Run(context.Background(), Request{
		ImagePath: path, Task: "put the block in the bowl", ConfigPath: "config.yaml", Format: FormatText,
	})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, h.mock.CallCount)
	assert.True(t, h.mock.LastLogMetrics)
	assert.Equal(t, "put the block in the bowl", h.mock.LastTask)
	assert.Equal(t, [3]int{128, 128, 3}, h.mock.LastImage.Shape())
	assert.True(t, h.mock.Closed)

	r, g, b := h.mock.LastImage.At(0, 0)
	assert.Equal(t, []uint8{10, 120, 240}, []uint8{r, g, b}, "frame must reach the predictor as RGB")

	assert.Contains(t, h.stdout.String(), "Task: put the block in the bowl\n")
	assert.Contains(t, h.stdout.String(), "Success Prediction: TRUE\n")
}

func TestRun_NegativeOutcomeIsNotAnError(t *testing.T) {
	h := &harness{cfg: testConfig(32), mock: predictor.NewMockWithOutcome(false)}
	path := writePNG(t, t.TempDir(), 32)

	report, err := h.orchestrator().Run(context.Background(), Request{ImagePath: path, Task: "t", Format: FormatText})
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Contains(t, h.stdout.String(), "Success Prediction: FALSE\n")
}

func TestRun_SmallerImageIsResized(t *testing.T) {
	h := &harness{cfg: testConfig(224), mock: predictor.NewMock()}
	path := writePNG(t, t.TempDir(), 64)

	_, err := h.orchestrator().Run(context.Background(), Request{ImagePath: path, Task: "t", Format: FormatJSON})
	require.NoError(t, err)

	require.Equal(t, 1, h.mock.CallCount)
	assert.Equal(t, [3]int{224, 224, 3}, h.mock.LastImage.Shape())
	assert.Len(t, h.mock.LastImage.Pix, 224*224*3)
	assert.Contains(t, h.stdout.String(), `"success": true`)
}

func TestRun_MissingImage(t *testing.T) {
	h := &harness{cfg: testConfig(128), mock: predictor.NewMock()}

	report, err := h.orchestrator().Run(context.Background(), Request{ImagePath: "missing.jpg", Task: "t", Format: FormatText})
	require.Error(t, err)
	assert.Nil(t, report)

	var decodeErr *imaging.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, err.Error(), "missing.jpg")

	var opErr *logging.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "normalize", opErr.Operation)

	assert.Equal(t, 0, h.mock.CallCount)
	assert.True(t, h.mock.Closed)
	assert.Empty(t, h.stdout.String())
}

func TestRun_MissingImageSizeKey(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("predictor:\n  backend: mock\n"), 0o644))

	h := &harness{mock: predictor.NewMock()}
	o := h.orchestrator()
	o.LoadConfig = config.Load

	_, err := o.Run(context.Background(), Request{
		ImagePath: writePNG(t, dir, 16), Task: "t", ConfigPath: cfgPath, Format: FormatText,
	})

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ImageSizeKey, cfgErr.Key)
	assert.Contains(t, err.Error(), "shoulder_camera_image_size")
	assert.Equal(t, 0, h.factoryHit, "predictor must not be constructed")
	assert.Empty(t, h.stdout.String())
}

func TestRun_PredictorInitFailure(t *testing.T) {
	h := &harness{
		cfg:     testConfig(16),
		initErr: &predictor.InitError{Backend: "onnx", Err: errors.New("model not found")},
	}

	_, err := h.orchestrator().Run(context.Background(), Request{ImagePath: "unused.png", Task: "t", Format: FormatText})

	var initErr *predictor.InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, 1, h.factoryHit)
}

func TestRun_PredictionFailure(t *testing.T) {
	mock := predictor.NewMock()
	mock.SetError("session run failed")
	h := &harness{cfg: testConfig(16), mock: mock}

	_, err := h.orchestrator().Run(context.Background(), Request{
		ImagePath: writePNG(t, t.TempDir(), 16), Task: "t", Format: FormatText,
	})

	var predErr *predictor.PredictionError
	require.ErrorAs(t, err, &predErr)
	assert.Contains(t, err.Error(), "session run failed")
	assert.True(t, mock.Closed)
	assert.Empty(t, h.stdout.String())
}

func TestRun_ExactPolicyRejectsMismatch(t *testing.T) {
	cfg := testConfig(32)
	cfg.General.SizePolicy = string(imaging.PolicyExact)
	h := &harness{cfg: cfg, mock: predictor.NewMock()}

	_, err := h.orchestrator().Run(context.Background(), Request{
		ImagePath: writePNG(t, t.TempDir(), 16), Task: "t", Format: FormatText,
	})

	var shapeErr *imaging.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 0, h.mock.CallCount)
}
