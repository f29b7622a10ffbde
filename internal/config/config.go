// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "config.yaml"

// ImageSizeKey is the only key a config file must set.
const ImageSizeKey = "general_params.shoulder_camera_image_size"

// Config holds all configuration for a prediction run. It is read once,
// validated eagerly and never mutated afterwards.
type Config struct {
	General   GeneralParams   `mapstructure:"general_params"`
	Predictor PredictorParams `mapstructure:"predictor"`
	Cache     CacheParams     `mapstructure:"cache"`
	Metrics   MetricsParams   `mapstructure:"metrics"`
	Tracing   TracingParams   `mapstructure:"tracing"`
	Logging   LoggingParams   `mapstructure:"logging"`
	Server    ServerParams    `mapstructure:"server"`
}

// GeneralParams describes the camera frame the predictor was trained on.
type GeneralParams struct {
	ShoulderCameraImageSize int    `mapstructure:"shoulder_camera_image_size"`
	SizePolicy              string `mapstructure:"size_policy"`
	Interpolation           string `mapstructure:"interpolation"`
}

// PredictorParams selects and configures the inference backend.
type PredictorParams struct {
	Backend     string       `mapstructure:"backend"`
	Threshold   float64      `mapstructure:"threshold"`
	MockOutcome bool         `mapstructure:"mock_outcome"`
	ONNX        ONNXParams   `mapstructure:"onnx"`
	Gemini      GeminiParams `mapstructure:"gemini"`
	HTTP        HTTPParams   `mapstructure:"http"`
	GRPC        GRPCParams   `mapstructure:"grpc"`
}

// ONNXParams configures the local onnxruntime backend.
type ONNXParams struct {
	ModelPath     string `mapstructure:"model_path"`
	LibraryPath   string `mapstructure:"ort_library_path"`
	ImageInput    string `mapstructure:"image_input"`
	TaskInput     string `mapstructure:"task_input"`
	Output        string `mapstructure:"output"`
	MaxTaskTokens int    `mapstructure:"max_task_tokens"`
	VocabSize     int    `mapstructure:"vocab_size"`
}

// GeminiParams configures the Gemini vision backend.
type GeminiParams struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

// HTTPParams configures the JSON-over-HTTP backend.
type HTTPParams struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GRPCParams configures the remote predictor-server backend.
type GRPCParams struct {
	Address string        `mapstructure:"address"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheParams configures the optional Redis outcome cache.
type CacheParams struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// MetricsParams configures metric export for one-shot runs.
type MetricsParams struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// TracingParams toggles OpenTelemetry tracing.
type TracingParams struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingParams configures the zap logger.
type LoggingParams struct {
	Level string `mapstructure:"level"`
}

// ServerParams is only read by predictor-server.
type ServerParams struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// Backends lists the accepted predictor.backend values.
var Backends = []string{"onnx", "gemini", "http", "grpc", "mock"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general_params.size_policy", string(imaging.PolicyResize))
	v.SetDefault("general_params.interpolation", string(imaging.InterpBilinear))

	v.SetDefault("predictor.backend", "onnx")
	v.SetDefault("predictor.threshold", 0.5)
	v.SetDefault("predictor.mock_outcome", false)
	v.SetDefault("predictor.onnx.model_path", "success_predictor.onnx")
	v.SetDefault("predictor.onnx.ort_library_path", "")
	v.SetDefault("predictor.onnx.image_input", "image")
	v.SetDefault("predictor.onnx.task_input", "task_tokens")
	v.SetDefault("predictor.onnx.output", "success_logit")
	v.SetDefault("predictor.onnx.max_task_tokens", 32)
	v.SetDefault("predictor.onnx.vocab_size", 30522)
	v.SetDefault("predictor.gemini.model", "gemini-2.5-flash")
	v.SetDefault("predictor.gemini.api_key", "")
	v.SetDefault("predictor.http.endpoint", "")
	v.SetDefault("predictor.http.timeout", 30*time.Second)
	v.SetDefault("predictor.grpc.address", "localhost:50061")
	v.SetDefault("predictor.grpc.timeout", 30*time.Second)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "success-check")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("logging.level", "warn")

	v.SetDefault("server.port", 50061)
	v.SetDefault("server.metrics_port", 9101)
}

// Load reads the config file at path, applies SUCCESS_CHECK_* environment
// overrides and validates the result. Every failure is an *Error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("SUCCESS_CHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind keys that may be supplied only through the environment
	v.BindEnv(ImageSizeKey, "SUCCESS_CHECK_GENERAL_PARAMS_SHOULDER_CAMERA_IMAGE_SIZE")
	v.BindEnv("predictor.gemini.api_key", "SUCCESS_CHECK_PREDICTOR_GEMINI_API_KEY", "GEMINI_API_KEY")

	if _, err := os.Stat(path); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	// Read specific config file
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("error reading config file: %w", err)}
	}

	// Defaults cannot satisfy the image size; it has to come from the file or env.
	if !v.IsSet(ImageSizeKey) {
		return nil, &Error{Path: path, Key: ImageSizeKey, Err: errors.New("required key is missing")}
	}

	// mapstructure truncates floats into int fields, so check the raw value first.
	if err := wholeNumber(v.Get(ImageSizeKey)); err != nil {
		return nil, &Error{Path: path, Key: ImageSizeKey, Err: err}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
			return nil, cfgErr
		}
		return nil, &Error{Path: path, Err: err}
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.General.ShoulderCameraImageSize <= 0 {
		return &Error{Key: ImageSizeKey, Err: fmt.Errorf("must be a positive integer, got %d", c.General.ShoulderCameraImageSize)}
	}
	if _, err := imaging.ParseSizePolicy(c.General.SizePolicy); err != nil {
		return &Error{Key: "general_params.size_policy", Err: err}
	}
	if _, err := imaging.ParseInterpolation(c.General.Interpolation); err != nil {
		return &Error{Key: "general_params.interpolation", Err: err}
	}

	if !isBackend(c.Predictor.Backend) {
		return &Error{Key: "predictor.backend", Err: fmt.Errorf("unknown backend %q (want one of %s)", c.Predictor.Backend, strings.Join(Backends, ", "))}
	}
	if c.Predictor.Threshold < 0 || c.Predictor.Threshold > 1 {
		return &Error{Key: "predictor.threshold", Err: fmt.Errorf("must be within [0,1], got %g", c.Predictor.Threshold)}
	}

	switch c.Predictor.Backend {
	case "onnx":
		if c.Predictor.ONNX.ModelPath == "" {
			return &Error{Key: "predictor.onnx.model_path", Err: errors.New("model path is required for the onnx backend")}
		}
		if c.Predictor.ONNX.MaxTaskTokens <= 0 {
			return &Error{Key: "predictor.onnx.max_task_tokens", Err: fmt.Errorf("must be positive, got %d", c.Predictor.ONNX.MaxTaskTokens)}
		}
		if c.Predictor.ONNX.VocabSize <= 1 {
			return &Error{Key: "predictor.onnx.vocab_size", Err: fmt.Errorf("must be greater than 1, got %d", c.Predictor.ONNX.VocabSize)}
		}
	case "http":
		if c.Predictor.HTTP.Endpoint == "" {
			return &Error{Key: "predictor.http.endpoint", Err: errors.New("endpoint is required for the http backend")}
		}
	case "grpc":
		if c.Predictor.GRPC.Address == "" {
			return &Error{Key: "predictor.grpc.address", Err: errors.New("address is required for the grpc backend")}
		}
	}

	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return &Error{Key: "logging.level", Err: err}
		}
	}

	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return &Error{Key: "cache.ttl", Err: fmt.Errorf("must be positive when the cache is enabled, got %s", c.Cache.TTL)}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &Error{Key: "server.port", Err: fmt.Errorf("invalid port: %d", c.Server.Port)}
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return &Error{Key: "server.metrics_port", Err: fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)}
	}
	if c.Server.Port == c.Server.MetricsPort {
		return &Error{Key: "server.metrics_port", Err: errors.New("port and metrics_port must be different")}
	}
	return nil
}

// SizePolicy returns the parsed general_params.size_policy.
func (c *Config) SizePolicy() imaging.SizePolicy {
	p, _ := imaging.ParseSizePolicy(c.General.SizePolicy)
	return p
}

// Interpolation returns the parsed general_params.interpolation.
func (c *Config) Interpolation() imaging.Interpolation {
	i, _ := imaging.ParseInterpolation(c.General.Interpolation)
	return i
}

func wholeNumber(raw interface{}) error {
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return fmt.Errorf("must be a positive integer: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("must be a positive integer, got %v", raw)
	}
	return nil
}

func isBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// Error reports a missing, unreadable or invalid configuration.
type Error struct {
	Path string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Key != "" && e.Path != "":
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Key, e.Err)
	case e.Key != "":
		return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
	default:
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a config file that does not exist.
func IsNotFound(err error) bool {
	var cfgErr *Error
	return errors.As(err, &cfgErr) && errors.Is(cfgErr.Err, fs.ErrNotExist)
}
