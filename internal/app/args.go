// internal/app/args.go

// Package app runs one success-check invocation: parse flags, load config,
// build the predictor, normalize the frame, predict and print the report.
package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/SyedDaiam9101/success-detector/internal/config"
)

// Format selects how the report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Request is a parsed command line.
type Request struct {
	ImagePath  string
	Task       string
	ConfigPath string
	Format     Format
	// LogLevel overrides logging.level from the config when set.
	LogLevel string
}

// UsageError reports invalid or missing command-line arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %v", e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

func newFlagSet(req *Request) *pflag.FlagSet {
	fs := pflag.NewFlagSet("success-check", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVar(&req.ImagePath, "image_path", "", "path to the shoulder camera image (required)")
	fs.StringVar(&req.Task, "task", "", "natural-language task description (required)")
	fs.StringVar(&req.ConfigPath, "config", config.DefaultPath, "path to the YAML config file")
	fs.StringVar((*string)(&req.Format), "format", string(FormatText), "report format: text or json")
	fs.StringVar(&req.LogLevel, "log_level", "", "log level override (debug, info, warn, error)")
	return fs
}

// Usage returns the flag help text.
func Usage() string {
	var req Request
	return "Usage: success-check --image_path PATH --task TEXT [flags]\n\n" + newFlagSet(&req).FlagUsages()
}

// ParseArgs parses args (without the program name). It has no side effects;
// --help yields a *UsageError wrapping pflag.ErrHelp.
func ParseArgs(args []string) (Request, error) {
	var req Request
	fs := newFlagSet(&req)

	if err := fs.Parse(args); err != nil {
		return Request{}, &UsageError{Err: err}
	}
	if fs.NArg() > 0 {
		return Request{}, &UsageError{Err: fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}

	var missing []string
	if req.ImagePath == "" {
		missing = append(missing, "--image_path")
	}
	if req.Task == "" {
		missing = append(missing, "--task")
	}
	if len(missing) > 0 {
		return Request{}, &UsageError{Err: fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))}
	}

	switch req.Format {
	case FormatText, FormatJSON:
	default:
		return Request{}, &UsageError{Err: fmt.Errorf("unknown format %q (want text or json)", req.Format)}
	}
	if req.ConfigPath == "" {
		return Request{}, &UsageError{Err: errors.New("--config must not be empty")}
	}

	return req, nil
}
