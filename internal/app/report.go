// internal/app/report.go
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

var rule = strings.Repeat("=", 50)

// Report is the result of one run.
type Report struct {
	RunID     string `json:"run_id"`
	Task      string `json:"task"`
	ImagePath string `json:"image_path"`
	Backend   string `json:"backend"`
	Success   bool   `json:"success"`
}

// Render writes the report to w.
func (r *Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case FormatText, "":
		verdict := "FALSE"
		if r.Success {
			verdict = "TRUE"
		}
		_, err := fmt.Fprintf(w, "\n%s\nTask: %s\nImage: %s\nSuccess Prediction: %s\n%s\n\n",
			rule, r.Task, r.ImagePath, verdict, rule)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
