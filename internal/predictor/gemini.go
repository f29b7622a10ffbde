// internal/predictor/gemini.go
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lithammer/dedent"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/SyedDaiam9101/success-detector/internal/imaging"
)

var geminiPrompt = strings.TrimSpace(dedent.Dedent(`
	You are judging a robot manipulation episode from the final frame of its shoulder camera.

	Task given to the robot: %q

	Decide whether the task has been completed in this frame. Only judge the end
	state that is visible; do not assume anything that is out of view.

	Respond in JSON format with these fields:
	- success: true if the task is completed, false otherwise
	- confidence: your confidence in that judgement, from 0.0 to 1.0

	Example response:
	{"success": true, "confidence": 0.87}

	Respond ONLY with the JSON object, no markdown or other text.
`))

// GeminiOptions configures the Gemini backend.
type GeminiOptions struct {
	Model     string
	APIKey    string
	Threshold float64
}

// Gemini asks a Gemini vision model to judge the frame.
type Gemini struct {
	client    *genai.Client
	model     string
	threshold float64
	logger    *zap.Logger
}

type verdict struct {
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
}

// NewGemini creates a Gemini-backed predictor. An empty APIKey falls back to
// the GEMINI_API_KEY environment variable.
func NewGemini(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*Gemini, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: opts.Model, threshold: opts.Threshold, logger: logger}, nil
}

// PredictOutcome sends the frame as PNG with the task prompt.
func (g *Gemini) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	if err := checkImage("gemini", img); err != nil {
		return false, err
	}

	data, err := img.EncodePNG()
	if err != nil {
		return false, predictionError("gemini", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(geminiPrompt, task)),
		{InlineData: &genai.Blob{Data: data, MIMEType: "image/png"}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	var temperature float32
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return false, predictionError("gemini", fmt.Errorf("failed to generate content: %w", err))
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return false, predictionError("gemini", fmt.Errorf("no response from Gemini"))
	}

	text := result.Text()
	g.logger.Debug("gemini verdict", zap.String("response", text))

	v, err := parseVerdict(text)
	if err != nil {
		return false, predictionError("gemini", err)
	}
	return v.Success && v.Confidence >= g.threshold, nil
}

// Close is a no-op; the genai client holds no long-lived connections.
func (g *Gemini) Close() error {
	return nil
}

func parseVerdict(text string) (*verdict, error) {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw struct {
		Success    *bool    `json:"success"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, text)
	}
	if raw.Success == nil {
		return nil, fmt.Errorf("response has no success field: %s", text)
	}

	v := &verdict{Success: *raw.Success, Confidence: 1}
	if raw.Confidence != nil {
		v.Confidence = *raw.Confidence
	}
	return v, nil
}

var _ Predictor = (*Gemini)(nil)
