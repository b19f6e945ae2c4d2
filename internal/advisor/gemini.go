package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash-preview-05-20"
)

// ErrGeneration marks a failed generation call: non-success status,
// missing credential, or an unparseable response body.
var ErrGeneration = errors.New("no valid AI response")

// Generator produces a structured payload from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (map[string]any, error)
}

// GeminiClient calls the Gemini generateContent endpoint and extracts
// the embedded JSON payload out of the free-form answer text.
type GeminiClient struct {
	BaseURL string
	Model   string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewGeminiClient creates a client. An empty API key is allowed at
// construction; the credential is only required at call time.
func NewGeminiClient(apiKey, model string, timeout time.Duration, logger zerolog.Logger) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		BaseURL: defaultGeminiBaseURL,
		Model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     logger.With().Str("component", "gemini").Logger(),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Matches a leading ```json (or bare ```) fence and a trailing fence.
var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// Generate posts the prompt and parses the first candidate's text as
// JSON. Missing response fields degrade to an empty object; malformed
// JSON is a generation error, never a partial result.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not configured", ErrGeneration)
	}

	reqBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrGeneration, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("gemini API error")
		return nil, fmt.Errorf("%w: status %d", ErrGeneration, resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}

	text := extractText(&gr)
	payload, err := parsePayload(text)
	if err != nil {
		c.log.Warn().Err(err).Str("text", text).Msg("gemini answer is not valid JSON")
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return payload, nil
}

// extractText walks candidates[0].content.parts[0].text; any missing
// level degrades to an empty object rather than faulting.
func extractText(gr *geminiResponse) string {
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "{}"
	}
	if text := gr.Candidates[0].Content.Parts[0].Text; text != "" {
		return text
	}
	return "{}"
}

// StripFences removes an optional Markdown code-fence wrapping.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func parsePayload(text string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(StripFences(text)), &payload); err != nil {
		return nil, fmt.Errorf("parse answer JSON: %w", err)
	}
	return payload, nil
}
