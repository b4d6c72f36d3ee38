package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chart-analyze-service/llm"

	"github.com/apex/log"
)

// The v1beta surface gets new models first; v1 is the stable fallback.
var defaultBaseURLs = []string{
	"https://generativelanguage.googleapis.com/v1beta",
	"https://generativelanguage.googleapis.com/v1",
}

const defaultRequestTimeout = 120 * time.Second

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client talks to the Gemini generateContent API.
type Client struct {
	apiKey   string
	model    string
	baseURLs []string
	client   *http.Client
}

// NewClient creates a new Gemini client. A zero timeout falls back to the
// two-minute default.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		apiKey:   apiKey,
		model:    model,
		baseURLs: defaultBaseURLs,
		client:   &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in saved analyses.
func (c *Client) SourceName() string {
	return "Gemini"
}

// buildAnalysisRequest builds the outbound request body: a single user turn
// with the localized instruction set, the text instruction and the image as
// inline JPEG data. Pure; no I/O.
func (c *Client) buildAnalysisRequest(imageData []byte, language string) generateRequest {
	return generateRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: llm.SystemPrompt(language)},
					{Text: llm.UserPrompt},
					{
						InlineData: &inlineData{
							MimeType: "image/jpeg",
							Data:     base64.StdEncoding.EncodeToString(imageData),
						},
					},
				},
			},
		},
	}
}

// AnalyzeChart runs one generateContent cycle and returns the first
// candidate's text. The beta endpoint is tried first; a server-side failure
// there falls through to the stable endpoint. No retries beyond that.
func (c *Client) AnalyzeChart(ctx context.Context, imageData []byte, language string) (string, error) {
	data, err := json.Marshal(c.buildAnalysisRequest(imageData, language))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, base := range c.baseURLs {
		endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, c.model, c.apiKey)
		text, err := c.generateContent(ctx, endpoint, data)
		if err == nil {
			return text, nil
		}
		// A timeout or rejected key will not improve on another API version.
		if errors.Is(err, llm.ErrTimeout) || errors.Is(err, llm.ErrUnauthorized) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *Client) generateContent(ctx context.Context, endpoint string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", llm.ErrTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", llm.ErrTimeout
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Gemini reports a rejected key as 403 PERMISSION_DENIED rather than 401.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", llm.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf("API error response (status %d): %s", resp.StatusCode, string(body))
		return "", &llm.ServerError{StatusCode: resp.StatusCode}
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrDecoding, err)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", llm.ErrDecoding)
	}
	for _, p := range gr.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text part in response", llm.ErrDecoding)
}
