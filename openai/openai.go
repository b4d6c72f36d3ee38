package openai

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

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// Multimodal inference is slow; the transport timeout is the only
// cancellation mechanism besides the caller's context.
const defaultRequestTimeout = 120 * time.Second

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to the OpenAI chat-completions API.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	baseURL     string
	client      *http.Client
}

// NewClient creates a new OpenAI client with the configured generation
// parameters. A zero timeout falls back to the two-minute default.
func NewClient(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		baseURL:     openAIEndpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in saved analyses.
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// encodeImageToBase64 converts image bytes to a base64 data URL.
func encodeImageToBase64(imageData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)
}

// BuildAnalysisRequest builds the outbound request body: one system message
// carrying the localized instruction set and one user message with the text
// instruction and the image as a data URI. Pure; no I/O.
func (c *Client) BuildAnalysisRequest(imageData []byte, language string) ChatRequest {
	return ChatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "system",
				Content: llm.SystemPrompt(language),
			},
			{
				Role: "user",
				Content: []any{
					TextContent{Type: "text", Text: llm.UserPrompt},
					ImageContent{
						Type:     "image_url",
						ImageURL: ImageURL{URL: encodeImageToBase64(imageData)},
					},
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
}

// AnalyzeChart runs one request/response cycle against the completion API
// and returns the first choice's message content. No retries: every failure
// surfaces immediately as one of the typed errors.
func (c *Client) AnalyzeChart(ctx context.Context, imageData []byte, language string) (string, error) {
	reqBody := c.BuildAnalysisRequest(imageData, language)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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

	if resp.StatusCode == http.StatusUnauthorized {
		return "", llm.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf("API error response (status %d): %s", resp.StatusCode, string(body))
		return "", &llm.ServerError{StatusCode: resp.StatusCode}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrDecoding, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", llm.ErrDecoding)
	}

	// Content is normally a string; defend against structured content by
	// marshaling it back to JSON.
	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return contentStr, nil
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrDecoding, err)
	}
	return string(contentJSON), nil
}
