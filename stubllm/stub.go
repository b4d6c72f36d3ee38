package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Client is a deterministic, no-network LLM stub intended for CI and local
// end-to-end runs. It returns schema-valid chart JSON so parsing, record
// creation and DB writes exercise the full pipeline.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) AnalyzeChart(ctx context.Context, imageData []byte, language string) (string, error) {
	// Deterministic per-input so the pipeline is stable in CI.
	sum := sha256.Sum256(imageData)
	short := hex.EncodeToString(sum[:4])

	out := map[string]any{
		"keyInsights": map[string]any{
			"trend":           "BULLISH",
			"volatility":      "CALM",
			"volume":          "AVERAGE",
			"marketSentiment": "CAUTIOUS",
			"momentum":        "STEADY",
			"trendMaturity":   "EARLY",
		},
		"gamePlan": map[string]any{
			"narrative":   fmt.Sprintf("Stubbed plan %s: enter on pullback, stop below support, target the prior high.", short),
			"timeHorizon": "SHORT",
		},
		"technicalAnalysis": map[string]any{
			"trendAnalysis": map[string]any{
				"primary":  "Stubbed uptrend on higher lows.",
				"strength": "Moderate strength, no exhaustion signs.",
			},
			"supportResistance": map[string]any{
				"supports":    []string{"$100.00", "$95.50"},
				"resistances": []string{"$110.00"},
			},
			"indicators": map[string]any{
				"rsi":            "RSI near 60, room to run.",
				"macd":           "MACD above signal line.",
				"movingAverages": "Price above the 50-day MA.",
			},
			"volume":   "Volume in line with the 20-day average.",
			"patterns": []string{"Ascending triangle"},
		},
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
