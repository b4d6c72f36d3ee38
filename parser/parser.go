package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"chart-analyze-service/models"
)

// Named defaults used when the model omits a key-insight field or returns it
// with the wrong type. The insight order below is part of the contract:
// clients scan the list by substring.
const (
	defaultTrend         = "NEUTRAL"
	defaultVolume        = "MEDIUM"
	defaultMomentum      = "STABLE"
	defaultTrendMaturity = "MIDDLE"
	defaultSentiment     = "NEUTRAL"
	defaultVolatility    = "MEDIUM"

	noGamePlan = "No game plan available"
)

// ParseAnalysis normalizes the message content returned by the model into a
// GraphAnalysis. It never fails: content that is not valid JSON degrades to a
// default analysis that preserves the raw text, and missing or mistyped
// fields fall back to named defaults. The original image bytes are attached
// only when the image was judged to be a chart.
func ParseAnalysis(content string, imageData []byte) models.GraphAnalysis {
	cleaned := ExtractJSONFromMarkdown(strings.TrimSpace(content))

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return models.DefaultAnalysis(content)
	}

	if isChart, ok := doc["isChart"].(bool); ok && !isChart {
		humor, _ := doc["humorousComment"].(string)
		if humor == "" {
			humor = fallbackJoke()
		}
		return models.NotAChart(humor)
	}

	keyInsights := objectField(doc, "keyInsights")
	gamePlan := objectField(doc, "gamePlan")

	trend := stringField(keyInsights, "trend", defaultTrend)
	volume := stringField(keyInsights, "volume", defaultVolume)
	momentum := stringField(keyInsights, "momentum", defaultMomentum)
	trendMaturity := stringField(keyInsights, "trendMaturity", defaultTrendMaturity)
	sentiment := stringField(keyInsights, "marketSentiment", defaultSentiment)
	volatility := stringField(keyInsights, "volatility", defaultVolatility)

	insights := []string{
		"Trend: " + trend,
		"Volume: " + volume,
		"Momentum: " + momentum,
		"Trend Maturity: " + trendMaturity,
	}

	return models.GraphAnalysis{
		AnalysisText: content,
		Data: models.GraphData{
			Type:            "Chart",
			XAxis:           "Time",
			YAxis:           "Value",
			Trend:           trend,
			Insights:        insights,
			Recommendations: extractRecommendations(gamePlan),
			Volume:          volume,
		},
		IsChart:    true,
		GamePlan:   formatGamePlan(gamePlan),
		Emoji:      trendEmoji(trend),
		Sentiment:  sentiment,
		MarketMood: sentiment,
		RiskLevel:  volatility,
		ImageData:  imageData,
	}
}

// formatGamePlan composes the narrative and time horizon into one block.
// Both fields must be present; otherwise the literal fallback is used.
func formatGamePlan(gamePlan map[string]any) string {
	narrative, okN := gamePlan["narrative"].(string)
	timeHorizon, okH := gamePlan["timeHorizon"].(string)
	if !okN || !okH {
		return noGamePlan
	}
	return fmt.Sprintf("%s\n\nTime Horizon: %s", narrative, timeHorizon)
}

// extractRecommendations collects the game plan overview followed by each
// entry point condition, in array order. Absent fields are omitted rather
// than defaulted.
func extractRecommendations(gamePlan map[string]any) []string {
	var recommendations []string
	if overview, ok := gamePlan["overview"].(string); ok {
		recommendations = append(recommendations, overview)
	}
	if entries, ok := gamePlan["entryPoints"].([]any); ok {
		for _, entry := range entries {
			if m, ok := entry.(map[string]any); ok {
				if condition, ok := m["condition"].(string); ok {
					recommendations = append(recommendations, condition)
				}
			}
		}
	}
	return recommendations
}

// trendEmoji maps the trend wording to a display emoji. Display only, not a
// business rule.
func trendEmoji(trend string) string {
	lower := strings.ToLower(trend)
	switch {
	case strings.Contains(lower, "bullish"):
		return "📈"
	case strings.Contains(lower, "bearish"):
		return "📉"
	default:
		return "📊"
	}
}

// objectField reads a nested JSON object, returning nil when the key is
// absent or not an object. Lookups against a nil map then fall through to
// the field defaults.
func objectField(doc map[string]any, key string) map[string]any {
	obj, _ := doc[key].(map[string]any)
	return obj
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// ExtractJSONFromMarkdown strips a surrounding markdown code fence, or falls
// back to the outermost brace pair, so fenced model replies still parse.
func ExtractJSONFromMarkdown(response string) string {
	const marker = "```"

	startIdx := strings.Index(response, marker)
	if startIdx == -1 {
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(marker):], marker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(marker)

	content := response[startIdx+len(marker) : endIdx]

	// Drop the language identifier line if present (e.g. "json").
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}
