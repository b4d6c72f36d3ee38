package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseAnalysisChartPath(t *testing.T) {
	tests := []struct {
		name                string
		content             string
		wantTrend           string
		wantVolume          string
		wantInsights        []string
		wantGamePlan        string
		wantRecommendations []string
		wantEmoji           string
		wantSentiment       string
		wantRiskLevel       string
	}{
		{
			name: "fully populated chart response",
			content: `{
				"keyInsights": {
					"trend": "BULLISH",
					"volatility": "EXPLOSIVE",
					"volume": "SURGING",
					"marketSentiment": "GREEDY",
					"momentum": "STRONG",
					"trendMaturity": "EARLY"
				},
				"gamePlan": {
					"narrative": "Enter on the pullback, stop below support.",
					"timeHorizon": "SHORT",
					"overview": "Long bias while above support.",
					"entryPoints": [
						{"condition": "Break above resistance"},
						{"condition": "Retest of the 50-day MA"}
					]
				}
			}`,
			wantTrend:  "BULLISH",
			wantVolume: "SURGING",
			wantInsights: []string{
				"Trend: BULLISH",
				"Volume: SURGING",
				"Momentum: STRONG",
				"Trend Maturity: EARLY",
			},
			wantGamePlan: "Enter on the pullback, stop below support.\n\nTime Horizon: SHORT",
			wantRecommendations: []string{
				"Long bias while above support.",
				"Break above resistance",
				"Retest of the 50-day MA",
			},
			wantEmoji:     "📈",
			wantSentiment: "GREEDY",
			wantRiskLevel: "EXPLOSIVE",
		},
		{
			name:       "missing keyInsights falls back to named defaults",
			content:    `{"gamePlan": {"narrative": "Wait.", "timeHorizon": "LONG"}}`,
			wantTrend:  "NEUTRAL",
			wantVolume: "MEDIUM",
			wantInsights: []string{
				"Trend: NEUTRAL",
				"Volume: MEDIUM",
				"Momentum: STABLE",
				"Trend Maturity: MIDDLE",
			},
			wantGamePlan:        "Wait.\n\nTime Horizon: LONG",
			wantRecommendations: nil,
			wantEmoji:           "📊",
			wantSentiment:       "NEUTRAL",
			wantRiskLevel:       "MEDIUM",
		},
		{
			name:       "gamePlan missing timeHorizon uses literal fallback",
			content:    `{"gamePlan": {"narrative": "Buy the dip."}}`,
			wantTrend:  "NEUTRAL",
			wantVolume: "MEDIUM",
			wantInsights: []string{
				"Trend: NEUTRAL",
				"Volume: MEDIUM",
				"Momentum: STABLE",
				"Trend Maturity: MIDDLE",
			},
			wantGamePlan:        "No game plan available",
			wantRecommendations: nil,
			wantEmoji:           "📊",
			wantSentiment:       "NEUTRAL",
			wantRiskLevel:       "MEDIUM",
		},
		{
			name:       "wrong-typed keyInsights treated as absent",
			content:    `{"keyInsights": "not an object", "gamePlan": 42}`,
			wantTrend:  "NEUTRAL",
			wantVolume: "MEDIUM",
			wantInsights: []string{
				"Trend: NEUTRAL",
				"Volume: MEDIUM",
				"Momentum: STABLE",
				"Trend Maturity: MIDDLE",
			},
			wantGamePlan:        "No game plan available",
			wantRecommendations: nil,
			wantEmoji:           "📊",
			wantSentiment:       "NEUTRAL",
			wantRiskLevel:       "MEDIUM",
		},
		{
			name: "bearish trend in markdown fence",
			content: "```json\n" + `{
				"keyInsights": {"trend": "Strongly Bearish"}
			}` + "\n```",
			wantTrend:  "Strongly Bearish",
			wantVolume: "MEDIUM",
			wantInsights: []string{
				"Trend: Strongly Bearish",
				"Volume: MEDIUM",
				"Momentum: STABLE",
				"Trend Maturity: MIDDLE",
			},
			wantGamePlan:        "No game plan available",
			wantRecommendations: nil,
			wantEmoji:           "📉",
			wantSentiment:       "NEUTRAL",
			wantRiskLevel:       "MEDIUM",
		},
	}

	image := []byte{0xff, 0xd8, 0x01}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnalysis(tt.content, image)

			if !got.IsChart {
				t.Fatal("expected IsChart to be true")
			}
			if got.AnalysisText != tt.content {
				t.Errorf("AnalysisText = %q, want original content", got.AnalysisText)
			}
			if got.Data.Trend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", got.Data.Trend, tt.wantTrend)
			}
			if got.Data.Volume != tt.wantVolume {
				t.Errorf("volume = %q, want %q", got.Data.Volume, tt.wantVolume)
			}
			if !reflect.DeepEqual(got.Data.Insights, tt.wantInsights) {
				t.Errorf("insights = %v, want %v", got.Data.Insights, tt.wantInsights)
			}
			if got.GamePlan != tt.wantGamePlan {
				t.Errorf("gamePlan = %q, want %q", got.GamePlan, tt.wantGamePlan)
			}
			if !reflect.DeepEqual(got.Data.Recommendations, tt.wantRecommendations) {
				t.Errorf("recommendations = %v, want %v", got.Data.Recommendations, tt.wantRecommendations)
			}
			if got.Emoji != tt.wantEmoji {
				t.Errorf("emoji = %q, want %q", got.Emoji, tt.wantEmoji)
			}
			if got.Sentiment != tt.wantSentiment || got.MarketMood != tt.wantSentiment {
				t.Errorf("sentiment/mood = %q/%q, want %q", got.Sentiment, got.MarketMood, tt.wantSentiment)
			}
			if got.RiskLevel != tt.wantRiskLevel {
				t.Errorf("riskLevel = %q, want %q", got.RiskLevel, tt.wantRiskLevel)
			}
			if string(got.ImageData) != string(image) {
				t.Error("expected image bytes attached on the chart path")
			}
		})
	}
}

func TestParseAnalysisNotAChart(t *testing.T) {
	t.Run("model humor kept verbatim", func(t *testing.T) {
		got := ParseAnalysis(`{"isChart": false, "humorousComment": "nice try"}`, []byte("img"))

		if got.IsChart {
			t.Fatal("expected IsChart to be false")
		}
		if got.HumorousComment != "nice try" {
			t.Errorf("humorousComment = %q, want %q", got.HumorousComment, "nice try")
		}
		if got.ImageData != nil {
			t.Error("image bytes must not be attached on the not-a-chart path")
		}
		if got.Data.Type != "Not a chart" {
			t.Errorf("data.type = %q, want placeholder", got.Data.Type)
		}
		if len(got.Data.Insights) != 0 || len(got.Data.Recommendations) != 0 {
			t.Error("expected degenerate placeholder data")
		}
	})

	t.Run("absent humor falls back to a local joke", func(t *testing.T) {
		got := ParseAnalysis(`{"isChart": false}`, nil)

		if got.IsChart {
			t.Fatal("expected IsChart to be false")
		}
		if got.HumorousComment == "" {
			t.Fatal("expected a non-empty fallback humorous comment")
		}
		found := false
		for _, joke := range stockJokes {
			if got.HumorousComment == joke {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("humorousComment %q not drawn from the fallback set", got.HumorousComment)
		}
	})

	t.Run("empty humor string also falls back", func(t *testing.T) {
		got := ParseAnalysis(`{"isChart": false, "humorousComment": ""}`, nil)
		if got.HumorousComment == "" {
			t.Fatal("expected a non-empty fallback humorous comment")
		}
	})
}

func TestParseAnalysisInvalidJSON(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantTrend string
	}{
		{
			name:      "upward prose implies bullish",
			content:   "The price shows an upward movement over the last week.",
			wantTrend: "BULLISH",
		},
		{
			name:      "increasing prose implies bullish",
			content:   "Volume is increasing steadily.",
			wantTrend: "BULLISH",
		},
		{
			name:      "other prose defaults to bearish",
			content:   "The market looks unclear today.",
			wantTrend: "BEARISH",
		},
		{
			name:      "truncated JSON degrades, never fails",
			content:   `{"keyInsights": {"trend": "BULL`,
			wantTrend: "BEARISH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnalysis(tt.content, []byte("img"))

			if !got.IsChart {
				t.Fatal("default analysis must report IsChart true")
			}
			if got.AnalysisText != tt.content {
				t.Errorf("AnalysisText = %q, want original content preserved", got.AnalysisText)
			}
			if got.Data.Trend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", got.Data.Trend, tt.wantTrend)
			}
			if got.GamePlan == "" {
				t.Error("expected default game plan text")
			}
		})
	}
}

func TestExtractJSONFromMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected string
	}{
		{
			name:     "bare JSON passes through",
			response: `{"isChart": false}`,
			expected: `{"isChart": false}`,
		},
		{
			name:     "fenced with language identifier",
			response: "Here you go:\n```json\n{\"a\": 1}\n```\ntrailing",
			expected: `{"a": 1}`,
		},
		{
			name:     "fenced without language identifier",
			response: "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose around a JSON object",
			response: "Result: {\"a\": 1} done",
			expected: `{"a": 1}`,
		},
		{
			name:     "no JSON at all returns input",
			response: "just words",
			expected: "just words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONFromMarkdown(tt.response)
			if strings.TrimSpace(got) != tt.expected {
				t.Errorf("ExtractJSONFromMarkdown() = %q, want %q", got, tt.expected)
			}
		})
	}
}
