package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GraphAnalysis is the normalized result of a single chart analysis.
type GraphAnalysis struct {
	AnalysisText    string    `json:"analysis_text"`
	Data            GraphData `json:"data"`
	IsChart         bool      `json:"is_chart"`
	HumorousComment string    `json:"humorous_comment,omitempty"`
	GamePlan        string    `json:"game_plan,omitempty"`
	Emoji           string    `json:"emoji,omitempty"`
	Sentiment       string    `json:"sentiment,omitempty"`
	MarketMood      string    `json:"market_mood,omitempty"`
	RiskLevel       string    `json:"risk_level,omitempty"`
	ImageData       []byte    `json:"image_data,omitempty"`
}

// GraphData holds the chart-level fields rendered by clients.
// Trend, Insights and Recommendations are always populated on the chart
// path so downstream rendering never has to nil-check them.
type GraphData struct {
	Type            string   `json:"type"`
	XAxis           string   `json:"x_axis"`
	YAxis           string   `json:"y_axis"`
	Trend           string   `json:"trend"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	Volume          string   `json:"volume,omitempty"`
}

// defaultGamePlan is returned when the model's reply could not be parsed
// as JSON at all and no structured game plan is available.
const defaultGamePlan = `TRADING STRATEGY:

Overview:
Market analysis in progress. Please review the chart carefully.

Entry Points:
• Wait for clear confirmation signals
• Look for high-probability setups

Risk Management:
• Use appropriate position sizing
• Set clear stop losses
• Follow your trading plan

Target Levels:
• Set realistic profit targets
• Consider market conditions

Time Horizon:
• Adapt to market conditions`

// NotAChart builds the degenerate analysis used when the model decided the
// image is not a financial chart. The humorous comment is the only payload.
func NotAChart(humor string) GraphAnalysis {
	return GraphAnalysis{
		AnalysisText: humor,
		Data: GraphData{
			Type:            "Not a chart",
			Insights:        []string{},
			Recommendations: []string{},
		},
		IsChart:         false,
		HumorousComment: humor,
	}
}

// DefaultAnalysis builds a chart analysis directly from an unparseable
// content string. The raw text is preserved for later re-parsing and the
// trend is derived from a substring scan of the text.
func DefaultAnalysis(content string) GraphAnalysis {
	lower := strings.ToLower(content)
	trend := "BEARISH"
	if strings.Contains(lower, "upward") || strings.Contains(lower, "increasing") {
		trend = "BULLISH"
	}
	sentiment := "BEARISH"
	if strings.Contains(lower, "bullish") {
		sentiment = "BULLISH"
	}
	return GraphAnalysis{
		AnalysisText: content,
		Data: GraphData{
			Type:            "Chart",
			XAxis:           "Time",
			YAxis:           "Value",
			Trend:           trend,
			Insights:        []string{content},
			Recommendations: []string{"Analyze the market carefully"},
		},
		IsChart:    true,
		GamePlan:   defaultGamePlan,
		Emoji:      "📊",
		Sentiment:  sentiment,
		MarketMood: sentiment,
		RiskLevel:  "MEDIUM",
	}
}

// AnalysisRecord is a persisted analysis together with the source image.
// Records are created only for accepted analyses; the ID is generated
// locally and never changes. Source names the LLM provider that produced
// the analysis.
type AnalysisRecord struct {
	ID        string        `json:"id"`
	ImageData []byte        `json:"image_data,omitempty"`
	Analysis  GraphAnalysis `json:"analysis"`
	Source    string        `json:"source,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewAnalysisRecord creates a record for an accepted analysis. The creation
// time is assigned here, not taken from the API.
func NewAnalysisRecord(analysis GraphAnalysis, imageData []byte) *AnalysisRecord {
	return &AnalysisRecord{
		ID:        uuid.NewString(),
		ImageData: imageData,
		Analysis:  analysis,
		CreatedAt: time.Now().UTC(),
	}
}
