package models

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TechnicalAnalysis is the detailed section re-parsed on demand from the raw
// analysis text. Every field tolerates the source key being absent or of the
// wrong type; formatting helpers substitute a readable fallback.
type TechnicalAnalysis struct {
	TrendPrimary   string   `json:"trend_primary,omitempty"`
	TrendStrength  string   `json:"trend_strength,omitempty"`
	Supports       []string `json:"supports,omitempty"`
	Resistances    []string `json:"resistances,omitempty"`
	RSI            string   `json:"rsi,omitempty"`
	MACD           string   `json:"macd,omitempty"`
	MovingAverages string   `json:"moving_averages,omitempty"`
	Volume         string   `json:"volume,omitempty"`
	Patterns       []string `json:"patterns,omitempty"`
}

// ParseTechnicalAnalysis re-parses the raw analysis payload into the
// technical detail sections. Missing or mistyped keys yield zero values;
// the function never fails.
func ParseTechnicalAnalysis(analysisText string) TechnicalAnalysis {
	var ta TechnicalAnalysis

	var root map[string]any
	if err := json.Unmarshal([]byte(analysisText), &root); err != nil {
		// The raw payload may still carry a markdown fence; retry on the
		// outermost brace pair before giving up.
		start := strings.Index(analysisText, "{")
		end := strings.LastIndex(analysisText, "}")
		if start == -1 || end <= start {
			return ta
		}
		if err := json.Unmarshal([]byte(analysisText[start:end+1]), &root); err != nil {
			return ta
		}
	}

	tech, _ := root["technicalAnalysis"].(map[string]any)
	if tech == nil {
		return ta
	}

	if trend, ok := tech["trendAnalysis"].(map[string]any); ok {
		ta.TrendPrimary, _ = trend["primary"].(string)
		ta.TrendStrength, _ = trend["strength"].(string)
	}

	if levels, ok := tech["supportResistance"].(map[string]any); ok {
		ta.Supports = stringSlice(levels["supports"])
		ta.Resistances = stringSlice(levels["resistances"])
	}

	if ind, ok := tech["indicators"].(map[string]any); ok {
		ta.RSI, _ = ind["rsi"].(string)
		ta.MACD, _ = ind["macd"].(string)
		ta.MovingAverages, _ = ind["movingAverages"].(string)
	}

	ta.Volume, _ = tech["volume"].(string)
	ta.Patterns = stringSlice(tech["patterns"])

	return ta
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// FormatTrend returns the trend section as display text.
func (ta TechnicalAnalysis) FormatTrend() string {
	if ta.TrendPrimary == "" && ta.TrendStrength == "" {
		return "No trend analysis available"
	}
	return "Primary Trend:\n" + ta.TrendPrimary + "\n\nTrend Strength:\n" + ta.TrendStrength
}

// FormatSupportResistance returns the level ladder as display text.
func (ta TechnicalAnalysis) FormatSupportResistance() string {
	if len(ta.Supports) == 0 && len(ta.Resistances) == 0 {
		return "No support/resistance levels available"
	}
	return "Support Levels:\n• " + strings.Join(ta.Supports, "\n• ") +
		"\n\nResistance Levels:\n• " + strings.Join(ta.Resistances, "\n• ")
}

// FormatIndicators returns the indicator section as display text.
func (ta TechnicalAnalysis) FormatIndicators() string {
	if ta.RSI == "" && ta.MACD == "" && ta.MovingAverages == "" {
		return "No indicator analysis available"
	}
	return "RSI:\n" + ta.RSI + "\n\nMACD:\n" + ta.MACD + "\n\nMoving Averages:\n" + ta.MovingAverages
}

// FormatVolume returns the volume assessment as display text.
func (ta TechnicalAnalysis) FormatVolume() string {
	if ta.Volume == "" {
		return "No volume analysis available"
	}
	return ta.Volume
}

// FormatPatterns returns the recognized patterns as display text.
func (ta TechnicalAnalysis) FormatPatterns() string {
	if len(ta.Patterns) == 0 {
		return "No patterns identified"
	}
	return "• " + strings.Join(ta.Patterns, "\n• ")
}

// PriceLevels extracts the numeric prices found in the support and
// resistance strings, ascending. Levels the model phrased without a
// number are skipped.
func (ta TechnicalAnalysis) PriceLevels() (supports, resistances []decimal.Decimal) {
	supports = extractPrices(ta.Supports)
	resistances = extractPrices(ta.Resistances)
	return supports, resistances
}

// extractPrices pulls the first decimal number out of each level string.
// Model output mixes formats ("$45.20 area", "45,200", "around 0.618"),
// so currency symbols and thousands separators are stripped first.
func extractPrices(levels []string) []decimal.Decimal {
	var prices []decimal.Decimal
	for _, level := range levels {
		cleaned := strings.NewReplacer("$", "", "€", "", ",", "").Replace(level)
		for _, token := range strings.Fields(cleaned) {
			token = strings.Trim(token, "()[]:;")
			if d, err := decimal.NewFromString(token); err == nil {
				prices = append(prices, d)
				break
			}
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })
	return prices
}
