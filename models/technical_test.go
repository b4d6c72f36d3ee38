package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const technicalPayload = `{
	"technicalAnalysis": {
		"trendAnalysis": {
			"primary": "Uptrend on the daily timeframe",
			"strength": "Strong, supported by higher lows"
		},
		"supportResistance": {
			"supports": ["$45.20 area", "Psychological level around 44,000"],
			"resistances": ["$48.75 prior high"]
		},
		"indicators": {
			"rsi": "62, approaching overbought",
			"macd": "Bullish crossover confirmed",
			"movingAverages": "Price above the 50-day and 200-day"
		},
		"volume": "Above average on up days",
		"patterns": ["Ascending triangle", "Bull flag"]
	}
}`

func TestParseTechnicalAnalysis(t *testing.T) {
	ta := ParseTechnicalAnalysis(technicalPayload)

	if ta.TrendPrimary != "Uptrend on the daily timeframe" {
		t.Errorf("trend primary = %q", ta.TrendPrimary)
	}
	if ta.TrendStrength != "Strong, supported by higher lows" {
		t.Errorf("trend strength = %q", ta.TrendStrength)
	}
	if !reflect.DeepEqual(ta.Resistances, []string{"$48.75 prior high"}) {
		t.Errorf("resistances = %v", ta.Resistances)
	}
	if ta.RSI != "62, approaching overbought" || ta.MACD != "Bullish crossover confirmed" {
		t.Errorf("indicators = %q / %q", ta.RSI, ta.MACD)
	}
	if ta.Volume != "Above average on up days" {
		t.Errorf("volume = %q", ta.Volume)
	}
	if !reflect.DeepEqual(ta.Patterns, []string{"Ascending triangle", "Bull flag"}) {
		t.Errorf("patterns = %v", ta.Patterns)
	}
}

func TestParseTechnicalAnalysisFencedPayload(t *testing.T) {
	fenced := "```json\n" + technicalPayload + "\n```"
	ta := ParseTechnicalAnalysis(fenced)
	if ta.TrendPrimary != "Uptrend on the daily timeframe" {
		t.Errorf("fenced payload not parsed, trend primary = %q", ta.TrendPrimary)
	}
}

func TestParseTechnicalAnalysisDegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not JSON", "the chart looks fine"},
		{"no technical section", `{"keyInsights": {"trend": "BULLISH"}}`},
		{"mistyped section", `{"technicalAnalysis": "detailed"}`},
		{"mistyped subsections", `{"technicalAnalysis": {"trendAnalysis": [1,2], "patterns": "none"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := ParseTechnicalAnalysis(tt.text)
			if ta.FormatTrend() != "No trend analysis available" {
				t.Errorf("FormatTrend() = %q", ta.FormatTrend())
			}
			if ta.FormatSupportResistance() != "No support/resistance levels available" {
				t.Errorf("FormatSupportResistance() = %q", ta.FormatSupportResistance())
			}
			if ta.FormatIndicators() != "No indicator analysis available" {
				t.Errorf("FormatIndicators() = %q", ta.FormatIndicators())
			}
			if ta.FormatVolume() != "No volume analysis available" {
				t.Errorf("FormatVolume() = %q", ta.FormatVolume())
			}
			if ta.FormatPatterns() != "No patterns identified" {
				t.Errorf("FormatPatterns() = %q", ta.FormatPatterns())
			}
		})
	}
}

func TestFormatSupportResistance(t *testing.T) {
	ta := ParseTechnicalAnalysis(technicalPayload)
	got := ta.FormatSupportResistance()
	if !strings.Contains(got, "Support Levels:\n• $45.20 area") {
		t.Errorf("missing support section in %q", got)
	}
	if !strings.Contains(got, "Resistance Levels:\n• $48.75 prior high") {
		t.Errorf("missing resistance section in %q", got)
	}
}

func TestPriceLevels(t *testing.T) {
	ta := TechnicalAnalysis{
		Supports:    []string{"Psychological level around 44,000", "$45.20 area", "no number here"},
		Resistances: []string{"$48.75 prior high"},
	}

	supports, resistances := ta.PriceLevels()

	wantSupports := []string{"45.2", "44000"}
	if len(supports) != len(wantSupports) {
		t.Fatalf("supports = %v, want %d levels", supports, len(wantSupports))
	}
	for i, want := range wantSupports {
		if !supports[i].Equal(decimal.RequireFromString(want)) {
			t.Errorf("supports[%d] = %s, want %s", i, supports[i], want)
		}
	}

	if len(resistances) != 1 || !resistances[0].Equal(decimal.RequireFromString("48.75")) {
		t.Errorf("resistances = %v, want [48.75]", resistances)
	}
}
