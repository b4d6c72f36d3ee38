package llm

import "context"

// Client abstracts the multimodal LLM provider used by the analyzer.
// Implementations must be safe for concurrent use.
type Client interface {
	// AnalyzeChart submits raw image bytes for chart analysis and returns
	// the model's message content, a string expected (but not guaranteed)
	// to be a JSON document. The language is the full language name the
	// response should be written in (e.g. "Spanish").
	AnalyzeChart(ctx context.Context, imageData []byte, language string) (string, error)
	// SourceName returns a short provider label to persist with analyses
	// (e.g. "ChatGPT", "Stub").
	SourceName() string
}
