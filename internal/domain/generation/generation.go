// Package generation defines the contract every generation-backed operation
// uses to talk to the text generation backend.
package generation

import "context"

// ResponseFormat hints the backend about the shape of its output.
type ResponseFormat string

const (
	// FormatText requests free text.
	FormatText ResponseFormat = "text"
	// FormatJSONObject requests a single JSON object.
	FormatJSONObject ResponseFormat = "json_object"
)

// Options tune a single generation call.
type Options struct {
	Temperature    float32
	MaxTokens      int
	ResponseFormat ResponseFormat
}

// Request is one prompt for the backend.
type Request struct {
	System  string
	User    string
	Options Options
}

// Generator returns the raw text produced for a request. The text is not
// guaranteed to be well formed in any way.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
