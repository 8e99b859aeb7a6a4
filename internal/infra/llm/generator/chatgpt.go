package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yanqian/content-interlinker/internal/domain/generation"
	"github.com/yanqian/content-interlinker/internal/infra/llm/chatgpt"
	"github.com/yanqian/content-interlinker/pkg/metrics"
)

// Generation outcomes recorded in metrics.
const (
	statusOK    = "ok"
	statusError = "error"
	statusEmpty = "empty"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// ChatGPT adapts the ChatGPT client to generation.Generator.
type ChatGPT struct {
	client chatClient
	model  string
	tokens TokenCounter
	logger *slog.Logger
}

// Option customises the ChatGPT adapter.
type Option func(*ChatGPT)

// WithTokenCounter overrides the prompt token estimator.
func WithTokenCounter(counter TokenCounter) Option {
	return func(g *ChatGPT) {
		if counter != nil {
			g.tokens = counter
		}
	}
}

// NewChatGPT constructs the adapter.
func NewChatGPT(client chatClient, model string, logger *slog.Logger, opts ...Option) *ChatGPT {
	g := &ChatGPT{
		client: client,
		model:  model,
		tokens: NewTiktokenCounter(model),
		logger: logger.With("component", "generator.chatgpt"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends the request as a single chat completion.
func (g *ChatGPT) Generate(ctx context.Context, req generation.Request) (string, error) {
	messages := make([]chatgpt.Message, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatgpt.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, chatgpt.Message{Role: "user", Content: req.User})

	payload := chatgpt.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: req.Options.Temperature,
		MaxTokens:   req.Options.MaxTokens,
	}
	if req.Options.ResponseFormat == generation.FormatJSONObject {
		payload.ResponseFormat = &chatgpt.ResponseFormat{Type: string(generation.FormatJSONObject)}
	}

	estimated := g.tokens.Count(req.System) + g.tokens.Count(req.User)
	metrics.GenerationTokens.WithLabelValues(metrics.TokensPromptEstimate).Add(float64(estimated))
	resp, err := g.client.CreateChatCompletion(ctx, payload)
	if err != nil {
		metrics.GenerationRequests.WithLabelValues(statusError).Inc()
		return "", err
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	usage.Record()
	if len(resp.Choices) == 0 {
		metrics.GenerationRequests.WithLabelValues(statusEmpty).Inc()
		return "", errors.New("chatgpt returned no choices")
	}

	metrics.GenerationRequests.WithLabelValues(statusOK).Inc()
	g.logger.Debug("generation completed",
		"model", g.model,
		"estimatedPromptTokens", estimated,
		"promptTokens", usage.PromptTokens,
		"completionTokens", usage.CompletionTokens,
		"finishReason", resp.Choices[0].FinishReason,
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ generation.Generator = (*ChatGPT)(nil)
