package metrics

// Token kinds for GenerationTokens.
const (
	TokensPrompt         = "prompt"
	TokensCompletion     = "completion"
	TokensPromptEstimate = "prompt_estimate"
)

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Record adds the usage to the generation token counters.
func (u TokenUsage) Record() {
	if u.IsZero() {
		return
	}
	GenerationTokens.WithLabelValues(TokensPrompt).Add(float64(u.PromptTokens))
	GenerationTokens.WithLabelValues(TokensCompletion).Add(float64(u.CompletionTokens))
}
