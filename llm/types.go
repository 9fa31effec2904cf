package llm

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Endpoint identifies the provider account a request goes to. Nodes carry
// their own URL and key, so it travels with each call.
type Endpoint struct {
	// Provider names the node type ("openai", "qwen") for errors and logs.
	Provider string
	// BaseURL is either an API root ("https://api.openai.com/v1") or the
	// full chat completions URL.
	BaseURL string
	APIKey  string
}

// CompletionRequest is the provider-independent chat completion input.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// SystemPrompt is prepended as a system message.
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Temperature  float64 `json:"temperature"`
	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
	// JSONMode asks the provider for a JSON object response.
	JSONMode bool `json:"json_mode,omitempty"`
}

// CompletionResponse is the provider-independent chat completion output.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// StreamChunk is a single piece of a streamed response.
type StreamChunk struct {
	Content string `json:"content"`
	// Done marks the final chunk.
	Done bool `json:"done"`
	// Usage is set on the chunk that carries the provider's token counts.
	Usage *Usage `json:"usage,omitempty"`
	Err   error  `json:"-"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Total returns TotalTokens, or the sum of both sides when the provider
// omitted it.
func (u Usage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}
