package llm

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const chatCompletionsPath = "/chat/completions"

// chatRequest is the OpenAI chat completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	StreamOptions  *streamOptions  `json:"stream_options,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

type chatChoice struct {
	Message      Message   `json:"message"`
	Delta        chatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

type chatDelta struct {
	Content string `json:"content"`
}

func buildChatRequest(req CompletionRequest, stream bool) chatRequest {
	msgs := make([]Message, 0, len(req.Messages)+1)
	if s := strings.TrimSpace(req.SystemPrompt); s != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: s})
	}
	msgs = append(msgs, req.Messages...)

	body := chatRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if stream {
		body.Stream = true
		body.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return body
}

func parseChatResponse(body []byte) (*CompletionResponse, error) {
	var raw chatResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}
	out := &CompletionResponse{Content: raw.Choices[0].Message.Content, Model: raw.Model}
	if raw.Usage != nil {
		out.Usage = *raw.Usage
	}
	return out, nil
}

// parseStreamChunk decodes one SSE data payload. Chunks without choices
// carry only usage.
func parseStreamChunk(data string) (StreamChunk, error) {
	var raw chatResponse
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return StreamChunk{}, fmt.Errorf("decode stream chunk: %w", err)
	}
	var chunk StreamChunk
	if len(raw.Choices) > 0 {
		chunk.Content = raw.Choices[0].Delta.Content
	}
	chunk.Usage = raw.Usage
	return chunk, nil
}

// ChatURL resolves the chat completions URL for a base. A full
// ".../chat/completions" URL is used as is, a bare host gets
// "/v1/chat/completions", anything else gets "/chat/completions".
func ChatURL(base string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", fmt.Errorf("base url is empty")
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid base url %q", base)
	}
	switch {
	case strings.HasSuffix(u.Path, chatCompletionsPath):
		return base, nil
	case u.Path == "":
		return base + "/v1" + chatCompletionsPath, nil
	default:
		return base + chatCompletionsPath, nil
	}
}
