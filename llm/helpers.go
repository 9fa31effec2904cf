package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Collect drains a stream, calling onChunk with each fragment and the text
// so far, and returns the assembled response.
func Collect(ctx context.Context, ch <-chan StreamChunk, onChunk func(chunk, accumulated string)) (*CompletionResponse, error) {
	var sb strings.Builder
	out := &CompletionResponse{}
	for chunk := range ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		if chunk.Usage != nil {
			out.Usage = *chunk.Usage
		}
		if chunk.Content != "" {
			sb.WriteString(chunk.Content)
			if onChunk != nil {
				onChunk(chunk.Content, sb.String())
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out.Content = sb.String()
	return out, nil
}

// ParseJSONObject extracts a JSON object from model output, tolerating
// markdown fences, surrounding prose and the usual syntax slips.
func ParseJSONObject(content string) (map[string]any, error) {
	text := extractJSON(content)
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj, nil
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("llm: repair json response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, fmt.Errorf("llm: response is not a json object: %w", err)
	}
	return obj, nil
}

// extractJSON pulls a JSON object from LLM output that may contain markdown fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	if start >= 0 {
		// Truncated output; let the repair pass close it.
		return s[start:]
	}
	return s
}
