package llm

import (
	"context"
	"testing"
)

// --- ParseJSONObject tests ---

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		key     string
		want    any
		wantErr bool
	}{
		{"plain", `{"title":"x"}`, "title", "x", false},
		{"fenced", "```json\n{\"title\":\"x\"}\n```", "title", "x", false},
		{"prose around", `Sure! {"n": 2} hope that helps`, "n", float64(2), false},
		{"trailing comma", `{"title":"x",}`, "title", "x", false},
		{"single quotes", `{'title':'x'}`, "title", "x", false},
		{"truncated", `{"title":"x"`, "title", "x", false},
		{"array", `[1,2]`, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSONObject(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got[tt.key] != tt.want {
				t.Errorf("got[%q] = %v, want %v", tt.key, got[tt.key], tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`noise {"a":1} noise`, `{"a":1}`},
		{"no json", "no json"},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Collect tests ---

func TestCollect_StopsOnError(t *testing.T) {
	ch := make(chan StreamChunk, 3)
	ch <- StreamChunk{Content: "a"}
	ch <- StreamChunk{Err: context.DeadlineExceeded}
	close(ch)
	if _, err := Collect(context.Background(), ch, nil); err != context.DeadlineExceeded {
		t.Errorf("got %v", err)
	}
}

func TestCollect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan StreamChunk)
	close(ch)
	if _, err := Collect(ctx, ch, nil); err != context.Canceled {
		t.Errorf("got %v", err)
	}
}
