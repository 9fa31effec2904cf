package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry(attempts int) Config {
	retry := RetryConfig(attempts)
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = time.Millisecond
	return Config{Retry: retry}
}

// --- Do tests ---

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/models/qwen" {
			t.Errorf("expected /models/qwen, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"qwen"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := c.Do(context.Background(), Request{Path: "/models/qwen"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(resp.Body), "qwen") {
		t.Errorf("unexpected response %d %s", resp.StatusCode, resp.Body)
	}
}

func TestClient_DoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if got := r.Header.Get("X-Trace"); got != "on" {
			t.Errorf("expected default header, got %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": body["name"]})
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Auth: Bearer("sk-test"), Headers: map[string]string{"X-Trace": "on"}})
	var out struct {
		Echo string `json:"echo"`
	}
	err := c.DoJSON(context.Background(), Request{Method: http.MethodPost, Path: "echo", Body: map[string]string{"name": "paiflow"}}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Echo != "paiflow" {
		t.Errorf("got %q, want paiflow", out.Echo)
	}
}

func TestClient_AbsoluteURLOverridesBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: "http://invalid.example"})
	resp, err := c.Do(context.Background(), Request{Path: srv.URL + "/audio.wav"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "RIFF" {
		t.Errorf("got %q", resp.Body)
	}
}

func TestClient_Do_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Path: "/"})
	if !IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Errorf("expected response alongside error")
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Errorf("error should carry provider message, got %v", err)
	}
}

// --- Retry tests ---

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := fastRetry(3)
	cfg.BaseURL = srv.URL
	c, _ := New(cfg)
	if _, err := c.Do(context.Background(), Request{Path: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := fastRetry(3)
	cfg.BaseURL = srv.URL
	c, _ := New(cfg)
	if _, err := c.Do(context.Background(), Request{Path: "/"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

// --- Stream tests ---

func TestClient_DoStream_SSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("expected SSE accept header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: one\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	stream, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/chat", Body: map[string]bool{"stream": true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()
	if stream.SSE == nil {
		t.Fatal("expected SSE reader")
	}
	ev, err := stream.SSE.Next()
	if err != nil || ev.Data != "one" {
		t.Fatalf("got %+v, %v", ev, err)
	}
	ev, _ = stream.SSE.Next()
	if !ev.Done() {
		t.Errorf("expected done marker, got %q", ev.Data)
	}
}

func TestClient_DoStream_RawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, "{}\n")
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	stream, err := c.DoStream(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()
	if stream.Body == nil || stream.SSE != nil {
		t.Error("expected raw body stream")
	}
}

func TestClient_DoStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	if _, err := c.DoStream(context.Background(), Request{Path: "/"}); !IsRateLimit(err) {
		t.Errorf("expected rate limit error, got %v", err)
	}
}
