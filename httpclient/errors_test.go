package httpclient

import (
	"errors"
	"testing"
)

// --- Error tests ---

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeAuth, "auth"},
		{ErrCodeNotFound, "not_found"},
		{ErrCodeRateLimit, "rate_limit"},
		{ErrCodeValidation, "validation"},
		{ErrCodeServer, "server"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_Error(t *testing.T) {
	e := &Error{StatusCode: 404, Code: ErrCodeNotFound, Message: "no such model"}
	if got, want := e.Error(), "not_found (HTTP 404): no such model"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	e2 := &Error{Code: ErrCodeConnection, Message: "connection refused"}
	if got, want := e2.Error(), "connection: connection refused"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{401, ErrCodeAuth, false},
		{403, ErrCodeAuth, false},
		{404, ErrCodeNotFound, false},
		{429, ErrCodeRateLimit, true},
		{400, ErrCodeValidation, false},
		{500, ErrCodeServer, true},
		{503, ErrCodeServer, true},
	}
	for _, tt := range tests {
		e := ClassifyStatusCode(tt.status, nil)
		if e == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if e.Code != tt.code || e.Retryable != tt.retryable {
			t.Errorf("status %d: got (%s, %v), want (%s, %v)", tt.status, e.Code, e.Retryable, tt.code, tt.retryable)
		}
	}
	if ClassifyStatusCode(200, nil) != nil {
		t.Error("expected nil for 200")
	}
}

func TestClassifyStatusCode_Message(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai", `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, "Incorrect API key provided"},
		{"string error", `{"error":"bad model"}`, "bad model"},
		{"dashscope", `{"code":"InvalidApiKey","message":"Invalid API-key provided."}`, "InvalidApiKey: Invalid API-key provided."},
		{"plain text", "upstream down", "upstream down"},
		{"empty", "", "HTTP 401"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ClassifyStatusCode(401, []byte(tt.body))
			if e.Message != tt.want {
				t.Errorf("got %q, want %q", e.Message, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ClassifyStatusCode(429, nil))
	if !IsRateLimit(wrapped) || !IsRetryable(wrapped) {
		t.Error("expected wrapped 429 to be rate limited and retryable")
	}
	if !IsAuth(ClassifyStatusCode(401, nil)) {
		t.Error("expected 401 to be auth")
	}
	if !IsTimeout(NewTimeoutError(errors.New("deadline"))) {
		t.Error("expected timeout")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}
