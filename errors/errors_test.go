package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

// --- AppError tests ---

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeTimeout, "slow", http.StatusGatewayTimeout)
	if err.Code != ErrCodeTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeTimeout, err.Code)
	}
	if !err.Retryable {
		t.Error("expected timeout to be retryable")
	}
	if err.HTTPStatus != http.StatusGatewayTimeout {
		t.Errorf("expected status 504, got %d", err.HTTPStatus)
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)
	want := "INTERNAL_ERROR: An unexpected error occurred. Please try again or contact support. (cause: boom)"
	if err.Error() != want {
		t.Errorf("unexpected error string %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_WithDetails_Merges(t *testing.T) {
	err := Validation("bad").WithDetail("a", 1).WithDetail("b", 2)
	if len(err.Details) != 2 {
		t.Errorf("expected 2 details, got %d", len(err.Details))
	}
}

// --- Engine error tests ---

func TestNodeFailed_Message(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{"plain cause", stderrors.New("timeout"), "node n1 execution failed: timeout"},
		{"app error cause", UnsupportedNodeType("xyz"), "node n1 execution failed: unsupported node type: xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NodeFailed("n1", tt.cause)
			if err.Message != tt.want {
				t.Errorf("got %q, want %q", err.Message, tt.want)
			}
			if Message(err) != tt.want {
				t.Errorf("Message() got %q", Message(err))
			}
			if err.Code != ErrCodeNodeFailed {
				t.Errorf("unexpected code %s", err.Code)
			}
		})
	}
}

func TestGraphErrors_Codes(t *testing.T) {
	if !IsGraphError(CycleDetected("b").Code) {
		t.Error("cycle should be a graph error")
	}
	if !IsGraphError(UnknownNodeReference("e1", "zz").Code) {
		t.Error("unknown reference should be a graph error")
	}
	if IsGraphError(UnsupportedNodeType("x").Code) {
		t.Error("unsupported type is not a graph error")
	}
}

func TestExternalServiceError_IncludesCause(t *testing.T) {
	err := ExternalServiceError("openai", stderrors.New("status 500"))
	if err.Message != "openai request failed: status 500" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if !err.Retryable {
		t.Error("external service errors are retryable")
	}
}

// --- Response tests ---

func TestAsAppError_Wrapped(t *testing.T) {
	base := NotFound("workflow", "w1")
	wrapped := stderrors.Join(stderrors.New("ctx"), base)
	got, ok := AsAppError(wrapped)
	if !ok || got != base {
		t.Fatal("expected to unwrap AppError")
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error is not an AppError")
	}
}

func TestFrom_WrapsPlainError(t *testing.T) {
	if From(nil) != nil {
		t.Error("nil in, nil out")
	}
	got := From(stderrors.New("x"))
	if got.Code != ErrCodeInternal {
		t.Errorf("expected internal, got %s", got.Code)
	}
	resp := got.Response("req-1")
	if resp.Error.Code != ErrCodeInternal || resp.Error.RequestID != "req-1" {
		t.Errorf("unexpected response %+v", resp.Error)
	}
	if resp.Error.Message == "x" {
		t.Error("the cause must not reach the client")
	}
}
