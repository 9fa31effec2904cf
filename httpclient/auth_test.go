package httpclient

import (
	"net/http"
	"testing"
)

func TestAuth_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   Auth
		header string
		want   string
	}{
		{"bearer", Bearer("tok"), "Authorization", "Bearer tok"},
		{"bearer trims pasted whitespace", Bearer("  tok\n"), "Authorization", "Bearer tok"},
		{"empty bearer sends nothing", Bearer(" "), "Authorization", ""},
		{"custom header", HeaderKey("X-DashScope-Key", "k"), "X-DashScope-Key", "k"},
		{"nil", nil, "Authorization", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			tt.auth.apply(req)
			if got := req.Header.Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
