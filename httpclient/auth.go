package httpclient

import (
	"net/http"
	"strings"
)

// Auth decorates an outgoing request's headers with credentials. A nil
// Auth sends none.
type Auth func(h http.Header)

// Bearer sends "Authorization: Bearer <token>", the scheme used by every
// OpenAI-compatible provider and DashScope. Surrounding whitespace, common
// in keys pasted into the editor, is trimmed. An empty token sends nothing,
// so the provider answers 401 instead of rejecting a malformed header.
func Bearer(token string) Auth {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return func(h http.Header) { h.Set("Authorization", "Bearer "+token) }
}

// HeaderKey sends key in the named header.
func HeaderKey(name, key string) Auth {
	return func(h http.Header) { h.Set(name, key) }
}

func (a Auth) apply(req *http.Request) {
	if a != nil {
		a(req.Header)
	}
}
