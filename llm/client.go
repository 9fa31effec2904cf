package llm

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/httpclient"
	"github.com/kbukum/paiflow/httpclient/sse"
)

// Provider is the chat completion surface the LLM nodes depend on.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, ep Endpoint, req CompletionRequest) (*CompletionResponse, error)
	// Stream sends a completion request and returns a channel of chunks that
	// is closed when the stream ends.
	Stream(ctx context.Context, ep Endpoint, req CompletionRequest) (<-chan StreamChunk, error)
}

// Client talks to any OpenAI-compatible chat completions endpoint. One
// Client serves every node; the endpoint and key come with each call.
type Client struct {
	http *httpclient.Client
}

var _ Provider = (*Client)(nil)

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hc, err := httpclient.New(httpclient.Config{
		Name:    "llm",
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
		Retry:   httpclient.RetryConfig(cfg.RetryAttempts),
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// Complete sends a non-streaming completion request.
func (c *Client) Complete(ctx context.Context, ep Endpoint, req CompletionRequest) (*CompletionResponse, error) {
	httpReq, err := newRequest(ep, req, false)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return nil, providerError(ep, err)
	}
	out, err := parseChatResponse(resp.Body)
	if err != nil {
		return nil, providerError(ep, err)
	}
	return out, nil
}

// Stream sends a streaming completion request. The last chunk has Done set
// and carries the usage when the provider reported it.
func (c *Client) Stream(ctx context.Context, ep Endpoint, req CompletionRequest) (<-chan StreamChunk, error) {
	httpReq, err := newRequest(ep, req, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.DoStream(ctx, httpReq)
	if err != nil {
		return nil, providerError(ep, err)
	}
	if resp.SSE == nil {
		// Some gateways ignore "stream" and answer with a plain completion.
		return completeFromBody(ep, resp), nil
	}

	ch := make(chan StreamChunk, 16)
	go readStream(ctx, ep, resp.SSE, ch)
	return ch, nil
}

func newRequest(ep Endpoint, req CompletionRequest, stream bool) (httpclient.Request, error) {
	if strings.TrimSpace(ep.APIKey) == "" {
		return httpclient.Request{}, errors.MissingField("apiKey")
	}
	if strings.TrimSpace(req.Model) == "" {
		return httpclient.Request{}, errors.MissingField("model")
	}
	url, err := ChatURL(ep.BaseURL)
	if err != nil {
		return httpclient.Request{}, errors.InvalidInput("apiUrl", err.Error())
	}
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   url,
		Body:   buildChatRequest(req, stream),
		Auth:   httpclient.Bearer(ep.APIKey),
	}, nil
}

func readStream(ctx context.Context, ep Endpoint, reader sse.Reader, ch chan<- StreamChunk) {
	defer close(ch)
	defer func() { _ = reader.Close() }()

	send := func(chunk StreamChunk) bool {
		select {
		case ch <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var usage *Usage
	for {
		ev, err := reader.Next()
		if err == io.EOF || (err == nil && ev.Done()) {
			send(StreamChunk{Done: true, Usage: usage})
			return
		}
		if err != nil {
			send(StreamChunk{Err: providerError(ep, err)})
			return
		}

		chunk, err := parseStreamChunk(ev.Data)
		if err != nil {
			send(StreamChunk{Err: providerError(ep, err)})
			return
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		if chunk.Content == "" {
			continue
		}
		if !send(StreamChunk{Content: chunk.Content}) {
			return
		}
	}
}

func completeFromBody(ep Endpoint, resp *httpclient.Stream) <-chan StreamChunk {
	ch := make(chan StreamChunk, 2)
	defer close(ch)
	defer func() { _ = resp.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ch <- StreamChunk{Err: providerError(ep, err)}
		return ch
	}
	out, err := parseChatResponse(body)
	if err != nil {
		ch <- StreamChunk{Err: providerError(ep, err)}
		return ch
	}
	ch <- StreamChunk{Content: out.Content}
	ch <- StreamChunk{Done: true, Usage: &out.Usage}
	return ch
}

func providerError(ep Endpoint, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	name := ep.Provider
	if name == "" {
		name = "llm"
	}
	if httpclient.IsTimeout(err) {
		return errors.Timeout(name + " request").WithCause(err)
	}
	return errors.ExternalServiceError(name, err)
}
