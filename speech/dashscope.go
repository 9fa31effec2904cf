package speech

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/httpclient"
)

const serviceName = "dashscope-tts"

// DashScope synthesizes speech through the DashScope multimodal generation
// API. Each call returns a short-lived URL to a WAV file.
type DashScope struct {
	http     *httpclient.Client
	endpoint string
}

var _ Synthesizer = (*DashScope)(nil)

// NewDashScope creates a synthesizer from cfg.
func NewDashScope(cfg Config) (*DashScope, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hc, err := httpclient.New(httpclient.Config{
		Name:    serviceName,
		Timeout: cfg.Timeout,
		Retry:   httpclient.RetryConfig(cfg.RetryAttempts),
	})
	if err != nil {
		return nil, err
	}
	return &DashScope{http: hc, endpoint: cfg.Endpoint}, nil
}

type generationRequest struct {
	Model string          `json:"model"`
	Input generationInput `json:"input"`
}

type generationInput struct {
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	LanguageType string `json:"language_type,omitempty"`
}

type generationResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		Audio struct {
			URL string `json:"url"`
		} `json:"audio"`
		FinishReason string `json:"finish_reason"`
	} `json:"output"`
}

// Synthesize requests audio for req.Text.
func (d *DashScope) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		return nil, errors.MissingField("apiKey")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.InvalidInput("text", "text to synthesize is empty")
	}

	var out generationResponse
	err := d.http.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   d.endpoint,
		Auth:   httpclient.Bearer(key),
		Body: generationRequest{
			Model: req.Model,
			Input: generationInput{Text: req.Text, Voice: req.Voice, LanguageType: req.LanguageType},
		},
	}, &out)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	if out.Output.Audio.URL == "" {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("response has no audio url")).
			WithDetail("request_id", out.RequestID)
	}
	return &SynthesisResult{AudioURL: out.Output.Audio.URL, RequestID: out.RequestID}, nil
}

// Fetch downloads generated audio.
func (d *DashScope) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := d.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: url})
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	return resp.Body, nil
}
