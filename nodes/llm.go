package nodes

import (
	"context"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/llm"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/template"
	"github.com/kbukum/paiflow/util"
	"github.com/kbukum/paiflow/validation"
	"github.com/kbukum/paiflow/workflow"
)

// LLM runs a chat completion against an OpenAI-compatible endpoint. One
// instance serves one node type; the endpoint comes from the node's apiUrl
// or the type's configured base URL.
type LLM struct {
	nodeType string
	provider llm.Provider
	baseURL  string
	log      *logger.Logger
}

var _ executor.ProgressExecutor = (*LLM)(nil)

// NewLLM creates the executor for nodeType.
func NewLLM(nodeType string, provider llm.Provider, baseURL string, log *logger.Logger) *LLM {
	return &LLM{nodeType: nodeType, provider: provider, baseURL: baseURL, log: log.WithComponent("nodes.llm")}
}

// Execute implements executor.NodeExecutor. Streaming nodes still stream,
// without progress events.
func (n *LLM) Execute(ctx context.Context, node workflow.Node, input map[string]any) (map[string]any, error) {
	return n.run(ctx, node, input, nil)
}

// ExecuteWithProgress implements executor.ProgressExecutor. Streaming nodes
// emit a NODE_PROGRESS event with {chunk, accumulated} per fragment.
func (n *LLM) ExecuteWithProgress(ctx context.Context, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error) {
	return n.run(ctx, node, input, sink)
}

func (n *LLM) run(ctx context.Context, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error) {
	if n.provider == nil {
		return nil, errors.ServiceUnavailable("llm")
	}
	var cfg workflow.LLMConfig
	if err := workflow.DecodeConfig(node, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := validation.Validate(&cfg); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, errors.MissingField("apiKey")
	}
	if cfg.Model == "" {
		return nil, errors.MissingField("model")
	}

	ep := llm.Endpoint{Provider: node.Type, BaseURL: cfg.APIURL, APIKey: cfg.APIKey}
	if ep.BaseURL == "" {
		ep.BaseURL = n.baseURL
	}
	if ep.BaseURL == "" {
		return nil, errors.InvalidNodeConfig(node.Type, "apiUrl is required")
	}

	prompt := template.Render(cfg.Prompt, cfg.InputParams, input)
	if prompt == "" {
		prompt = inputText(input, "output", "input")
	}
	if prompt == "" {
		return nil, errors.InvalidInput("prompt", "prompt is empty")
	}

	req := llm.CompletionRequest{
		Model:        cfg.Model,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		SystemPrompt: template.Render(cfg.SystemPrompt, cfg.InputParams, input),
		Temperature:  *cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		JSONMode:     cfg.JSONMode(),
	}

	log := n.log.WithContext(ctx).WithNode(node.ID, node.Type)
	var (
		resp *llm.CompletionResponse
		err  error
	)
	if cfg.Stream() {
		resp, err = n.stream(ctx, node, ep, req, sink)
	} else {
		resp, err = n.provider.Complete(ctx, ep, req)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("completion received", logger.Fields(
		"model", cfg.Model, "stream", cfg.Stream(), "total_tokens", resp.Usage.Total(),
		"api_key", util.MaskSecret(ep.APIKey, 3),
	))

	out := make(map[string]any, len(cfg.OutputParams)+4)
	named := false
	for _, p := range cfg.OutputParams {
		if p.Name != "" {
			out[p.Name] = resp.Content
			named = true
		}
	}
	if !named {
		out["output"] = resp.Content
	}
	if req.JSONMode {
		fields, perr := llm.ParseJSONObject(resp.Content)
		if perr != nil {
			log.Warn("json response could not be parsed, keeping raw content", logger.ErrorFields("parse_json", perr))
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	out["inputTokens"] = resp.Usage.PromptTokens
	out["outputTokens"] = resp.Usage.CompletionTokens
	out["totalTokens"] = resp.Usage.Total()
	out["tokens"] = resp.Usage.Total()
	return out, nil
}

func (n *LLM) stream(ctx context.Context, node workflow.Node, ep llm.Endpoint, req llm.CompletionRequest, sink event.Sink) (*llm.CompletionResponse, error) {
	ch, err := n.provider.Stream(ctx, ep, req)
	if err != nil {
		return nil, err
	}
	var onChunk func(chunk, accumulated string)
	if sink != nil {
		onChunk = func(chunk, accumulated string) {
			event.Emit(sink, event.NodeProgressed(node.ID, node.Type, "streaming", map[string]any{
				"chunk":       chunk,
				"accumulated": accumulated,
			}))
		}
	}
	return llm.Collect(ctx, ch, onChunk)
}
