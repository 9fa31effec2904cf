package nodes

import (
	"context"
	"strings"

	"github.com/kbukum/paiflow/template"
	"github.com/kbukum/paiflow/workflow"
)

// Input passes the raw run input on as {"input", "user_input"}.
type Input struct{}

// Execute implements executor.NodeExecutor.
func (Input) Execute(_ context.Context, _ workflow.Node, input map[string]any) (map[string]any, error) {
	v := input["input"]
	return map[string]any{"input": v, "user_input": v}, nil
}

// Output renders the node's responseContent template. Without one it
// forwards the upstream "output", falling back to "input".
type Output struct{}

// Execute implements executor.NodeExecutor.
func (Output) Execute(_ context.Context, node workflow.Node, input map[string]any) (map[string]any, error) {
	var cfg workflow.OutputConfig
	if err := workflow.DecodeConfig(node, &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.ResponseContent) == "" {
		v, ok := input["output"]
		if !ok || v == nil {
			v = input["input"]
		}
		return map[string]any{"output": v}, nil
	}
	return map[string]any{"output": template.Render(cfg.ResponseContent, cfg.OutputParams, input)}, nil
}

// inputText picks the text a node should work on from an upstream output.
func inputText(input map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(template.String(input[k])); s != "" {
			return s
		}
	}
	return ""
}
