package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ParseJSON decodes a workflow definition. A bare graph document
// ({"nodes": ..., "edges": ...}) is accepted as well.
func ParseJSON(data []byte) (*Workflow, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("workflow: parsing json: %w", err)
	}
	var w Workflow
	if _, bare := probe["nodes"]; bare {
		if err := json.Unmarshal(data, &w.Graph); err != nil {
			return nil, fmt.Errorf("workflow: parsing json graph: %w", err)
		}
		return &w, nil
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("workflow: parsing json: %w", err)
	}
	return &w, nil
}

// ParseYAML decodes a workflow definition written in YAML. The shape is the
// same as the JSON form, including the bare graph variant.
func ParseYAML(data []byte) (*Workflow, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("workflow: parsing yaml: %w", err)
	}
	var w Workflow
	if _, bare := probe["nodes"]; bare {
		if err := yaml.Unmarshal(data, &w.Graph); err != nil {
			return nil, fmt.Errorf("workflow: parsing yaml graph: %w", err)
		}
		return &w, nil
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("workflow: parsing yaml: %w", err)
	}
	return &w, nil
}

// LoadFile reads a workflow from disk, choosing the decoder by extension.
// Files without a name get the file's base name.
func LoadFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w *Workflow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		w, err = ParseYAML(data)
	default:
		w, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if w.Name == "" {
		w.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return w, nil
}
