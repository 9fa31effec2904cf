package executor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/paiflow/errors"
)

// Registry maps node type keys to executors.
type Registry struct {
	mu         sync.RWMutex
	executors  map[string]NodeExecutor
	middleware []Middleware
}

// NewRegistry creates an empty Registry. Middleware wraps every resolved
// executor, first entry outermost.
func NewRegistry(mw ...Middleware) *Registry {
	return &Registry{executors: make(map[string]NodeExecutor), middleware: mw}
}

// Register adds exec under nodeType. Registering a type twice is an error.
func (r *Registry) Register(nodeType string, exec NodeExecutor) error {
	if nodeType == "" || exec == nil {
		return errors.InvalidInput("nodeType", "type key and executor are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[nodeType]; exists {
		return fmt.Errorf("executor: node type %q already registered", nodeType)
	}
	r.executors[nodeType] = exec
	return nil
}

// MustRegister is Register that panics on error, for wiring at startup.
func (r *Registry) MustRegister(nodeType string, exec NodeExecutor) {
	if err := r.Register(nodeType, exec); err != nil {
		panic(err)
	}
}

// Resolve returns the executor for nodeType wrapped in the registry
// middleware, or an UNSUPPORTED_NODE_TYPE error.
func (r *Registry) Resolve(nodeType string) (NodeExecutor, error) {
	r.mu.RLock()
	exec, ok := r.executors[nodeType]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.UnsupportedNodeType(nodeType)
	}
	return Chain(r.middleware...)(exec), nil
}

// Has reports whether nodeType is registered.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[nodeType]
	return ok
}

// Types returns the registered type keys, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
