package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/paiflow/logger"
)

// Factory opens a backend.
type Factory func(ctx context.Context, cfg Config, log *logger.Logger) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend under a driver name. Backend packages
// call it from init.
func RegisterFactory(driver string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[driver] = f
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New opens the backend selected by cfg.Driver.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Driver]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: driver %q is not registered", cfg.Driver)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	l := log.WithComponent("store")
	l.Info("opening store", map[string]interface{}{"driver": cfg.Driver})
	return f(ctx, cfg, l)
}
