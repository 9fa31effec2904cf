package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/paiflow/component"
)

// RouteInfo is one HTTP route in the summary.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary collects what a process runs and prints it once startup is
// done.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer

	routes    []RouteInfo
	engines   []string
	nodeTypes []string
}

// NewSummary creates a summary printing to stderr.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stderr}
}

// SetOutput redirects the printed summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

// TrackEngines records the orchestration engines.
func (s *Summary) TrackEngines(names ...string) { s.engines = append(s.engines, names...) }

// TrackNodeTypes records the registered node handler types.
func (s *Summary) TrackNodeTypes(types ...string) { s.nodeTypes = append(s.nodeTypes, types...) }

// Display prints infrastructure from the registry's descriptions, the
// workflow runtime, routes and live health.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs\n\n", s.serviceName, version, s.startupDuration.Seconds())

	var descriptions []component.Description
	if registry != nil {
		descriptions = registry.Describe()
	}
	if len(descriptions) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, d := range descriptions {
			details := d.Details
			if d.Port > 0 && !strings.Contains(details, fmt.Sprintf(":%d", d.Port)) {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", branch(i, len(descriptions)), d.Name, d.Type, details)
		}
		fmt.Fprintln(w)
	}

	if len(s.engines) > 0 || len(s.nodeTypes) > 0 {
		fmt.Fprintf(w, "⚙️  Workflow runtime\n")
		fmt.Fprintf(w, "   ├── engines: %s\n", strings.Join(s.engines, ", "))
		fmt.Fprintf(w, "   └── node types: %s\n\n", strings.Join(s.nodeTypes, ", "))
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
		fmt.Fprintln(w)
	}

	if registry != nil {
		results := registry.HealthAll(ctx)
		if len(results) > 0 {
			fmt.Fprintf(w, "🏥 Health Check\n")
			healthy := 0
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				if h.Status == component.StatusHealthy {
					healthy++
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(results)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
			}
			if healthy == len(results) {
				fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(results))
			} else {
				fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(results))
			}
		}
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
