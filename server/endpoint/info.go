package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/paiflow/component"
	"github.com/kbukum/paiflow/version"
)

var startTime = time.Now()

// InfoSource supplies the dynamic parts of /info.
type InfoSource struct {
	// Components describes the running infrastructure.
	Components func() []component.Description
	// Engines lists the registered orchestration engines.
	Engines func() []string
	// NodeTypes lists the registered node handler types.
	NodeTypes func() []string
}

// Info reports build information, uptime and what the service runs.
func Info(serviceName string, src InfoSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo()
		body := gin.H{
			"service":    serviceName,
			"version":    v.Version,
			"git_commit": v.GitCommit,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"is_dirty":   v.IsDirty,
			"uptime":     time.Since(startTime).Round(time.Second).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		}
		if src.Components != nil {
			body["components"] = src.Components()
		}
		if src.Engines != nil {
			body["engines"] = src.Engines()
		}
		if src.NodeTypes != nil {
			body["node_types"] = src.NodeTypes()
		}
		c.JSON(http.StatusOK, body)
	}
}
