package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/sse"
	"github.com/kbukum/paiflow/storage"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"
)

// ExecuteRequest is the body of POST /execute.
type ExecuteRequest struct {
	InputData string `json:"inputData" validate:"required"`
}

// ExecutionResponse is what a synchronous run returns.
type ExecutionResponse struct {
	ExecutionID  string                `json:"executionId"`
	Status       workflow.Status       `json:"status"`
	NodeResults  []workflow.NodeResult `json:"nodeResults"`
	OutputData   json.RawMessage       `json:"outputData,omitempty"`
	ErrorMessage string                `json:"errorMessage,omitempty"`
	Duration     int64                 `json:"duration"`
}

// NewExecutionResponse converts a record.
func NewExecutionResponse(rec *workflow.ExecutionRecord) ExecutionResponse {
	results := rec.NodeResults
	if results == nil {
		results = []workflow.NodeResult{}
	}
	return ExecutionResponse{
		ExecutionID:  rec.ID,
		Status:       rec.Status,
		NodeResults:  results,
		OutputData:   rec.Output,
		ErrorMessage: rec.ErrorMessage,
		Duration:     rec.Duration,
	}
}

func (a *API) execute(c *gin.Context) {
	ctx := c.Request.Context()
	wf, err := a.store.GetWorkflow(ctx, c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	var req ExecuteRequest
	if err := bind(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	release, err := a.acquire(ctx)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer release()

	sink, drain := a.runSink(wf.ID)
	rec, err := a.runner.Run(ctx, wf, req.InputData, sink)
	drain()
	if rec == nil {
		RespondWithError(c, err)
		return
	}
	if err != nil {
		// The run finished but its record could not be stored.
		logger.WithContext(ctx).WithError(err).Warn("execution not persisted", map[string]interface{}{
			logger.FieldExecutionID: rec.ID,
		})
	}
	RespondOK(c, NewExecutionResponse(rec))
}

// executeStream runs the workflow and streams its events as SSE, named by
// event kind. The stream ends after WORKFLOW_COMPLETE.
func (a *API) executeStream(c *gin.Context) {
	ctx := c.Request.Context()
	input, ok := c.GetQuery("inputData")
	if !ok || input == "" {
		RespondWithError(c, errors.MissingField("inputData"))
		return
	}
	wf, err := a.store.GetWorkflow(ctx, c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	release, err := a.acquire(ctx)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer release()

	sw, err := sse.NewWriter(c.Writer)
	if err != nil {
		RespondWithError(c, errors.Internal(err))
		return
	}

	ch := event.NewChannel(a.cfg.EventBuffer, a.cfg.EventTimeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ch.Close()
		sink, drain := a.runSink(wf.ID)
		defer drain()
		_, runErr := a.runner.Run(ctx, wf, input, event.Multi(ch, sink))
		if runErr != nil {
			a.log.WithError(runErr).Warn("streamed execution ended with error", map[string]interface{}{
				logger.FieldWorkflowID: wf.ID,
			})
		}
	}()

	ticker := time.NewTicker(a.cfg.KeepAlive)
	defer ticker.Stop()

	completed := false
	for {
		select {
		case e, open := <-ch.C():
			if !open {
				<-done
				if !completed {
					// The run failed before emitting a completion, e.g. a
					// store error ahead of the first node.
					failed := event.WorkflowCompleted(string(workflow.StatusFailed), nil, 0)
					failed.Message = "execution ended without completion"
					_ = sw.JSON(string(failed.Type), failed)
				}
				return
			}
			if e.Type.Terminal() {
				completed = true
			}
			// Write errors mean the client is gone. Draining continues so
			// the run is never blocked on the channel.
			_ = sw.JSON(string(e.Type), e)
		case <-ticker.C:
			_ = sw.Comment(sse.EventTypeKeepAlive)
		}
	}
}

// subscribe attaches an SSE subscriber to every run of a workflow.
func (a *API) subscribe(c *gin.Context) {
	id := c.Param("id")
	if a.hub == nil {
		RespondWithError(c, errors.ServiceUnavailable("sse"))
		return
	}
	if _, err := a.store.GetWorkflow(c.Request.Context(), id); err != nil {
		RespondWithError(c, err)
		return
	}
	client := c.Query("clientId")
	if client == "" {
		client = uuid.NewString()
	}
	sse.ServeSSE(a.hub, c.Writer, c.Request, sse.WorkflowClientID(id, client), a.cfg.KeepAlive,
		sse.WithMetadata("workflowId", id))
}

func (a *API) listExecutions(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			RespondWithError(c, errors.InvalidInput("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}
	if _, err := a.store.GetWorkflow(ctx, id); err != nil {
		RespondWithError(c, err)
		return
	}
	records, err := a.store.ListRecords(ctx, id, limit)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOKWithMeta(c, records, &Meta{Total: len(records), Limit: store.Limit(limit)})
}

func (a *API) getExecution(c *gin.Context) {
	rec, err := a.store.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, rec)
}

// serveFile streams a stored artifact such as a synthesized WAV file.
func (a *API) serveFile(c *gin.Context) {
	key, err := storage.CleanKey(c.Param("path"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	rc, err := a.files.Download(c.Request.Context(), key)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "public, max-age=3600",
	})
}
