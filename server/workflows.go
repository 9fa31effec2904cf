package server

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/validation"
	"github.com/kbukum/paiflow/workflow"
)

// WorkflowRequest is the body of create and update. FlowData may be sent
// as an object or as a JSON string.
type WorkflowRequest struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description" validate:"max=2000"`
	EngineType  string         `json:"engineType" validate:"max=32"`
	FlowData    workflow.Graph `json:"flowData"`
}

func (r *WorkflowRequest) toWorkflow(id string) *workflow.Workflow {
	return &workflow.Workflow{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		EngineType:  workflow.NormalizeEngineType(r.EngineType),
		Graph:       r.FlowData,
	}
}

// bind decodes the JSON body into v and validates it.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return errors.InvalidInput("body", err.Error())
	}
	return validation.Validate(v)
}

func (a *API) listWorkflows(c *gin.Context) {
	list, err := a.store.ListWorkflows(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOKWithMeta(c, list, &Meta{Total: len(list)})
}

func (a *API) createWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if err := bind(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}
	wf := req.toWorkflow("")
	if err := wf.Validate(); err != nil {
		RespondWithError(c, err)
		return
	}
	if err := a.store.CreateWorkflow(c.Request.Context(), wf); err != nil {
		RespondWithError(c, err)
		return
	}
	a.log.Info("workflow created", map[string]interface{}{"workflow_id": wf.ID, "nodes": len(wf.Graph.Nodes)})
	RespondCreated(c, wf)
}

func (a *API) getWorkflow(c *gin.Context) {
	wf, err := a.store.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, wf)
}

func (a *API) updateWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if err := bind(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}
	wf := req.toWorkflow(c.Param("id"))
	if err := wf.Validate(); err != nil {
		RespondWithError(c, err)
		return
	}
	if err := a.store.UpdateWorkflow(c.Request.Context(), wf); err != nil {
		RespondWithError(c, err)
		return
	}
	updated, err := a.store.GetWorkflow(c.Request.Context(), wf.ID)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, updated)
}

func (a *API) deleteWorkflow(c *gin.Context) {
	if err := a.store.DeleteWorkflow(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

func (a *API) nodeTypes(c *gin.Context) {
	var types []string
	if a.types != nil {
		types = a.types.Types()
	}
	if types == nil {
		types = []string{}
	}
	RespondOK(c, types)
}
