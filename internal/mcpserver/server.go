// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes raido task tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/taskservice"
)

// ContractURI is the resource holding the task contract.
const ContractURI = "raido://task-contract"

// Server wraps the MCP server with raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *taskservice.Service
}

// New creates a new MCP server with all raido tools registered.
func New(svc *taskservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by status, task_type, priority or parent_id."),
		mcp.WithString("status", mcp.Description("todo, doing, done, carryover_candidate, needs_redefine or snoozed")),
		mcp.WithString("task_type", mcp.Description("research, decision or execution")),
		mcp.WithString("priority", mcp.Description("must or should")),
		mcp.WithNumber("parent_id", mcp.Description("Only children of this task")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Read one task with its checklist, children and origin."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
	), s.getTask)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. Every task needs a concrete done_criteria. "+
			"Read the contract first via the raido://task-contract resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short imperative title")),
		mcp.WithString("task_type", mcp.Required(), mcp.Description("research, decision or execution")),
		mcp.WithString("priority", mcp.Required(), mcp.Description("must or should")),
		mcp.WithString("done_criteria", mcp.Required(), mcp.Description("Observable condition that makes the task done")),
		mcp.WithString("category", mcp.Description("Free-form grouping")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD")),
		mcp.WithNumber("parent_id", mcp.Description("Create as a child of this task")),
		mcp.WithString("decision_criteria", mcp.Description("Decision tasks: how the choice will be made")),
		mcp.WithBoolean("reversible", mcp.Description("Decision tasks: whether the choice can be undone")),
		mcp.WithNumber("exploration_limit", mcp.Description("Decision tasks: maximum options to explore")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task done and append a completion log entry."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("note", mcp.Description("Optional completion note")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("stale_tasks",
		mcp.WithDescription("List open tasks that have not been touched within their priority's window."),
		mcp.WithString("priority", mcp.Description("Optional must or should filter")),
	), s.staleTasks)

	s.mcp.AddTool(mcp.NewTool("carryover_candidates",
		mcp.WithDescription("List overdue open tasks, most overdue first."),
	), s.carryoverCandidates)

	s.mcp.AddTool(mcp.NewTool("apply_carryover",
		mcp.WithDescription("Reschedule or flag an overdue task."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum(actionNames()...),
			mcp.Description("today, plus_2d, plus_7d or needs_redefine")),
	), s.applyCarryover)

	s.mcp.AddTool(mcp.NewTool("get_convergence",
		mcp.WithDescription("Evaluate whether a decision task is ready to converge."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Decision task id")),
	), s.getConvergence)

	s.mcp.AddTool(mcp.NewTool("extract_checklist_item",
		mcp.WithDescription("Promote a checklist item into its own task."),
		mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task owning the item")),
		mcp.WithNumber("item_id", mcp.Required(), mcp.Description("Checklist item id")),
		mcp.WithBoolean("standalone", mcp.Description("Create a top-level task instead of a child")),
		mcp.WithString("title", mcp.Description("Defaults to the item text")),
		mcp.WithString("task_type", mcp.Description("Defaults to the source task's type")),
		mcp.WithString("priority", mcp.Description("Defaults to the source task's priority")),
		mcp.WithString("due_date", mcp.Description("YYYY-MM-DD; defaults to the source task's due date")),
		mcp.WithString("done_criteria", mcp.Description("Defaults to the item text")),
	), s.extractChecklistItem)

	s.mcp.AddTool(mcp.NewTool("add_capture",
		mcp.WithDescription("Drop a freeform note into the capture inbox."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Capture text, Markdown allowed")),
		mcp.WithNumber("related_task_id", mcp.Description("Task this capture is about")),
	), s.addCapture)

	// Resource: task contract.
	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Task Contract",
			mcp.WithResourceDescription("Rules every raido task and capture must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func actionNames() []string {
	out := make([]string, 0, len(rules.AllActions))
	for _, a := range rules.AllActions {
		out = append(out, string(a))
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError reports domain failures as tool errors so the model can react.
// Internal failures surface as protocol errors.
func toolError(err error) (*mcp.CallToolResult, error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		return nil, err
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err)), nil
}

func optionalID(req mcp.CallToolRequest, key string) *int64 {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	id := int64(req.GetInt(key, 0))
	return &id
}

func optionalString(req mcp.CallToolRequest, key string) *string {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return nil
	}
	return &v
}

// optionalDate parses an optional YYYY-MM-DD argument. A malformed value yields a
// validation tool error.
func optionalDate(req mcp.CallToolRequest, key string) (*models.Date, *mcp.CallToolResult) {
	v := optionalString(req, key)
	if v == nil {
		return nil, nil
	}
	d, err := models.ParseDate(*v)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("%s: %s: %v", apperr.KindValidation, key, err))
	}
	return &d, nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := models.TaskFilter{
		Status:   models.Status(req.GetString("status", "")),
		TaskType: models.TaskType(req.GetString("task_type", "")),
		Priority: models.Priority(req.GetString("priority", "")),
		ParentID: optionalID(req, "parent_id"),
	}
	tasks, err := s.svc.List(ctx, f)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(tasks)
}

func (s *Server) getTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, int64(id))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(d)
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := models.TaskSpec{
		Title:            title,
		TaskType:         models.TaskType(req.GetString("task_type", "")),
		Priority:         models.Priority(req.GetString("priority", "")),
		DoneCriteria:     req.GetString("done_criteria", ""),
		Category:         optionalString(req, "category"),
		ParentID:         optionalID(req, "parent_id"),
		DecisionCriteria: optionalString(req, "decision_criteria"),
	}
	due, errResult := optionalDate(req, "due_date")
	if errResult != nil {
		return errResult, nil
	}
	spec.DueDate = due
	args := req.GetArguments()
	if _, ok := args["reversible"]; ok {
		rev := req.GetBool("reversible", false)
		spec.Reversible = &rev
	}
	if _, ok := args["exploration_limit"]; ok {
		limit := req.GetInt("exploration_limit", 0)
		spec.ExplorationLimit = &limit
	}

	t, err := s.svc.Create(ctx, spec)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(t)
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.Complete(ctx, int64(id), optionalString(req, "note"), nil)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(t)
}

func (s *Server) staleTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stale, err := s.svc.ListStale(ctx, models.Priority(req.GetString("priority", "")))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(stale)
}

func (s *Server) carryoverCandidates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := s.svc.CarryoverCandidates(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(c)
}

func (s *Server) applyCarryover(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.Carryover(ctx, int64(id), action, nil)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(t)
}

func (s *Server) getConvergence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.Convergence(ctx, int64(id))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(info)
}

func (s *Server) extractChecklistItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := req.RequireInt("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID, err := req.RequireInt("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ov := models.ExtractOverrides{
		Standalone:   req.GetBool("standalone", false),
		Title:        optionalString(req, "title"),
		DoneCriteria: optionalString(req, "done_criteria"),
	}
	if v := optionalString(req, "task_type"); v != nil {
		tt := models.TaskType(*v)
		ov.TaskType = &tt
	}
	if v := optionalString(req, "priority"); v != nil {
		p := models.Priority(*v)
		ov.Priority = &p
	}
	due, errResult := optionalDate(req, "due_date")
	if errResult != nil {
		return errResult, nil
	}
	ov.DueDate = due
	res, err := s.svc.Extract(ctx, int64(taskID), int64(itemID), ov)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(res)
}

func (s *Server) addCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.CreateCapture(ctx, models.CaptureSpec{
		Text:          text,
		RelatedTaskID: optionalID(req, "related_task_id"),
	})
	if err != nil {
		return toolError(err)
	}
	return jsonResult(c)
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     TaskContract,
		},
	}, nil
}
