// Package executor runs agent integrations. Dispatch goes through an
// Action registry keyed by template id; every run on an existing agent
// updates the agent's counters and appends an execution log entry,
// whether it succeeded or not.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/store"
)

// Params are the free-form inputs of one execution request.
type Params map[string]string

// Result is the outcome of one agent execution. Executions never
// surface errors to callers; failures are results with Success unset.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Action executes one integration template. Expected failures (missing
// parameters, unimplemented templates) are failure Results; the error
// return is for unexpected integration trouble and is converted to a
// failure Result by the executor.
type Action interface {
	TemplateID() string
	Execute(ctx context.Context, params Params) (*Result, error)
}

// Registry maps template ids to their actions.
type Registry struct {
	actions map[string]Action
}

// NewRegistry builds a registry from the given actions.
func NewRegistry(actions ...Action) *Registry {
	r := &Registry{actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		r.actions[a.TemplateID()] = a
	}
	return r
}

// Lookup returns the action for a template id.
func (r *Registry) Lookup(templateID string) (Action, bool) {
	a, ok := r.actions[templateID]
	return a, ok
}

// TemplateIDs returns the registered template ids, sorted.
func (r *Registry) TemplateIDs() []string {
	ids := make([]string, 0, len(r.actions))
	for id := range r.actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Executor coordinates agent runs: status flips, dispatch, counter
// updates, and execution logging.
type Executor struct {
	repo     store.Repository
	registry *Registry
	metrics  *metrics.Metrics

	// Per-agent locks serialize the read-modify-write of counters.
	locks sync.Map
}

// New creates an executor.
func New(repo store.Repository, registry *Registry, m *metrics.Metrics) *Executor {
	return &Executor{repo: repo, registry: registry, metrics: m}
}

// Execute runs the agent's integration. A missing agent yields a
// failure result and touches nothing; any run on an existing agent
// increments tasksCompleted by exactly one and refolds the success
// rate.
func (e *Executor) Execute(ctx context.Context, userID, agentID string, params Params) *Result {
	lock := e.lockFor(agentID)
	lock.Lock()
	defer lock.Unlock()

	agent, err := e.repo.GetAgent(ctx, userID, agentID)
	if err != nil {
		slog.Error("load agent for execution", "agent_id", agentID, "error", err)
		return &Result{Success: false, Message: "Execution failed: could not load agent"}
	}
	if agent == nil {
		return &Result{Success: false, Message: "Agent not found"}
	}

	if err := e.repo.UpdateAgentStatus(ctx, userID, agentID, domain.AgentStatusExecuting); err != nil {
		slog.Warn("set agent status executing", "agent_id", agentID, "error", err)
	}

	res := e.dispatch(ctx, agent, params)

	agent.ApplyRun(res.Success)
	if err := e.repo.UpdateAgentRun(ctx, agent); err != nil {
		slog.Error("persist agent run", "agent_id", agentID, "error", err)
	}

	entry := &domain.ExecutionLogEntry{
		AgentID:   agent.ID,
		Status:    domain.LogStatusSuccess,
		Message:   res.Message,
		Result:    res.Data,
		Timestamp: time.Now(),
	}
	if !res.Success {
		entry.Status = domain.LogStatusError
	}
	if err := e.repo.AppendExecutionLog(ctx, entry); err != nil {
		slog.Error("append execution log", "agent_id", agentID, "error", err)
	}

	e.metrics.RecordExecution(templateLabel(agent.TemplateID), res.Success)

	return res
}

func (e *Executor) dispatch(ctx context.Context, agent *domain.Agent, params Params) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during agent execution", "agent_id", agent.ID, "panic", r)
			res = &Result{Success: false, Message: "Execution failed: internal error"}
		}
	}()

	if agent.TemplateID == "" {
		return &Result{Success: false, Message: "Agent has no integration template"}
	}

	action, ok := e.registry.Lookup(agent.TemplateID)
	if !ok {
		return &Result{Success: false, Message: fmt.Sprintf("No integration registered for template %q", agent.TemplateID)}
	}

	out, err := action.Execute(ctx, params)
	if err != nil {
		slog.Warn("agent execution failed",
			"agent_id", agent.ID,
			"template", agent.TemplateID,
			"error", err)
		return &Result{Success: false, Message: "Execution failed: " + err.Error()}
	}
	return out
}

func (e *Executor) lockFor(agentID string) *sync.Mutex {
	lock, _ := e.locks.LoadOrStore(agentID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func templateLabel(templateID string) string {
	if templateID == "" {
		return "none"
	}
	return templateID
}

// missingParams returns the required keys absent or blank in params.
func missingParams(params Params, required ...string) []string {
	var missing []string
	for _, key := range required {
		if strings.TrimSpace(params[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func missingParamsResult(missing []string) *Result {
	return &Result{
		Success: false,
		Message: "Missing required parameters: " + strings.Join(missing, ", "),
	}
}
