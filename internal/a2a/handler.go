package a2a

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SkillFunc is an agent's message handler: one inbound message in, one
// reply message out.
type SkillFunc func(ctx context.Context, msg Message) (Message, error)

// Handler serves the JSON-RPC task methods for one agent, storing
// tasks in memory.
type Handler struct {
	agentName string
	skill     SkillFunc

	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewHandler creates a handler for the named agent backed by the skill.
func NewHandler(agentName string, skill SkillFunc) *Handler {
	return &Handler{
		agentName: agentName,
		skill:     skill,
		tasks:     make(map[string]*Task),
	}
}

// OnMessageSend runs the skill against the inbound message and records
// the exchange as a completed task.
func (h *Handler) OnMessageSend(ctx context.Context, params MessageSendParams) (*Task, error) {
	taskID := uuid.New().String()
	contextID := uuid.New().String()

	inbound := params.Message
	inbound.TaskID = taskID
	inbound.ContextID = contextID

	reply, err := h.skill(ctx, inbound)
	if err != nil {
		return nil, fmt.Errorf("%s skill: %w", h.agentName, err)
	}
	reply.TaskID = taskID
	reply.ContextID = contextID

	task := &Task{
		ID:        taskID,
		ContextID: contextID,
		History:   []Message{inbound, reply},
		Status:    TaskStatus{State: TaskCompleted, Message: &reply},
	}

	h.mu.Lock()
	h.tasks[taskID] = task
	h.mu.Unlock()

	return task, nil
}

// OnGetTask returns a stored task by id.
func (h *Handler) OnGetTask(id string) (*Task, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	task, ok := h.tasks[id]
	return task, ok
}

// OnCancelTask marks a stored task canceled. Tasks complete
// synchronously, so this only affects the stored record.
func (h *Handler) OnCancelTask(id string) (*Task, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	task, ok := h.tasks[id]
	if !ok {
		return nil, false
	}
	task.Status = TaskStatus{State: TaskCanceled}
	return task, true
}
