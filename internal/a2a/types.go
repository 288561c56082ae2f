// Package a2a implements the agent-to-agent JSON-RPC envelope: message
// and task types, the HTTP client used to reach remote agents, and the
// server-side request handler that fronts a local agent skill.
package a2a

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks messages sent to an agent.
	RoleUser Role = "user"
	// RoleAgent marks messages produced by an agent.
	RoleAgent Role = "agent"
)

// TextPart is a single text fragment of a message.
type TextPart struct {
	Text string `json:"text"`
}

// Message is one turn in an agent conversation.
type Message struct {
	MessageID string     `json:"messageId"`
	Role      Role       `json:"role"`
	Parts     []TextPart `json:"parts"`
	TaskID    string     `json:"taskId,omitempty"`
	ContextID string     `json:"contextId,omitempty"`
}

// Text returns the first part's text, or empty when there are no parts.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return ""
	}
	return m.Parts[0].Text
}

// NewTextMessage builds a single-part text message with a fresh id.
func NewTextMessage(text string, role Role) Message {
	return Message{
		MessageID: uuid.New().String(),
		Role:      role,
		Parts:     []TextPart{{Text: text}},
	}
}

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	// TaskRunning indicates the task is being processed.
	TaskRunning TaskState = "running"
	// TaskCompleted indicates the task finished successfully.
	TaskCompleted TaskState = "completed"
	// TaskFailed indicates the skill returned an error.
	TaskFailed TaskState = "failed"
	// TaskCanceled indicates the task was canceled by a client.
	TaskCanceled TaskState = "canceled"
)

// TaskStatus pairs a task state with the message that produced it.
type TaskStatus struct {
	State   TaskState `json:"state"`
	Message *Message  `json:"message,omitempty"`
}

// Task records one inbound message and the agent's reply.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	History   []Message  `json:"history"`
	Status    TaskStatus `json:"status"`
}

// Reply returns the agent's reply text: the last history entry beyond
// the inbound message. Empty when the task has no reply yet.
func (t Task) Reply() string {
	if len(t.History) < 2 {
		return ""
	}
	return t.History[len(t.History)-1].Text()
}

// MessageSendParams are the params for the message/send method.
type MessageSendParams struct {
	Message Message `json:"message"`
}

// TaskIDParams are the params for task/get and task/cancel.
type TaskIDParams struct {
	ID string `json:"id"`
}

// Request is a JSON-RPC request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is a JSON-RPC response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// AgentSkill describes one capability advertised on an agent card.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	InputModes  []string `json:"inputModes"`
	OutputModes []string `json:"outputModes"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCapabilities flags optional protocol features.
type AgentCapabilities struct {
	Streaming bool `json:"streaming"`
}

// AgentProvider identifies who operates an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url"`
}

// AgentCard is the discovery document served at
// /.well-known/agent-card.json.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	Skills             []AgentSkill      `json:"skills"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	Provider           AgentProvider     `json:"provider"`
	PreferredTransport string            `json:"preferredTransport"`
}
