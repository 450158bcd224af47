package ai

import (
	"context"
	"encoding/json"
)

// Chat roles understood by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one turn handed to the model. Tool result messages carry
// the ToolCallID they answer; assistant messages may carry tool calls.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCallRequest
	ToolCallID string
}

// ToolCallRequest is a tool invocation the model asked for. Arguments is the
// raw JSON object the model produced.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec declares a callable tool: its name, a natural-language
// description, and a JSON-schema parameter object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Completion is one model response: either final text or tool calls to run.
type Completion struct {
	Content   string
	ToolCalls []ToolCallRequest
}

// ChatModel produces a completion for a conversation, optionally selecting
// from the declared tools. All LLM providers implement this interface.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage, tools []ToolSpec) (Completion, error)
}
