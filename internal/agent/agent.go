package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"librarydesk/internal/tools"
	"librarydesk/pkg/ai"
	"librarydesk/pkg/domain"
)

// DefaultSystemPrompt instructs the model to act as the library desk
// assistant. A prompt file configured at startup overrides it.
const DefaultSystemPrompt = `You are the front-desk assistant of a small bookstore and library back office.
Answer questions about books, place orders, restock inventory, adjust prices, and check order status.
Always use the provided tools to read or change the database; never invent book data, stock counts, or order numbers.
When an ordered item is missing from the receipt it was unavailable; say so plainly.
Reply with short, friendly prose.`

const defaultMaxSteps = 8

// Reply is the outcome of one dispatched turn: the final response text and
// the tool invocations made along the way.
type Reply struct {
	Text      string
	ToolCalls []domain.ToolCall
}

// Dispatcher turns a user message plus prior history into tool invocations
// and a final textual response.
type Dispatcher interface {
	Reply(ctx context.Context, input string, history []domain.Message) (Reply, error)
}

// Agent drives a tool-calling chat model against the tool registry.
type Agent struct {
	model        ai.ChatModel
	registry     *tools.Registry
	systemPrompt string
	maxSteps     int
}

// Config wires the agent's collaborators.
type Config struct {
	Model        ai.ChatModel
	Registry     *tools.Registry
	SystemPrompt string
	MaxSteps     int
}

// New constructs the agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("chat model required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry required")
	}
	prompt := strings.TrimSpace(cfg.SystemPrompt)
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Agent{
		model:        cfg.Model,
		registry:     cfg.Registry,
		systemPrompt: prompt,
		maxSteps:     maxSteps,
	}, nil
}

// Reply runs the model/tool loop until the model produces a final text
// answer. Tool failures abort the turn; the caller surfaces them.
func (a *Agent) Reply(ctx context.Context, input string, history []domain.Message) (Reply, error) {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleSystem, Content: a.systemPrompt})
	for _, msg := range history {
		role := msg.Role
		if role != ai.RoleUser && role != ai.RoleAssistant {
			continue
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: input})

	specs := a.registry.Specs()
	var trace []domain.ToolCall
	for step := 0; step < a.maxSteps; step++ {
		completion, err := a.model.Complete(ctx, messages, specs)
		if err != nil {
			return Reply{}, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.ToolCalls) == 0 {
			return Reply{Text: completion.Content, ToolCalls: trace}, nil
		}

		messages = append(messages, ai.ChatMessage{
			Role:      ai.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			slog.Debug("tool call", "tool", call.Name, "args", call.Arguments)
			result, err := a.registry.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				return Reply{}, fmt.Errorf("invoke %s: %w", call.Name, err)
			}
			trace = append(trace, domain.ToolCall{Name: call.Name, Arguments: call.Arguments})
			messages = append(messages, ai.ChatMessage{
				Role:       ai.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	return Reply{}, fmt.Errorf("tool loop did not converge after %d steps", a.maxSteps)
}
