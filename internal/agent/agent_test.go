package agent

import (
	"context"
	"strings"
	"testing"

	"librarydesk/internal/tools"
	"librarydesk/pkg/ai"
	"librarydesk/pkg/domain"
	"librarydesk/pkg/store"
)

// scriptedModel returns canned completions in order and records the
// conversations it was given.
type scriptedModel struct {
	steps []ai.Completion
	calls [][]ai.ChatMessage
}

func (m *scriptedModel) Complete(_ context.Context, messages []ai.ChatMessage, _ []ai.ToolSpec) (ai.Completion, error) {
	m.calls = append(m.calls, messages)
	if len(m.steps) == 0 {
		return ai.Completion{}, context.Canceled
	}
	next := m.steps[0]
	m.steps = m.steps[1:]
	return next, nil
}

func newAgentFixture(t *testing.T, model ai.ChatModel) *Agent {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()
	if err := mem.SaveBook(ctx, domain.Book{ISBN: "X", Title: "Dune", Author: "Frank Herbert", Stock: 3}); err != nil {
		t.Fatalf("save book: %v", err)
	}
	a, err := New(Config{Model: model, Registry: tools.NewRegistry(mem, nil)})
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func TestAgentExecutesToolCallsThenAnswers(t *testing.T) {
	model := &scriptedModel{steps: []ai.Completion{
		{ToolCalls: []ai.ToolCallRequest{{ID: "call-1", Name: "find_books", Arguments: `{"query_str":"Dune","search_by":"title"}`}}},
		{Content: "We have Dune in stock."},
	}}
	a := newAgentFixture(t, model)

	reply, err := a.Reply(context.Background(), "do you have dune?", nil)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.Text != "We have Dune in stock." {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0].Name != "find_books" {
		t.Fatalf("expected one traced tool call, got %+v", reply.ToolCalls)
	}

	// Second round must include the tool result message.
	last := model.calls[len(model.calls)-1]
	var toolResult *ai.ChatMessage
	for i := range last {
		if last[i].Role == ai.RoleTool {
			toolResult = &last[i]
		}
	}
	if toolResult == nil {
		t.Fatalf("tool result never fed back to model: %+v", last)
	}
	if toolResult.ToolCallID != "call-1" || !strings.Contains(toolResult.Content, "Dune") {
		t.Fatalf("unexpected tool result: %+v", toolResult)
	}
}

func TestAgentIncludesHistoryAndSystemPrompt(t *testing.T) {
	model := &scriptedModel{steps: []ai.Completion{{Content: "hello again"}}}
	a := newAgentFixture(t, model)

	history := []domain.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "tool", Content: "must be dropped"},
	}
	if _, err := a.Reply(context.Background(), "how are you?", history); err != nil {
		t.Fatalf("reply: %v", err)
	}

	msgs := model.calls[0]
	if msgs[0].Role != ai.RoleSystem || msgs[0].Content != DefaultSystemPrompt {
		t.Fatalf("system prompt missing: %+v", msgs[0])
	}
	if len(msgs) != 4 {
		t.Fatalf("expected system + 2 history + input, got %d messages", len(msgs))
	}
	if msgs[1].Content != "hi" || msgs[2].Content != "hello" || msgs[3].Content != "how are you?" {
		t.Fatalf("unexpected conversation: %+v", msgs)
	}
}

func TestAgentFailsOnUnknownTool(t *testing.T) {
	model := &scriptedModel{steps: []ai.Completion{
		{ToolCalls: []ai.ToolCallRequest{{ID: "call-1", Name: "drop_tables", Arguments: `{}`}}},
	}}
	a := newAgentFixture(t, model)

	if _, err := a.Reply(context.Background(), "break things", nil); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestAgentStopsAfterMaxSteps(t *testing.T) {
	call := ai.Completion{ToolCalls: []ai.ToolCallRequest{{ID: "loop", Name: "inventory_summary", Arguments: `{}`}}}
	model := &scriptedModel{steps: []ai.Completion{call, call, call}}
	mem := store.NewMemoryStore()
	a, err := New(Config{Model: model, Registry: tools.NewRegistry(mem, nil), MaxSteps: 2})
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}

	_, err = a.Reply(context.Background(), "loop forever", nil)
	if err == nil || !strings.Contains(err.Error(), "did not converge") {
		t.Fatalf("expected convergence error, got %v", err)
	}
}
