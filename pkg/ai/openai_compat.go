package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatChat calls any OpenAI-compatible /v1/chat/completions endpoint
// with function-calling enabled. Works with OpenAI, vLLM, LiteLLM,
// OpenRouter, self-hosted models, etc.
type OpenAICompatChat struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompatChat builds an OpenAI-compatible ChatModel.
// baseURL should include the /v1 prefix, e.g. "https://api.openai.com/v1".
// apiKey can be empty for local models that do not require authentication.
func NewOpenAICompatChat(baseURL, apiKey, model string) *OpenAICompatChat {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &OpenAICompatChat{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete implements ChatModel using the OpenAI chat completions API.
func (g *OpenAICompatChat) Complete(ctx context.Context, messages []ChatMessage, tools []ToolSpec) (Completion, error) {
	if g.model == "" {
		return Completion{}, fmt.Errorf("openai-compat chat model required")
	}
	reqBody := oaiChatRequest{
		Model:    g.model,
		Messages: toWireMessages(messages),
		Tools:    toWireTools(tools),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, err
	}

	url := g.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Completion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("openai-compat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return Completion{}, fmt.Errorf("openai-compat api error: %s", errResp.Error.Message)
		}
		return Completion{}, fmt.Errorf("openai-compat api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Completion{}, fmt.Errorf("openai-compat decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return Completion{}, fmt.Errorf("empty response from openai-compat api")
	}
	msg := chatResp.Choices[0].Message
	completion := Completion{Content: strings.TrimSpace(msg.Content)}
	for _, call := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCallRequest{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	if completion.Content == "" && len(completion.ToolCalls) == 0 {
		return Completion{}, fmt.Errorf("empty response from openai-compat api")
	}
	return completion, nil
}

func toWireMessages(messages []ChatMessage) []oaiMessage {
	wire := make([]oaiMessage, 0, len(messages))
	for _, msg := range messages {
		m := oaiMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, oaiToolCall{
				ID:   call.ID,
				Type: "function",
				Function: oaiFunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		wire = append(wire, m)
	}
	return wire
}

func toWireTools(tools []ToolSpec) []oaiTool {
	if len(tools) == 0 {
		return nil
	}
	wire := make([]oaiTool, 0, len(tools))
	for _, tool := range tools {
		wire = append(wire, oaiTool{
			Type: "function",
			Function: oaiFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return wire
}

// OpenAI-compatible request/response types.

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type oaiToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function oaiFunctionCall `json:"function"`
}

type oaiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type oaiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type oaiTool struct {
	Type     string      `json:"type"`
	Function oaiFunction `json:"function"`
}

type oaiChatRequest struct {
	Model    string       `json:"model"`
	Messages []oaiMessage `json:"messages"`
	Tools    []oaiTool    `json:"tools,omitempty"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
