package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAICompatCompleteParsesToolCalls(t *testing.T) {
	var gotReq oaiChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call-1","type":"function","function":{"name":"find_books","arguments":"{\"query_str\":\"dune\"}"}}]}}]}`))
	}))
	defer srv.Close()

	chat := NewOpenAICompatChat(srv.URL, "sk-test", "gpt-4o")
	got, err := chat.Complete(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "You are a library assistant."},
		{Role: RoleUser, Content: "do you have dune?"},
	}, []ToolSpec{{Name: "find_books", Description: "search", Parameters: json.RawMessage(`{"type":"object"}`)}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if len(got.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %+v", got)
	}
	call := got.ToolCalls[0]
	if call.ID != "call-1" || call.Name != "find_books" || !strings.Contains(call.Arguments, "dune") {
		t.Fatalf("unexpected tool call: %+v", call)
	}

	if gotReq.Model != "gpt-4o" {
		t.Fatalf("model not sent: %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != RoleSystem {
		t.Fatalf("messages not forwarded: %+v", gotReq.Messages)
	}
	if len(gotReq.Tools) != 1 || gotReq.Tools[0].Function.Name != "find_books" {
		t.Fatalf("tools not forwarded: %+v", gotReq.Tools)
	}
}

func TestOpenAICompatCompleteReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  We stock four titles.  "}}]}`))
	}))
	defer srv.Close()

	chat := NewOpenAICompatChat(srv.URL+"/", "", "gpt-4o")
	got, err := chat.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Content != "We stock four titles." {
		t.Fatalf("content not trimmed: %q", got.Content)
	}
	if len(got.ToolCalls) != 0 {
		t.Fatalf("unexpected tool calls: %+v", got.ToolCalls)
	}
}

func TestOpenAICompatCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer srv.Close()

	chat := NewOpenAICompatChat(srv.URL, "bad-key", "gpt-4o")
	_, err := chat.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}}, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestOpenAICompatCompleteRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	chat := NewOpenAICompatChat(srv.URL, "", "gpt-4o")
	if _, err := chat.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}}, nil); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestOpenAICompatRequiresModel(t *testing.T) {
	chat := NewOpenAICompatChat("http://localhost:1", "", "")
	if _, err := chat.Complete(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error when model is empty")
	}
}
