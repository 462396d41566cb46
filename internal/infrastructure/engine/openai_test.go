package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/service"
	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Model: "llama-3.3-70b"}, zap.NewNop()), srv
}

func TestComplete_DecodesAssistantMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"},
			},
		})
	})

	events, err := client.Complete(context.Background(), &service.EngineRequest{
		Messages: []service.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != service.EventAssistantMessage || events[0].Text != "Hello!" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestComplete_DecodesToolCallsWithArguments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "create_fungible_token" {
			t.Errorf("tool definitions not forwarded: %+v", req.Tools)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": "On it.",
						"tool_calls": []map[string]interface{}{
							{
								"id":   "call_abc",
								"type": "function",
								"function": map[string]interface{}{
									"name":      "create_fungible_token",
									"arguments": `{"name":"GreenEnergy","symbol":"GREN","decimals":0}`,
								},
							},
						},
					},
					"finish_reason": "tool_calls",
				},
			},
		})
	})

	events, err := client.Complete(context.Background(), &service.EngineRequest{
		Messages: []service.ChatMessage{{Role: "user", Content: "create a token"}},
		Tools: []domaintool.Definition{
			{Name: "create_fungible_token", Description: "d", Parameters: map[string]interface{}{"type": "object"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected assistant + tool_calls events, got %+v", events)
	}
	if events[0].Kind != service.EventAssistantMessage || events[0].Text != "On it." {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	calls := events[1].ToolCalls
	if events[1].Kind != service.EventToolCalls || len(calls) != 1 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if calls[0].ID != "call_abc" || calls[0].Name != "create_fungible_token" {
		t.Fatalf("unexpected call: %+v", calls[0])
	}
	if calls[0].Arguments["name"] != "GreenEnergy" || calls[0].Arguments["decimals"] != float64(0) {
		t.Fatalf("arguments not decoded: %+v", calls[0].Arguments)
	}
}

func TestComplete_ToolResultsRoundTrip(t *testing.T) {
	var got apiRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": "done"}},
			},
		})
	})

	_, err := client.Complete(context.Background(), &service.EngineRequest{
		Messages: []service.ChatMessage{
			{Role: "user", Content: "mint"},
			{Role: "assistant", ToolCalls: []service.ToolCallInfo{
				{ID: "call_1", Name: "mint_token", Arguments: map[string]interface{}{"amount": 100}},
			}},
			{Role: "tool", Content: "minted", ToolCallID: "call_1", ToolName: "mint_token"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(got.Messages))
	}
	assistant := got.Messages[1]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].ID != "call_1" {
		t.Fatalf("assistant tool calls not serialized: %+v", assistant)
	}
	tool := got.Messages[2]
	if tool.Role != "tool" || tool.ToolCallID != "call_1" || tool.Name != "mint_token" {
		t.Fatalf("tool result not serialized: %+v", tool)
	}
}

func TestComplete_Non200IsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), &service.EngineRequest{
		Messages: []service.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 503")
	}
}
