// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"

	"github.com/jllopis/careermentor/pkg/llm"
)

func TestNewProvider(t *testing.T) {
	p := New()
	if p.model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, p.model)
	}
	if New(WithModel("")).model != DefaultModel {
		t.Error("empty model should keep default")
	}
	if New(WithModel("gpt-4-turbo")).model != "gpt-4-turbo" {
		t.Error("WithModel not applied")
	}
}

func TestChatAgainstCompatibleServer(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop",
               "message": {"role": "assistant", "content": "Graphic Designer\nUX Designer"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`))
	}))
	defer srv.Close()

	p := NewWithAPIKey("test-key",
		WithBaseURL(srv.URL+"/v1/"),
		WithRequestOptions(option.WithMaxRetries(0)),
	)
	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a career expert."},
			{Role: llm.RoleUser, Content: "Suggest career paths for someone interested in painting."},
		},
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "Graphic Designer\nUX Designer" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Errorf("expected 17 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if got.Model != DefaultModel {
		t.Errorf("expected default model in request, got %s", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
	if got.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", got.Temperature)
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
	}))
	defer srv.Close()

	p := NewWithAPIKey("k", WithBaseURL(srv.URL+"/v1/"), WithRequestOptions(option.WithMaxRetries(0)))
	if _, err := p.Chat(context.Background(), llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestConvertMessages(t *testing.T) {
	if m := convertMessage(llm.Message{Role: llm.RoleSystem, Content: "sys"}); m.OfSystem == nil {
		t.Error("expected system message")
	}
	if m := convertMessage(llm.Message{Role: llm.RoleUser, Content: "u"}); m.OfUser == nil {
		t.Error("expected user message")
	}
	if m := convertMessage(llm.Message{Role: llm.RoleAssistant, Content: "a"}); m.OfAssistant == nil {
		t.Error("expected assistant message")
	}
}
