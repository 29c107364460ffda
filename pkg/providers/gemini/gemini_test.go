// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/jllopis/careermentor/pkg/llm"
)

func TestConvertMessages(t *testing.T) {
	contents, system := convertMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "You are an education advisor."},
		{Role: llm.RoleUser, Content: "Give free learning resources for Nursing."},
		{Role: llm.RoleAssistant, Content: "Coursera"},
	})
	if system != "You are an education advisor." {
		t.Errorf("unexpected system instruction %q", system)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Errorf("unexpected roles %s, %s", contents[0].Role, contents[1].Role)
	}
}

func TestConvertResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "- Coursera\n"}, {Text: "- edX"}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 4,
			TotalTokenCount:      14,
		},
	}
	out := convertResponse(resp)
	if out.Content != "- Coursera\n- edX" {
		t.Errorf("unexpected content %q", out.Content)
	}
	if out.Usage.TotalTokens != 14 {
		t.Errorf("expected 14 total tokens, got %d", out.Usage.TotalTokens)
	}
	if convertResponse(&genai.GenerateContentResponse{}).Content != "" {
		t.Error("empty response should give empty content")
	}
}

func TestChatAgainstServer(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "candidates": [{"content": {"role": "model", "parts": [{"text": "Nurse Practitioner"}]}, "finishReason": "STOP"}],
  "usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 3, "totalTokenCount": 10}
}`))
	}))
	defer srv.Close()

	p, err := NewWithAPIKey(context.Background(), "test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a career expert."},
			{Role: llm.RoleUser, Content: "Suggest career paths for someone interested in care."},
		},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "Nurse Practitioner" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 10 {
		t.Errorf("expected 10 tokens, got %d", resp.Usage.TotalTokens)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Errorf("expected systemInstruction in request, got keys %v", body)
	}
}
