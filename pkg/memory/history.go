// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory holds the per-session interaction history.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jllopis/careermentor/pkg/core"
)

// ContextCareer is the context key whose value replaces the user input as the
// field handed to an agent.
const ContextCareer = "career"

// Interaction records one agent invocation.
type Interaction struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	UserInput string            `json:"user_input"`
	Role      core.Role         `json:"role"`
	Response  string            `json:"response"`
	Context   map[string]string `json:"context,omitempty"`
	// Direct marks manual or classic invocations that bypassed the classifier.
	Direct    bool      `json:"direct,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// History is an ordered, append-only interaction log owned by one session.
// Data is lost on restart.
type History struct {
	mu        sync.RWMutex
	sessionID string
	items     []Interaction
	now       func() time.Time
}

// NewHistory creates an empty history for the given session.
func NewHistory(sessionID string) *History {
	return &History{
		sessionID: sessionID,
		now:       time.Now,
	}
}

// Append stores it at the end of the history and returns the stored copy
// with ID, SessionID and CreatedAt filled in.
func (h *History) Append(it Interaction) Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()

	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if it.SessionID == "" {
		it.SessionID = h.sessionID
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = h.now()
	}
	it.Context = cloneContext(it.Context)

	h.items = append(h.items, it)
	return it
}

// All returns a snapshot of every interaction in append order.
func (h *History) All() []Interaction {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Interaction, len(h.items))
	copy(out, h.items)
	return out
}

// Recent returns the last n interactions in append order.
func (h *History) Recent(n int) []Interaction {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 {
		return []Interaction{}
	}
	if len(h.items) <= n {
		out := make([]Interaction, len(h.items))
		copy(out, h.items)
		return out
	}
	out := make([]Interaction, n)
	copy(out, h.items[len(h.items)-n:])
	return out
}

// Len returns the number of stored interactions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Clear removes every interaction. It is idempotent.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}

// SessionID returns the owning session identifier.
func (h *History) SessionID() string { return h.sessionID }

func cloneContext(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
