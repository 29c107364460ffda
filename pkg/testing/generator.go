// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides scripted text generators for exercising the
// dispatcher without a live model.
package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jllopis/careermentor/pkg/llm"
)

// Call is one captured Generate invocation.
type Call struct {
	Instruction string
	Prompt      string
}

// Matcher selects calls a rule applies to.
type Matcher func(c Call) bool

// InstructionContains matches calls whose instruction contains substr.
func InstructionContains(substr string) Matcher {
	return func(c Call) bool { return strings.Contains(c.Instruction, substr) }
}

// PromptContains matches calls whose prompt contains substr.
func PromptContains(substr string) Matcher {
	return func(c Call) bool { return strings.Contains(c.Prompt, substr) }
}

// ScriptedReply is a canned answer for matching calls.
type ScriptedReply struct {
	Content string
	Error   error
	// Block waits for context cancellation and returns ctx.Err().
	Block bool
}

type rule struct {
	match   Matcher
	replies []ScriptedReply
	next    int
}

// StubGenerator is a scripted llm.Generator. Rules are evaluated in the
// order they were added; the first matching rule answers. A rule with
// several replies hands them out in order and repeats the last one.
type StubGenerator struct {
	mu       sync.Mutex
	rules    []*rule
	fallback *ScriptedReply
	onCall   func(ctx context.Context, c Call) (string, error)
	calls    []Call
}

// NewStubGenerator creates an empty stub. Unmatched calls fail.
func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

// On answers calls matching m with content.
func (s *StubGenerator) On(m Matcher, content string) *StubGenerator {
	return s.OnSequence(m, content)
}

// OnSequence answers successive calls matching m with contents in order.
func (s *StubGenerator) OnSequence(m Matcher, contents ...string) *StubGenerator {
	replies := make([]ScriptedReply, 0, len(contents))
	for _, c := range contents {
		replies = append(replies, ScriptedReply{Content: c})
	}
	return s.OnReply(m, replies...)
}

// FailOn answers calls matching m with err.
func (s *StubGenerator) FailOn(m Matcher, err error) *StubGenerator {
	return s.OnReply(m, ScriptedReply{Error: err})
}

// BlockOn makes calls matching m wait until their context is cancelled.
func (s *StubGenerator) BlockOn(m Matcher) *StubGenerator {
	return s.OnReply(m, ScriptedReply{Block: true})
}

// OnReply adds a fully configured rule.
func (s *StubGenerator) OnReply(m Matcher, replies ...ScriptedReply) *StubGenerator {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(replies) == 0 {
		replies = []ScriptedReply{{}}
	}
	s.rules = append(s.rules, &rule{match: m, replies: replies})
	return s
}

// WithDefault answers unmatched calls with content.
func (s *StubGenerator) WithDefault(content string) *StubGenerator {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &ScriptedReply{Content: content}
	return s
}

// WithFunc routes every call to fn. Rules are ignored.
func (s *StubGenerator) WithFunc(fn func(ctx context.Context, c Call) (string, error)) *StubGenerator {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCall = fn
	return s
}

// Generate implements llm.Generator.
func (s *StubGenerator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	c := Call{Instruction: instruction, Prompt: prompt}

	s.mu.Lock()
	s.calls = append(s.calls, c)
	fn := s.onCall
	reply, ok := s.pick(c)
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, c)
	}
	if !ok {
		return "", fmt.Errorf("no scripted reply for prompt %q", prompt)
	}
	if reply.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if reply.Error != nil {
		return "", reply.Error
	}
	return reply.Content, nil
}

func (s *StubGenerator) pick(c Call) (ScriptedReply, bool) {
	for _, r := range s.rules {
		if !r.match(c) {
			continue
		}
		reply := r.replies[r.next]
		if r.next < len(r.replies)-1 {
			r.next++
		}
		return reply, true
	}
	if s.fallback != nil {
		return *s.fallback, true
	}
	return ScriptedReply{}, false
}

// Calls returns a copy of every captured call.
func (s *StubGenerator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of Generate calls made.
func (s *StubGenerator) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// CountMatching returns how many captured calls match m.
func (s *StubGenerator) CountMatching(m Matcher) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if m(c) {
			n++
		}
	}
	return n
}

// Reset clears captured calls and rewinds every rule.
func (s *StubGenerator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = s.calls[:0]
	for _, r := range s.rules {
		r.next = 0
	}
}

var _ llm.Generator = (*StubGenerator)(nil)
