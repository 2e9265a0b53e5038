// Package testutil provides deterministic model and embedder doubles for
// tests. Nothing here talks to a real Ollama server.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// MockModel provides deterministic chat responses for testing. It matches
// the user message against registered substrings and returns the paired
// response, streaming it word by word when a stream callback is attached.
//
// Thread-safe for concurrent use.
type MockModel struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	calls    []MockCall
}

type mockRule struct {
	pattern  string // lowercase substring match in user message
	response string
}

// MockCall records a single call to the mock model.
type MockCall struct {
	UserMessage string
	Response    string
}

// NewMockModel creates a mock model returning fallback when no pattern
// matches.
func NewMockModel(fallback string) *MockModel {
	return &MockModel{fallback: fallback}
}

// AddResponse registers a pattern-response pair. Matching is
// case-insensitive; patterns are checked in registration order and the
// first match wins.
func (m *MockModel) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// Calls returns a copy of all recorded calls.
func (m *MockModel) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]MockCall, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// Register registers the mock as a Genkit model named "mock/chat-model".
func (m *MockModel) Register(g *genkit.Genkit) ai.Model {
	return genkit.DefineModel(g, "mock/chat-model", &ai.ModelOptions{
		Label: "Mock Chat Model",
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			SystemRole: true,
		},
	}, m.generate)
}

func (m *MockModel) generate(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
	var userText string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == ai.RoleUser {
			userText = req.Messages[i].Text()
			break
		}
	}

	m.mu.Lock()
	responseText := m.fallback
	lower := strings.ToLower(userText)
	for _, rule := range m.rules {
		if strings.Contains(lower, rule.pattern) {
			responseText = rule.response
			break
		}
	}
	m.calls = append(m.calls, MockCall{
		UserMessage: userText,
		Response:    responseText,
	})
	m.mu.Unlock()

	// Stream word by word so token-level streaming paths get exercised.
	if cb != nil {
		words := strings.SplitAfter(responseText, " ")
		for _, word := range words {
			if word == "" {
				continue
			}
			if err := cb(ctx, &ai.ModelResponseChunk{
				Content: []*ai.Part{ai.NewTextPart(word)},
			}); err != nil {
				return nil, err
			}
		}
	}

	return &ai.ModelResponse{
		Request: req,
		Message: &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewTextPart(responseText)},
		},
	}, nil
}
