// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockChatCompletionClient is a scriptable ChatCompletionClient for tests.
// With no Reply or Err set it echoes the last user message.
type MockChatCompletionClient struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []*ChatCompletionRequest
}

// compile-time check
var _ ChatCompletionClient = (*MockChatCompletionClient)(nil)

// NewMockChatCompletionClient creates a new mock client
func NewMockChatCompletionClient() *MockChatCompletionClient {
	return &MockChatCompletionClient{}
}

// CreateChatCompletion records req and returns the scripted outcome.
func (m *MockChatCompletionClient) CreateChatCompletion(_ context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	content := m.Reply
	if content == "" {
		userMessage := ""
		for _, msg := range req.Messages {
			if msg.Role == RoleUser {
				userMessage = msg.Content
			}
		}
		content = fmt.Sprintf("Mock response to: %s", userMessage)
	}

	return &ChatCompletionResponse{
		ID:    fmt.Sprintf("chatcmpl-mock-%d", time.Now().Unix()),
		Model: req.Model,
		Choices: []Choice{
			{
				Message: Message{
					Role:    RoleAssistant,
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: Usage{
			CompletionTokens: estimateTokens(content),
			TotalTokens:      estimateTokens(content),
		},
	}, nil
}

// Requests returns the requests received so far.
func (m *MockChatCompletionClient) Requests() []*ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ChatCompletionRequest(nil), m.requests...)
}

// estimateTokens provides a rough token count estimate
// Using ~4 characters per token as a simple heuristic
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text) / 4
}
