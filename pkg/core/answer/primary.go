// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package answer

import (
	"context"
	"errors"

	"github.com/leseb/docchat/pkg/core/api"
)

// SystemPrompt opens every conversation with the remote service.
const SystemPrompt = "You are a helpful assistant."

// ContentPrefix introduces the document in the conversation.
const ContentPrefix = "The following is the file content: "

var errNoChoices = errors.New("response contained no choices")

// Primary answers with a remote chat-completion service.
type Primary struct {
	client    api.ChatCompletionClient
	model     string
	maxTokens int
}

// compile-time check
var _ Answerer = (*Primary)(nil)

// NewPrimary creates a Primary that sends requests for model through client.
// maxTokens of 0 leaves the reply length to the service.
func NewPrimary(client api.ChatCompletionClient, model string, maxTokens int) *Primary {
	return &Primary{client: client, model: model, maxTokens: maxTokens}
}

// Conversation builds the messages sent for one question: the system
// prompt, the whole document, then the question.
func Conversation(document, question string) []api.Message {
	return []api.Message{
		{Role: api.RoleSystem, Content: SystemPrompt},
		{Role: api.RoleUser, Content: ContentPrefix + document},
		{Role: api.RoleUser, Content: question},
	}
}

// Answer sends one request and returns the first choice's text. Quota
// refusals are KindQuotaExceeded; every other failure is KindRemote.
func (p *Primary) Answer(ctx context.Context, document, question string) (string, error) {
	req := &api.ChatCompletionRequest{
		Model:    p.model,
		Messages: Conversation(document, question),
	}
	if p.maxTokens > 0 {
		maxTokens := p.maxTokens
		req.MaxTokens = &maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if api.IsQuotaExceeded(err) {
			return "", &Error{Kind: KindQuotaExceeded, Err: err}
		}
		return "", &Error{Kind: KindRemote, Err: err}
	}

	content, ok := resp.FirstContent()
	if !ok {
		return "", &Error{Kind: KindRemote, Err: errNoChoices}
	}
	return content, nil
}
