// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ClientOptions configures an OpenAI-compatible client.
type ClientOptions struct {
	BaseURL string        // empty means api.openai.com; set for Ollama, vLLM, etc.
	APIKey  string        // optional for local backends
	Timeout time.Duration // per-request timeout, 0 disables it
}

// OpenAIClient implements ChatCompletionClient using the official OpenAI Go SDK
// Supports OpenAI, Ollama, vLLM, and other OpenAI-compatible backends
type OpenAIClient struct {
	client openai.Client
}

// compile-time check
var _ ChatCompletionClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI-compatible client. The SDK's
// automatic retries are disabled so each call issues exactly one request.
func NewOpenAIClient(opts ClientOptions) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(requestOptions(opts)...),
	}
}

func requestOptions(opts ClientOptions) []option.RequestOption {
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}

	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	// Local backends accept any key; the SDK refuses to send none.
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey("dummy"))
	}

	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return reqOpts
}

// convertMessages converts our Message types to OpenAI SDK message params
func convertMessages(messages []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case RoleUser:
			result = append(result, openai.UserMessage(msg.Content))
		case RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return result, nil
}

// buildParams constructs OpenAI SDK ChatCompletionNewParams from our ChatCompletionRequest
func buildParams(req *ChatCompletionRequest, messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*req.MaxTokens))
	}
	return params
}

// CreateChatCompletion implements ChatCompletionClient.CreateChatCompletion
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	messages, err := convertMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	completion, err := c.client.Chat.Completions.New(ctx, buildParams(req, messages))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	choices := make([]Choice, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		choices = append(choices, Choice{
			Index: int(choice.Index),
			Message: Message{
				Role:    string(choice.Message.Role),
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}

	return &ChatCompletionResponse{
		ID:      completion.ID,
		Model:   completion.Model,
		Choices: choices,
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

// StatusCode returns the HTTP status carried by an SDK error, or 0 when err
// did not come from an HTTP response.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsQuotaExceeded reports whether err is the service refusing a request
// because the caller's rate limit or usage quota is exhausted.
func IsQuotaExceeded(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return apiErr.Code == "insufficient_quota" || apiErr.Type == "insufficient_quota"
}
