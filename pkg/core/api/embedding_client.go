// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// EmbeddingClient generates vector embeddings from text inputs.
type EmbeddingClient interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// OpenAIEmbeddingClient implements EmbeddingClient using the OpenAI SDK.
type OpenAIEmbeddingClient struct {
	client     openai.Client
	model      string
	dimensions int
}

// compile-time check
var _ EmbeddingClient = (*OpenAIEmbeddingClient)(nil)

// NewOpenAIEmbeddingClient creates an embedding client with its own endpoint
// and key. dimensions of 0 leaves the vector size to the model, which local
// servers require.
func NewOpenAIEmbeddingClient(opts ClientOptions, model string, dimensions int) *OpenAIEmbeddingClient {
	return &OpenAIEmbeddingClient{
		client:     openai.NewClient(requestOptions(opts)...),
		model:      model,
		dimensions: dimensions,
	}
}

// Embed generates embeddings for the given text inputs, in input order.
func (c *OpenAIEmbeddingClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	var input openai.EmbeddingNewParamsInputUnion
	if len(inputs) == 1 {
		input = openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(inputs[0]),
		}
	} else {
		input = openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		}
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: input,
	}
	if c.dimensions > 0 {
		params.Dimensions = openai.Int(int64(c.dimensions))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	results := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(results) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		results[d.Index] = vec
	}

	return results, nil
}
