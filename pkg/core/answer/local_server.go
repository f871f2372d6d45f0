// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package answer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leseb/docchat/pkg/core/api"
	"github.com/leseb/docchat/pkg/qa"
)

func init() {
	Fallbacks.Register("local_server", func(_ context.Context, params map[string]string) (Answerer, error) {
		endpoint := params["endpoint"]
		if endpoint == "" {
			return nil, fmt.Errorf("local_server fallback requires an endpoint")
		}
		model := params["model"]
		if model == "" {
			return nil, fmt.Errorf("local_server fallback requires a model")
		}
		var timeout time.Duration
		if v := params["timeout"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
			}
			timeout = d
		}
		var temperature float64
		if v := params["temperature"]; v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid temperature %q: %w", v, err)
			}
			temperature = f
		}
		ints := make(map[string]int)
		for _, key := range []string{"embedding_dimensions", "chunk_size", "chunk_overlap", "top_k"} {
			n, err := intParam(params, key)
			if err != nil {
				return nil, err
			}
			ints[key] = n
		}

		client := api.NewOpenAIClient(api.ClientOptions{
			BaseURL: endpoint,
			APIKey:  params["api_key"],
			Timeout: timeout,
		})

		var embedder api.EmbeddingClient
		if ep := params["embedding_endpoint"]; ep != "" {
			embedder = api.NewOpenAIEmbeddingClient(api.ClientOptions{
				BaseURL: ep,
				APIKey:  params["embedding_api_key"],
				Timeout: timeout,
			}, params["embedding_model"], ints["embedding_dimensions"])
		}

		return NewLocalServer(client, embedder, LocalServerOptions{
			Model:        model,
			Temperature:  temperature,
			ChunkSize:    ints["chunk_size"],
			ChunkOverlap: ints["chunk_overlap"],
			TopK:         ints["top_k"],
		}), nil
	})
}

// localServerPrompt asks the model to behave like an extractive reader.
const localServerPrompt = "Answer the question using only the context. " +
	"Reply with the shortest span copied verbatim from the context that answers it, and nothing else."

const defaultTopK = 4

var errEmptyReply = errors.New("model returned an empty answer")

// LocalServerOptions configures a LocalServer.
type LocalServerOptions struct {
	Model        string
	Temperature  float64 // sampling temperature, 0 for the most literal span
	ChunkSize    int     // runes per chunk, 0 for qa.DefaultChunkSize
	ChunkOverlap int
	TopK         int // chunks sent per question, 0 for 4
}

// LocalServer answers with a locally hosted OpenAI-compatible server. Only
// the chunks of the document most relevant to the question are sent.
type LocalServer struct {
	client   api.ChatCompletionClient
	embedder api.EmbeddingClient // nil ranks chunks lexically
	opts     LocalServerOptions
}

// compile-time check
var _ Answerer = (*LocalServer)(nil)

// NewLocalServer creates a LocalServer. embedder may be nil.
func NewLocalServer(client api.ChatCompletionClient, embedder api.EmbeddingClient, opts LocalServerOptions) *LocalServer {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	return &LocalServer{client: client, embedder: embedder, opts: opts}
}

// Answer sends the selected context and question and returns the reply.
func (l *LocalServer) Answer(ctx context.Context, document, question string) (string, error) {
	chunks := qa.ChunkText(document, l.opts.ChunkSize, l.opts.ChunkOverlap)
	selected, err := l.selectChunks(ctx, chunks, question)
	if err != nil {
		return "", &Error{Kind: KindLocal, Err: err}
	}

	temperature := l.opts.Temperature
	resp, err := l.client.CreateChatCompletion(ctx, &api.ChatCompletionRequest{
		Model:       l.opts.Model,
		Temperature: &temperature,
		Messages: []api.Message{
			{Role: api.RoleSystem, Content: localServerPrompt},
			{Role: api.RoleUser, Content: "Context:\n" + strings.Join(selected, "\n\n") + "\n\nQuestion: " + question},
		},
	})
	if err != nil {
		return "", &Error{Kind: KindLocal, Err: err}
	}

	content, _ := resp.FirstContent()
	content = strings.TrimSpace(content)
	if content == "" {
		return "", &Error{Kind: KindLocal, Err: errEmptyReply}
	}
	return content, nil
}

// selectChunks returns the TopK chunks most relevant to question, in
// document order.
func (l *LocalServer) selectChunks(ctx context.Context, chunks []string, question string) ([]string, error) {
	if len(chunks) <= l.opts.TopK {
		return chunks, nil
	}

	var ranked []qa.Scored
	if l.embedder != nil {
		vecs, err := l.embedder.Embed(ctx, append([]string{question}, chunks...))
		if err != nil {
			return nil, fmt.Errorf("rank chunks: %w", err)
		}
		ranked = make([]qa.Scored, len(chunks))
		for i := range chunks {
			ranked[i] = qa.Scored{Index: i, Score: qa.CosineSimilarity(vecs[0], vecs[i+1])}
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return ranked[a].Score > ranked[b].Score
		})
	} else {
		ranked = qa.Rank(chunks, question)
	}

	top := ranked[:l.opts.TopK]
	sort.Slice(top, func(a, b int) bool { return top[a].Index < top[b].Index })

	selected := make([]string, len(top))
	for i, s := range top {
		selected[i] = chunks[s.Index]
	}
	return selected, nil
}

// intParam parses params[key]. A missing or empty value is 0.
func intParam(params map[string]string, key string) (int, error) {
	v := params[key]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
