// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leseb/docchat/pkg/core/answer"
	"github.com/leseb/docchat/pkg/core/engine"
	"github.com/leseb/docchat/pkg/filestore"
	"github.com/leseb/docchat/pkg/filestore/extractor"
	"github.com/leseb/docchat/pkg/filestore/memory"
)

type fakeAsker struct {
	questions []string
	documents []string
	reply     string
	err       error
}

func (f *fakeAsker) Ask(_ context.Context, document, question string) (*engine.Result, error) {
	f.questions = append(f.questions, question)
	f.documents = append(f.documents, document)
	if f.err != nil {
		return nil, f.err
	}
	return &engine.Result{Text: f.reply, Path: engine.PathPrimary}, nil
}

func newStore(t *testing.T) (*memory.Store, string) {
	t.Helper()
	store := memory.New()
	return store, store.Put("notes.txt", []byte("Paris is the capital of France."))
}

func run(t *testing.T, opts Options, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	opts.In = strings.NewReader(input)
	opts.Out = &out
	err := New(opts).Run(context.Background())
	return out.String(), err
}

func TestRun_Transcript(t *testing.T) {
	store, loc := newStore(t)
	asker := &fakeAsker{reply: "Paris"}

	out, err := run(t, Options{Source: store, Asker: asker}, loc+"\nWhat is the capital of France?\nexit\n")
	require.NoError(t, err)

	want := Welcome + "\n" +
		FilePrompt + Loaded + "\n" +
		"\n" + QuestionHint + "Answer: Paris\n" +
		"\n" + QuestionHint + Goodbye + "\n"
	assert.Equal(t, want, out)
	assert.Equal(t, []string{"What is the capital of France?"}, asker.questions)
	assert.Equal(t, []string{"Paris is the capital of France."}, asker.documents)
}

func TestRun_ExitIsCaseInsensitive(t *testing.T) {
	for _, word := range []string{"exit", "EXIT", "Exit"} {
		t.Run(word, func(t *testing.T) {
			store, loc := newStore(t)
			asker := &fakeAsker{reply: "x"}
			out, err := run(t, Options{Source: store, Asker: asker}, loc+"\n"+word+"\n")
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(out, Goodbye+"\n"))
			assert.Empty(t, asker.questions)
		})
	}
}

func TestRun_OnlyExactExitEnds(t *testing.T) {
	store, loc := newStore(t)
	asker := &fakeAsker{reply: "x"}
	out, err := run(t, Options{Source: store, Asker: asker}, loc+"\n exit\nexit now\nquit\nexit\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"exit", "exit now", "quit"}, asker.questions)
	assert.Equal(t, 1, strings.Count(out, Goodbye))
}

func TestRun_BlankQuestionReprompts(t *testing.T) {
	store, loc := newStore(t)
	asker := &fakeAsker{reply: "x"}
	out, err := run(t, Options{Source: store, Asker: asker}, loc+"\n\n   \nexit\n")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, QuestionHint))
	assert.Empty(t, asker.questions)
}

func TestRun_EOFEndsSession(t *testing.T) {
	store, loc := newStore(t)
	asker := &fakeAsker{reply: "Paris"}
	out, err := run(t, Options{Source: store, Asker: asker}, loc+"\nWhat is the capital of France?")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer: Paris\n")
	assert.True(t, strings.HasSuffix(out, Goodbye+"\n"))
	assert.Len(t, asker.questions, 1)
}

func TestRun_EOFBeforePath(t *testing.T) {
	store, _ := newStore(t)
	_, err := run(t, Options{Source: store, Asker: &fakeAsker{}}, "")
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.True(t, Reported(err))
}

func TestRun_ErrorsPrintedAsAnswers(t *testing.T) {
	store, loc := newStore(t)
	asker := &fakeAsker{err: &answer.Error{Kind: answer.KindRemote, Err: errors.New("invalid api key")}}
	out, err := run(t, Options{Source: store, Asker: asker}, loc+"\nq1\nq2\nexit\n")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Answer: An error occurred with the API: invalid api key\n"))
}

func TestRun_MissingFileAborts(t *testing.T) {
	store, _ := newStore(t)
	asker := &fakeAsker{}
	out, err := run(t, Options{Source: store, Asker: asker}, "memory://missing.txt\nq\n")
	require.Error(t, err)
	assert.True(t, Reported(err))
	assert.ErrorIs(t, err, filestore.ErrFileNotFound)

	var extErr *extractor.Error
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, out, "Error extracting content from file: ")
	assert.NotContains(t, out, Loaded)
	assert.Empty(t, asker.questions)
}

func TestRun_UnsupportedTypeAborts(t *testing.T) {
	store := memory.New()
	loc := store.Put("slides.pptx", []byte("binary"))
	out, err := run(t, Options{Source: store, Asker: &fakeAsker{}}, loc+"\n")
	assert.ErrorIs(t, err, extractor.ErrUnsupportedType)
	assert.Contains(t, out, "Error extracting content from file: unsupported file type")
}

func TestRun_PrefilledLocationSkipsPrompt(t *testing.T) {
	store, loc := newStore(t)
	out, err := run(t, Options{Source: store, Asker: &fakeAsker{reply: "x"}, Location: loc}, "exit\n")
	require.NoError(t, err)
	assert.NotContains(t, out, FilePrompt)
	assert.Contains(t, out, Loaded)
}

func TestRun_RendererApplied(t *testing.T) {
	store, loc := newStore(t)
	render := func(md string) (string, error) { return "\n  <" + md + ">\n", nil }
	out, err := run(t, Options{Source: store, Asker: &fakeAsker{reply: "**Paris**"}, Renderer: render}, loc+"\nq\nexit\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer: <**Paris**>\n")
}

func TestRun_RendererFailureFallsBackToPlain(t *testing.T) {
	store, loc := newStore(t)
	render := func(string) (string, error) { return "", errors.New("no style") }
	out, err := run(t, Options{Source: store, Asker: &fakeAsker{reply: "Paris"}, Renderer: render}, loc+"\nq\nexit\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer: Paris\n")
}

func TestRun_CanceledWhileWaiting(t *testing.T) {
	store, _ := newStore(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(Options{In: pr, Out: &out, Source: store, Asker: &fakeAsker{}}).Run(ctx)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), Loaded)
	assert.True(t, strings.HasSuffix(out.String(), Goodbye+"\n"))
}

// scripted is an answer.Answerer with a fixed outcome.
type scripted struct {
	text string
	err  error
}

func (s scripted) Answer(context.Context, string, string) (string, error) { return s.text, s.err }

func TestRun_WithEngineFallback(t *testing.T) {
	store, loc := newStore(t)
	var out bytes.Buffer

	eng, err := engine.New(
		scripted{err: &answer.Error{Kind: answer.KindQuotaExceeded}},
		answer.NewExtractive(),
		engine.WithStatus(func(s string) { fmt.Fprintln(&out, s) }),
	)
	require.NoError(t, err)

	session := New(Options{
		In:     strings.NewReader(loc + "\nWhat is the capital of France?\nexit\n"),
		Out:    &out,
		Source: store,
		Asker:  eng,
	})
	require.NoError(t, session.Run(context.Background()))

	assert.Contains(t, out.String(),
		engine.StatusPrimary+"\n"+engine.StatusFallback+"\nAnswer: Paris\n")
}
