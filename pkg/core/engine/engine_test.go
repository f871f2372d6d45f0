// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leseb/docchat/pkg/core/answer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scripted is an Answerer that returns a fixed outcome and counts calls.
type scripted struct {
	text  string
	err   error
	calls int
}

func (s *scripted) Answer(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

func newEngine(t *testing.T, primary, fallback answer.Answerer) (*Engine, *[]string) {
	t.Helper()
	var statuses []string
	eng, err := New(primary, fallback,
		WithStatus(func(s string) { statuses = append(statuses, s) }),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	require.NoError(t, err)
	return eng, &statuses
}

func TestNew_RequiresAnswerers(t *testing.T) {
	_, err := New(nil, &scripted{})
	assert.Error(t, err)
	_, err = New(&scripted{}, nil)
	assert.Error(t, err)
}

func TestAsk_PrimarySuccess(t *testing.T) {
	primary := &scripted{text: "Paris"}
	fallback := &scripted{text: "unused"}
	eng, statuses := newEngine(t, primary, fallback)

	res, err := eng.Ask(context.Background(), "doc", "q")
	require.NoError(t, err)
	assert.Equal(t, "Paris", res.Text)
	assert.Equal(t, PathPrimary, res.Path)
	assert.Equal(t, []string{StatusPrimary}, *statuses)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)

	_, err = uuid.Parse(res.RequestID)
	assert.NoError(t, err)
}

func TestAsk_QuotaFallsBack(t *testing.T) {
	primary := &scripted{err: &answer.Error{Kind: answer.KindQuotaExceeded}}
	fallback := &scripted{text: "Paris"}
	eng, statuses := newEngine(t, primary, fallback)

	res, err := eng.Ask(context.Background(), "doc", "q")
	require.NoError(t, err)
	assert.Equal(t, "Paris", res.Text)
	assert.Equal(t, PathFallback, res.Path)
	assert.Equal(t, []string{StatusPrimary, StatusFallback}, *statuses)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestAsk_RemoteErrorDoesNotFallBack(t *testing.T) {
	primary := &scripted{err: &answer.Error{Kind: answer.KindRemote, Err: errors.New("invalid api key")}}
	fallback := &scripted{text: "unused"}
	eng, statuses := newEngine(t, primary, fallback)

	res, err := eng.Ask(context.Background(), "doc", "q")
	assert.Nil(t, res)
	assert.EqualError(t, err, "An error occurred with the API: invalid api key")
	assert.Equal(t, []string{StatusPrimary}, *statuses)
	assert.Zero(t, fallback.calls)
}

func TestAsk_FallbackFailure(t *testing.T) {
	primary := &scripted{err: &answer.Error{Kind: answer.KindQuotaExceeded}}
	fallback := &scripted{err: &answer.Error{Kind: answer.KindLocal, Err: errors.New("model missing")}}
	eng, _ := newEngine(t, primary, fallback)

	_, err := eng.Ask(context.Background(), "doc", "q")
	assert.EqualError(t, err, "An error occurred with the local model: model missing")
	assert.Equal(t, answer.KindLocal, answer.KindOf(err))
	assert.Equal(t, 1, fallback.calls)
}

func TestAsk_FallbackQuotaIsTerminal(t *testing.T) {
	quota := &answer.Error{Kind: answer.KindQuotaExceeded}
	primary := &scripted{err: quota}
	fallback := &scripted{err: quota}
	eng, _ := newEngine(t, primary, fallback)

	_, err := eng.Ask(context.Background(), "doc", "q")
	assert.ErrorIs(t, err, quota)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestAsk_UntypedErrorsAreClassified(t *testing.T) {
	eng, _ := newEngine(t, &scripted{err: errors.New("boom")}, &scripted{})
	_, err := eng.Ask(context.Background(), "doc", "q")
	assert.Equal(t, answer.KindRemote, answer.KindOf(err))

	eng, _ = newEngine(t, &scripted{err: &answer.Error{Kind: answer.KindQuotaExceeded}}, &scripted{err: errors.New("boom")})
	_, err = eng.Ask(context.Background(), "doc", "q")
	assert.Equal(t, answer.KindLocal, answer.KindOf(err))
	assert.EqualError(t, err, "An error occurred with the local model: boom")
}

func TestAsk_RequestIDsAreUnique(t *testing.T) {
	eng, _ := newEngine(t, &scripted{text: "a"}, &scripted{})
	first, err := eng.Ask(context.Background(), "doc", "q")
	require.NoError(t, err)
	second, err := eng.Ask(context.Background(), "doc", "q")
	require.NoError(t, err)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestAsk_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	eng, err := New(&scripted{text: "a"}, &scripted{},
		WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))))
	require.NoError(t, err)

	res, err := eng.Ask(context.Background(), "doc", "q")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "request_id="+res.RequestID)
	assert.Contains(t, buf.String(), "path=primary")
}
