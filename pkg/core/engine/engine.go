// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docchat/pkg/core/answer"
)

// Status lines reported before each answering attempt.
const (
	StatusPrimary  = "Using OpenAI API for the response..."
	StatusFallback = "Falling back to local model..."
)

// Path names the answerer that produced a Result.
type Path string

const (
	PathPrimary  Path = "primary"
	PathFallback Path = "fallback"
)

// Result is a successful answer.
type Result struct {
	Text      string
	Path      Path
	RequestID string
}

// StatusFunc receives a status line before each answering attempt.
type StatusFunc func(status string)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStatus sets the status callback.
func WithStatus(fn StatusFunc) Option {
	return func(e *Engine) { e.status = fn }
}

// Engine answers questions with the primary answerer, switching to the
// fallback answerer only when the primary reports exhausted quota.
type Engine struct {
	primary  answer.Answerer
	fallback answer.Answerer
	logger   *slog.Logger
	status   StatusFunc
}

// New creates an Engine.
func New(primary, fallback answer.Answerer, opts ...Option) (*Engine, error) {
	if primary == nil {
		return nil, fmt.Errorf("primary answerer is required")
	}
	if fallback == nil {
		return nil, fmt.Errorf("fallback answerer is required")
	}

	e := &Engine{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type state int

const (
	tryPrimary state = iota
	tryFallback
)

// Ask answers question about document. Errors are *answer.Error values whose
// message is meant for the user.
func (e *Engine) Ask(ctx context.Context, document, question string) (*Result, error) {
	requestID := uuid.NewString()
	logger := e.logger.With("request_id", requestID)

	st := tryPrimary
	for {
		var (
			ans  answer.Answerer
			path Path
		)
		switch st {
		case tryPrimary:
			e.report(StatusPrimary)
			ans, path = e.primary, PathPrimary
		case tryFallback:
			e.report(StatusFallback)
			ans, path = e.fallback, PathFallback
		}

		start := time.Now()
		text, err := ans.Answer(ctx, document, question)
		if err == nil {
			logger.Info("Question answered", "path", path, "duration", time.Since(start))
			return &Result{Text: text, Path: path, RequestID: requestID}, nil
		}

		if st == tryPrimary && answer.IsQuotaExceeded(err) {
			logger.Info("Primary quota exceeded, falling back", "error", err)
			st = tryFallback
			continue
		}

		if answer.KindOf(err) == 0 {
			kind := answer.KindRemote
			if path == PathFallback {
				kind = answer.KindLocal
			}
			err = &answer.Error{Kind: kind, Err: err}
		}
		logger.Info("Answering failed", "path", path, "kind", answer.KindOf(err).String(), "error", err)
		return nil, err
	}
}

func (e *Engine) report(status string) {
	if e.status != nil {
		e.status(status)
	}
}
