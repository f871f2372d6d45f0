// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

// Package answer turns a document and a question into an answer, either with
// the remote chat-completion service (Primary) or with a local model
// registered in Fallbacks.
package answer

import (
	"context"
	"errors"

	"github.com/leseb/docchat/pkg/provider"
)

// QuotaExceededMessage is shown when the remote service refuses a request
// because the account is out of quota.
const QuotaExceededMessage = "You have exceeded your OpenAI API quota. Please upgrade your plan or try later."

// Answerer answers a question about a document.
type Answerer interface {
	Answer(ctx context.Context, document, question string) (string, error)
}

// Fallbacks is the registry of local answerers, keyed by fallback type.
// "extractive" and "local_server" are registered by this package.
var Fallbacks = provider.NewRegistry[Answerer]("fallback")

// Kind classifies an answering failure.
type Kind int

const (
	// KindRemote is any failure of the remote service other than quota.
	KindRemote Kind = iota + 1
	// KindQuotaExceeded means the remote service refused for quota reasons.
	KindQuotaExceeded
	// KindLocal is a failure of the local model.
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Error is an answering failure with a Kind. Its message is the text shown
// to the user in place of an answer.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindQuotaExceeded:
		return QuotaExceededMessage
	case KindLocal:
		return "An error occurred with the local model: " + e.detail()
	default:
		return "An error occurred with the API: " + e.detail()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) detail() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsQuotaExceeded reports whether err is a KindQuotaExceeded failure.
func IsQuotaExceeded(err error) bool {
	return KindOf(err) == KindQuotaExceeded
}
