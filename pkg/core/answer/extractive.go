// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package answer

import (
	"context"

	"github.com/leseb/docchat/pkg/qa"
)

func init() {
	Fallbacks.Register("extractive", func(_ context.Context, _ map[string]string) (Answerer, error) {
		return NewExtractive(), nil
	})
}

// Extractive answers with the in-process extractive model.
type Extractive struct {
	model *qa.Model
}

// compile-time check
var _ Answerer = (*Extractive)(nil)

// NewExtractive creates an Extractive answerer.
func NewExtractive() *Extractive {
	return &Extractive{model: qa.NewModel()}
}

// Answer returns the span of document that best answers question.
func (e *Extractive) Answer(ctx context.Context, document, question string) (string, error) {
	res, err := e.model.Answer(ctx, document, question)
	if err != nil {
		return "", &Error{Kind: KindLocal, Err: err}
	}
	return res.Answer, nil
}
