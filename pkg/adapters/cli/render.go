// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns an answer written in markdown into terminal output.
type Renderer func(markdown string) (string, error)

// Render modes accepted by ShouldRender.
const (
	RenderAuto     = "auto"
	RenderMarkdown = "markdown"
	RenderPlain    = "plain"
)

const defaultWrap = 80

// NewMarkdownRenderer returns a Renderer backed by glamour, wrapping at
// width columns (80 when width <= 0).
func NewMarkdownRenderer(width int) (Renderer, error) {
	if width <= 0 {
		width = defaultWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// ShouldRender reports whether answers written to out should be rendered
// as markdown under mode. "auto" renders only when out is a terminal.
func ShouldRender(mode string, out *os.File) bool {
	switch mode {
	case RenderMarkdown:
		return true
	case RenderPlain:
		return false
	default:
		return out != nil && term.IsTerminal(int(out.Fd()))
	}
}

// TerminalWidth returns the width of out, or 0 when it is not a terminal.
func TerminalWidth(out *os.File) int {
	if out == nil {
		return 0
	}
	w, _, err := term.GetSize(int(out.Fd()))
	if err != nil {
		return 0
	}
	return w
}
