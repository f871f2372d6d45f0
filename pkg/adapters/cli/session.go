// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli drives an interactive question-and-answer session over a
// single document on a text stream.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leseb/docchat/pkg/core/engine"
	"github.com/leseb/docchat/pkg/filestore"
	"github.com/leseb/docchat/pkg/filestore/extractor"
)

// Prompts and messages printed by a Session.
const (
	Welcome      = "Welcome to the AI File-Based Chatbot!"
	FilePrompt   = "Please upload a file (path): "
	Loaded       = "File successfully loaded. You can now ask questions based on the uploaded file."
	QuestionHint = "Your question (type 'exit' to quit): "
	Goodbye      = "Goodbye!"
)

// ErrNoDocument is returned when input ends before a file path is given.
var ErrNoDocument = errors.New("no file path provided")

// Asker answers a question about a document.
type Asker interface {
	Ask(ctx context.Context, document, question string) (*engine.Result, error)
}

// Options configures a Session.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Source   filestore.Source
	Asker    Asker
	Renderer Renderer     // nil prints answers as plain text
	Logger   *slog.Logger // nil uses slog.Default()
	Location string       // skips the file prompt when set
}

// Session is one run of the chatbot: load a document, then answer
// questions until the user leaves.
type Session struct {
	in       io.Reader
	out      io.Writer
	source   filestore.Source
	asker    Asker
	render   Renderer
	logger   *slog.Logger
	location string
}

// New creates a Session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		in:       opts.In,
		out:      opts.Out,
		source:   opts.Source,
		asker:    opts.Asker,
		render:   opts.Renderer,
		logger:   logger,
		location: opts.Location,
	}
}

// Run executes the session. It returns nil when the user exits, input ends
// after the document is loaded, or ctx is canceled while waiting for input. A document that cannot
// be loaded ends the session with an error that has already been printed.
func (s *Session) Run(ctx context.Context) error {
	lines := newLineReader(s.in)
	defer lines.stop()

	fmt.Fprintln(s.out, Welcome)

	location := s.location
	if location == "" {
		fmt.Fprint(s.out, FilePrompt)
		line, err := lines.next(ctx)
		if err != nil {
			fmt.Fprintln(s.out)
			if ctx.Err() != nil {
				fmt.Fprintln(s.out, Goodbye)
				return nil
			}
			if errors.Is(err, io.EOF) {
				return reported(ErrNoDocument)
			}
			return err
		}
		location = line
	}

	document, err := s.load(ctx, location)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return reported(err)
	}
	fmt.Fprintln(s.out, Loaded)

	for {
		fmt.Fprint(s.out, "\n"+QuestionHint)
		line, err := lines.next(ctx)
		if err != nil {
			// EOF and interrupts end the session like "exit".
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, Goodbye)
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if strings.EqualFold(line, "exit") {
			fmt.Fprintln(s.out, Goodbye)
			return nil
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}

		res, err := s.asker.Ask(ctx, document, question)
		if ctx.Err() != nil {
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, Goodbye)
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "Answer: %s\n", err)
			continue
		}
		fmt.Fprintf(s.out, "Answer: %s\n", s.format(res.Text))
	}
}

// load reads the document at location and extracts its text. Every failure
// is an *extractor.Error.
func (s *Session) load(ctx context.Context, location string) (string, error) {
	doc, err := s.source.Open(ctx, location)
	if err != nil {
		return "", &extractor.Error{File: location, Err: err}
	}

	text, err := extractor.ExtractText(doc.Content, doc.Name)
	if err != nil {
		return "", err
	}
	s.logger.Info("Document loaded",
		"name", doc.Name,
		"bytes", len(doc.Content),
		"chars", len([]rune(text)))
	return text, nil
}

func (s *Session) format(text string) string {
	if s.render == nil {
		return text
	}
	out, err := s.render(text)
	if err != nil {
		s.logger.Debug("Markdown rendering failed", "error", err)
		return text
	}
	return strings.TrimSpace(out)
}

// reportedError marks an error the session already showed the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error { return &reportedError{err: err} }

// Reported reports whether err was already printed by a Session.
func Reported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}

// lineReader reads lines on a goroutine so a pending read does not block
// cancellation.
type lineReader struct {
	lines chan lineResult
	done  chan struct{}
}

type lineResult struct {
	text string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
	go lr.pump(bufio.NewReader(r))
	return lr
}

func (lr *lineReader) pump(br *bufio.Reader) {
	defer close(lr.lines)
	for {
		text, err := br.ReadString('\n')
		if text != "" {
			select {
			case lr.lines <- lineResult{text: strings.TrimRight(text, "\r\n")}:
			case <-lr.done:
				return
			}
		}
		if err != nil {
			select {
			case lr.lines <- lineResult{err: err}:
			case <-lr.done:
			}
			return
		}
	}
}

func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

func (lr *lineReader) stop() {
	close(lr.done)
}
