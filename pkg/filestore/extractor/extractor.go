// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedType is returned for file extensions with no extractor.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmptyContent is returned when a document holds no visible text.
	ErrEmptyContent = errors.New("document contains no text")
)

// Error reports a failed extraction. Its message keeps the
// "Error extracting content from file: " prefix users see on startup.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return "Error extracting content from file: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type extractFunc func(content []byte) (string, error)

var extractors = map[string]extractFunc{
	".txt":   extractText,
	".md":    extractText,
	".pdf":   extractPDF,
	".docx":  extractDOCX,
	".csv":   extractCSV,
	".html":  extractHTML,
	".htm":   extractHTML,
	".json":  extractJSON,
	".jsonl": extractJSONL,
}

// Supported reports whether filename has an extension ExtractText handles.
func Supported(filename string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions returns the supported extensions in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractText extracts plain text from file content based on the file extension.
// Every failure is returned as an *Error.
func ExtractText(content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extract, ok := extractors[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return "", &Error{File: filename, Err: fmt.Errorf("%w: %s", ErrUnsupportedType, ext)}
	}

	text, err := extract(content)
	if err != nil {
		return "", &Error{File: filename, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{File: filename, Err: ErrEmptyContent}
	}
	return text, nil
}
