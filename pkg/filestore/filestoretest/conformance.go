// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestoretest provides a shared conformance test suite for
// filestore.Source implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package filestoretest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/leseb/docchat/pkg/filestore"
)

// Seeder stores content under name in the backend under test and returns
// the location that Open should accept.
type Seeder func(t *testing.T, name string, content []byte) string

// RunConformanceTests exercises a Source implementation against the shared
// contract. newSource is called once per sub-test to provide an isolated
// source and a way to seed it. missing must be a location the backend
// recognizes but that holds no document.
func RunConformanceTests(t *testing.T, newSource func(t *testing.T) (filestore.Source, Seeder), missing string) {
	t.Helper()

	t.Run("OpenReturnsContent", func(t *testing.T) {
		src, seed := newSource(t)
		defer src.Close(context.Background())

		want := []byte("Paris is the capital of France.")
		location := seed(t, "notes.txt", want)

		doc, err := src.Open(context.Background(), location)
		if err != nil {
			t.Fatalf("Open(%q): %v", location, err)
		}
		if !bytes.Equal(doc.Content, want) {
			t.Errorf("Content = %q, want %q", doc.Content, want)
		}
		if doc.Name != "notes.txt" {
			t.Errorf("Name = %q, want notes.txt", doc.Name)
		}
		if doc.Location != location {
			t.Errorf("Location = %q, want %q", doc.Location, location)
		}
	})

	t.Run("OpenMissing", func(t *testing.T) {
		src, _ := newSource(t)
		defer src.Close(context.Background())

		_, err := src.Open(context.Background(), missing)
		if !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("Open(%q) error = %v, want ErrFileNotFound", missing, err)
		}
	})

	t.Run("ContentIsACopy", func(t *testing.T) {
		src, seed := newSource(t)
		defer src.Close(context.Background())

		location := seed(t, "data.csv", []byte("a,b\n1,2"))

		first, err := src.Open(context.Background(), location)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		first.Content[0] = 'X'

		second, err := src.Open(context.Background(), location)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if second.Content[0] != 'a' {
			t.Errorf("mutating a returned document changed the source: %q", second.Content)
		}
	})
}
