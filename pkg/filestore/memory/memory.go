// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory is an in-memory document source. The docchat binary does
// not link it; tests and programs embedding the session import it to
// serve documents they hold in memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leseb/docchat/pkg/filestore"
)

func init() {
	filestore.Providers.Register("memory", func(_ context.Context, _ map[string]string) (filestore.Source, error) {
		return Default, nil
	})
}

// Default is the store behind memory:// locations resolved through the
// provider registry.
var Default = New()

// compile-time check
var _ filestore.Source = (*Store)(nil)

// Store is an in-memory document source addressed as memory://<name>.
type Store struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New creates a new in-memory document source.
func New() *Store {
	return &Store{
		files: make(map[string][]byte),
	}
}

// Put stores content under name and returns its location.
func (s *Store) Put(name string, content []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[name] = append([]byte(nil), content...)
	return "memory://" + name
}

// Open returns a copy of the stored content.
func (s *Store) Open(_ context.Context, location string) (*filestore.Document, error) {
	name := filestore.BaseName(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, filestore.ErrFileNotFound)
	}
	return &filestore.Document{
		Name:     name,
		Location: location,
		Content:  append([]byte(nil), content...),
	}, nil
}

// Close is a no-op.
func (s *Store) Close(_ context.Context) error {
	return nil
}
