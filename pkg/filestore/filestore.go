// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package filestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/leseb/docchat/pkg/provider"
)

var (
	// ErrFileNotFound is returned when a document does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when a document exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Providers is the registry of document source implementations, keyed by
// location scheme. Import implementation packages with blank imports to
// register them:
//
//	import _ "github.com/leseb/docchat/pkg/filestore/filesystem"
//	import _ "github.com/leseb/docchat/pkg/filestore/s3"
var Providers = provider.NewRegistry[Source]("document_source")

// Document is a file read from a source.
type Document struct {
	Name     string // base name, used to pick an extractor
	Location string // as given by the user
	Content  []byte
}

// DefaultMaxFileSize bounds documents when no max_file_size param is given.
const DefaultMaxFileSize int64 = 20 << 20

// MaxFileSize reads the "max_file_size" provider param.
func MaxFileSize(params map[string]string) int64 {
	if n, err := strconv.ParseInt(params["max_file_size"], 10, 64); err == nil && n > 0 {
		return n
	}
	return DefaultMaxFileSize
}

// Source reads documents from one kind of storage.
type Source interface {
	Open(ctx context.Context, location string) (*Document, error)
	Close(ctx context.Context) error
}

// Scheme returns the provider name for a location: the URI scheme when one
// is present ("s3://bucket/key" -> "s3"), otherwise "file".
func Scheme(location string) string {
	if i := strings.Index(location, "://"); i > 0 {
		return strings.ToLower(location[:i])
	}
	return "file"
}

// BaseName returns the last path element of a location, ignoring any scheme.
func BaseName(location string) string {
	if i := strings.Index(location, "://"); i > 0 {
		location = location[i+3:]
	}
	location = strings.ReplaceAll(location, "\\", "/")
	return path.Base(location)
}

// CleanLocation trims whitespace and the quotes terminals add around
// dragged-in paths.
func CleanLocation(location string) string {
	location = strings.TrimSpace(location)
	if len(location) >= 2 {
		first, last := location[0], location[len(location)-1]
		if (first == '"' || first == '\'') && first == last {
			location = location[1 : len(location)-1]
		}
	}
	return location
}

// Router dispatches locations to sources by scheme, creating each source
// on first use from Providers.
type Router struct {
	params map[string]string

	mu      sync.Mutex
	sources map[string]Source
}

// compile-time check
var _ Source = (*Router)(nil)

// NewRouter creates a Router. params are passed to every provider factory.
func NewRouter(params map[string]string) *Router {
	return &Router{
		params:  params,
		sources: make(map[string]Source),
	}
}

// Open implements Source.
func (r *Router) Open(ctx context.Context, location string) (*Document, error) {
	location = CleanLocation(location)
	if location == "" {
		return nil, fmt.Errorf("empty location: %w", ErrFileNotFound)
	}

	src, err := r.source(ctx, Scheme(location))
	if err != nil {
		return nil, err
	}
	return src.Open(ctx, location)
}

func (r *Router) source(ctx context.Context, scheme string) (Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if src, ok := r.sources[scheme]; ok {
		return src, nil
	}
	src, err := Providers.New(ctx, scheme, r.params)
	if err != nil {
		return nil, err
	}
	r.sources[scheme] = src
	return src, nil
}

// Close releases every source the router created.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for scheme, src := range r.sources {
		if err := src.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s source: %w", scheme, err))
		}
		delete(r.sources, scheme)
	}
	return errors.Join(errs...)
}
