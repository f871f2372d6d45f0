// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leseb/docchat/pkg/filestore"
)

func init() {
	filestore.Providers.Register("file", func(_ context.Context, params map[string]string) (filestore.Source, error) {
		return New(filestore.MaxFileSize(params)), nil
	})
}

// compile-time check
var _ filestore.Source = (*Store)(nil)

// Store reads documents from the local filesystem. Locations are plain
// paths or file:// URIs; a leading "~/" expands to the home directory.
type Store struct {
	maxSize int64
}

// New creates a filesystem source that rejects files larger than maxSize bytes.
func New(maxSize int64) *Store {
	if maxSize <= 0 {
		maxSize = filestore.DefaultMaxFileSize
	}
	return &Store{maxSize: maxSize}
}

// Open reads the whole file at location.
func (s *Store) Open(_ context.Context, location string) (*filestore.Document, error) {
	path, err := resolvePath(location)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > s.maxSize {
		return nil, fmt.Errorf("%s: %d bytes (max %d): %w", path, info.Size(), s.maxSize, filestore.ErrFileTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &filestore.Document{
		Name:     filepath.Base(path),
		Location: location,
		Content:  content,
	}, nil
}

// Close is a no-op.
func (s *Store) Close(_ context.Context) error {
	return nil
}

func resolvePath(location string) (string, error) {
	path := strings.TrimPrefix(location, "file://")
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
