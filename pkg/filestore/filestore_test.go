// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package filestore

import (
	"context"
	"errors"
	"testing"
)

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"notes.txt":             "file",
		"/home/me/notes.txt":    "file",
		`C:\docs\notes.txt`:     "file",
		"file:///tmp/notes.txt": "file",
		"s3://bucket/notes.txt": "s3",
		"S3://bucket/notes.txt": "s3",
		"memory://notes.txt":    "memory",
	}
	for location, want := range tests {
		if got := Scheme(location); got != want {
			t.Errorf("Scheme(%q) = %q, want %q", location, got, want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"notes.txt":                  "notes.txt",
		"/home/me/report.pdf":        "report.pdf",
		`C:\docs\memo.docx`:          "memo.docx",
		"s3://bucket/reports/q1.csv": "q1.csv",
		"file:///tmp/dir/page.html":  "page.html",
	}
	for location, want := range tests {
		if got := BaseName(location); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", location, got, want)
		}
	}
}

func TestCleanLocation(t *testing.T) {
	tests := map[string]string{
		"  notes.txt \n":      "notes.txt",
		`"/tmp/my notes.txt"`: "/tmp/my notes.txt",
		`'/tmp/a.pdf'`:        "/tmp/a.pdf",
		`"unbalanced`:         `"unbalanced`,
	}
	for in, want := range tests {
		if got := CleanLocation(in); got != want {
			t.Errorf("CleanLocation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaxFileSize(t *testing.T) {
	if got := MaxFileSize(nil); got != DefaultMaxFileSize {
		t.Errorf("MaxFileSize(nil) = %d, want default", got)
	}
	if got := MaxFileSize(map[string]string{"max_file_size": "42"}); got != 42 {
		t.Errorf("MaxFileSize = %d, want 42", got)
	}
	if got := MaxFileSize(map[string]string{"max_file_size": "-1"}); got != DefaultMaxFileSize {
		t.Errorf("negative size should fall back to default, got %d", got)
	}
}

func TestRouter_UnknownScheme(t *testing.T) {
	router := NewRouter(nil)
	_, err := router.Open(context.Background(), "gopher://host/file.txt")
	if err == nil {
		t.Fatal("expected error for unregistered scheme")
	}
}

func TestRouter_EmptyLocation(t *testing.T) {
	router := NewRouter(nil)
	_, err := router.Open(context.Background(), "   ")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
