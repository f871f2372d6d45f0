// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"

	"github.com/leseb/docchat/pkg/filestore"
	"github.com/leseb/docchat/pkg/filestore/filestoretest"
)

func TestMemoryConformance(t *testing.T) {
	filestoretest.RunConformanceTests(t, func(t *testing.T) (filestore.Source, filestoretest.Seeder) {
		store := New()
		return store, func(_ *testing.T, name string, content []byte) string {
			return store.Put(name, content)
		}
	}, "memory://absent.txt")
}

func TestMemoryViaRouter(t *testing.T) {
	location := Default.Put("router.txt", []byte("routed"))

	router := filestore.NewRouter(nil)
	defer router.Close(context.Background())

	doc, err := router.Open(context.Background(), location)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(doc.Content) != "routed" {
		t.Errorf("Content = %q, want routed", doc.Content)
	}
}
