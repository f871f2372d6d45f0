// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// extractHTML returns the visible text of an HTML document, one space
// between text nodes. Script, style and noscript subtrees are dropped.
func extractHTML(content []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var parts []string
	collectVisibleText(doc, &parts)
	return strings.Join(parts, " "), nil
}

func collectVisibleText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}

	if n.Type == html.TextNode {
		if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
			*parts = append(*parts, text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectVisibleText(c, parts)
	}
}
