// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON pretty-prints a JSON document so nested keys read as text.
func extractJSON(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return "", fmt.Errorf("parse JSON: %w", err)
	}
	return buf.String(), nil
}

// extractJSONL pretty-prints each record of a JSON Lines file. Lines that
// are not valid JSON are kept verbatim.
func extractJSONL(content []byte) (string, error) {
	var records []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(line), "", "  "); err != nil {
			records = append(records, line)
			continue
		}
		records = append(records, buf.String())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read JSONL: %w", err)
	}
	return strings.Join(records, "\n"), nil
}
