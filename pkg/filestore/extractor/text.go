// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"errors"
	"unicode/utf8"
)

// extractText returns UTF-8 content as-is.
func extractText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("'utf-8' codec can't decode file content")
	}
	return string(content), nil
}
