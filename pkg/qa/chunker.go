// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package qa

import "unicode"

// DefaultChunkSize is the default chunk size in characters.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default overlap between chunks in characters.
const DefaultChunkOverlap = 200

// ChunkText splits text into chunks of at most chunkSize runes, consecutive
// chunks sharing overlap runes. A chunk ends after the last whitespace in the
// second half of its window when there is one, so words are rarely cut.
// If chunkSize <= 0, DefaultChunkSize is used. If overlap < 0 or >= chunkSize,
// DefaultChunkOverlap is used (clamped to < chunkSize). The overlap never
// exceeds half of the chunk it follows, so every step advances by at least
// chunkSize/4 runes.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 4
		}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		half := start + chunkSize/2
		for i := end - 1; i >= half && i > start; i-- {
			if unicode.IsSpace(runes[i]) {
				end = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[start:end]))

		ov := overlap
		if span := end - start; ov > span/2 {
			ov = span / 2
		}
		start = end - ov
	}

	return chunks
}
