// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package qa

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a word in a source text. Start and End are byte offsets.
type Token struct {
	Text  string
	Term  string // normalized form used for matching
	Start int
	End   int
}

// Span is a sentence or passage of a source text. Start and End are byte offsets.
type Span struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into letter/digit runs. Apostrophes and hyphens
// inside a word are kept.
func Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	for i, r := range text {
		inWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if !inWord && start >= 0 && (r == '\'' || r == '’' || r == '-') {
			next, _ := utf8.DecodeRuneInString(text[i+utf8.RuneLen(r):])
			inWord = unicode.IsLetter(next) || unicode.IsDigit(next)
		}
		switch {
		case inWord && start < 0:
			start = i
		case !inWord && start >= 0:
			tokens = append(tokens, newToken(text, start, i))
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, newToken(text, start, len(text)))
	}
	return tokens
}

func newToken(text string, start, end int) Token {
	word := text[start:end]
	return Token{Text: word, Term: normalize(word), Start: start, End: end}
}

// normalize lowercases a word and strips possessives and plural endings.
func normalize(word string) string {
	w := strings.ToLower(word)
	w = strings.TrimSuffix(w, "'s")
	w = strings.TrimSuffix(w, "’s")
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		w = w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us"):
		w = w[:len(w)-1]
	}
	return w
}

// SplitSentences splits text at sentence-ending punctuation followed by
// whitespace, and at line breaks. Empty sentences are dropped.
func SplitSentences(text string) []Span {
	var spans []Span
	start := 0
	emit := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			offset := start + strings.Index(raw, trimmed)
			spans = append(spans, Span{Text: trimmed, Start: offset, End: offset + len(trimmed)})
		}
		start = end
	}

	for i, r := range text {
		switch r {
		case '\n', '\r':
			emit(i)
		case '.', '!', '?':
			next := i + 1
			if next >= len(text) {
				continue
			}
			if nr, _ := utf8.DecodeRuneInString(text[next:]); unicode.IsSpace(nr) {
				emit(next)
			}
		}
	}
	emit(len(text))
	return spans
}

var stopWords = func() map[string]bool {
	words := strings.Fields(`
		a about above after again against all am an and any are as at be because been
		before being below between both but by can could did do does doing down during
		each few for from further had has have having he her here hers herself him
		himself his how i if in into is it its itself just me more most my myself no
		nor not now of off on once only or other our ours ourselves out over own same
		she should so some such than that the their theirs them themselves then there
		these they this those through to too under until up very was we were what when
		where which while who whom why will with would you your yours yourself
		yourselves tell please give name list`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// IsStopWord reports whether a normalized term carries no content.
func IsStopWord(term string) bool {
	return stopWords[term]
}

// ContentTerms returns the distinct non-stop-word terms of text, in order of
// first appearance.
func ContentTerms(text string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, tok := range Tokenize(text) {
		if IsStopWord(tok.Term) || seen[tok.Term] {
			continue
		}
		seen[tok.Term] = true
		terms = append(terms, tok.Term)
	}
	return terms
}
