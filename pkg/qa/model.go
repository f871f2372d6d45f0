// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

// Package qa implements a small extractive question-answering model that runs
// in-process: it ranks the sentences of a context against a question with
// TF-IDF weighted term overlap and returns the span of the best sentence that
// the question does not already contain.
package qa

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
)

var (
	// ErrNoQuestionTerms is returned when a question has no content words.
	ErrNoQuestionTerms = errors.New("question has no content words")

	// ErrNoAnswer is returned when no sentence shares a term with the question.
	ErrNoAnswer = errors.New("no passage in the context matches the question")
)

// Result is an extracted answer.
type Result struct {
	Answer   string  // the answer span
	Sentence string  // the sentence the span was taken from
	Score    float64 // share of the question's term weight the sentence matched, 0..1
	Start    int     // byte offset of Answer in the context
	End      int
}

// Scored pairs a passage index with its relevance score.
type Scored struct {
	Index int
	Score float64
}

// Model is the extractive QA model. The zero value is ready to use.
type Model struct{}

// NewModel returns a Model.
func NewModel() *Model {
	return &Model{}
}

// Answer extracts the answer to question from text.
func (m *Model) Answer(ctx context.Context, text, question string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := ContentTerms(question)
	if len(terms) == 0 {
		return nil, ErrNoQuestionTerms
	}

	sentences := SplitSentences(text)
	passages := make([]string, len(sentences))
	for i, s := range sentences {
		passages[i] = s.Text
	}

	ranked, total := rank(passages, terms)
	if len(ranked) == 0 || ranked[0].Score == 0 {
		return nil, ErrNoAnswer
	}
	best := sentences[ranked[0].Index]

	start, end := narrow(best.Text, terms)
	return &Result{
		Answer:   best.Text[start:end],
		Sentence: best.Text,
		Score:    ranked[0].Score / total,
		Start:    best.Start + start,
		End:      best.Start + end,
	}, nil
}

// Rank orders passages by relevance to question, best first. Ties keep
// document order.
func Rank(passages []string, question string) []Scored {
	ranked, _ := rank(passages, ContentTerms(question))
	return ranked
}

// rank scores each passage as the summed inverse document frequency of the
// question terms it contains. It also returns the summed weight of all terms.
func rank(passages []string, terms []string) ([]Scored, float64) {
	if len(passages) == 0 {
		return nil, 0
	}

	present := make([]map[string]bool, len(passages))
	df := make(map[string]int, len(terms))
	for i, p := range passages {
		set := make(map[string]bool)
		for _, tok := range Tokenize(p) {
			set[tok.Term] = true
		}
		present[i] = set
		for _, t := range terms {
			if set[t] {
				df[t]++
			}
		}
	}

	n := float64(len(passages))
	weight := make(map[string]float64, len(terms))
	total := 0.0
	for _, t := range terms {
		weight[t] = math.Log(1 + n/float64(1+df[t]))
		total += weight[t]
	}

	ranked := make([]Scored, len(passages))
	for i := range passages {
		score := 0.0
		for _, t := range terms {
			if present[i][t] {
				score += weight[t]
			}
		}
		ranked[i] = Scored{Index: i, Score: score}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked, total
}

// narrow picks the answer span within sentence: the run of consecutive
// tokens not found in the question that holds the most content words,
// trimmed of stop words at both ends. Ties go to the run nearest a matched
// question term. The whole sentence is returned when no run qualifies.
func narrow(sentence string, terms []string) (int, int) {
	inQuestion := make(map[string]bool, len(terms))
	for _, t := range terms {
		inQuestion[t] = true
	}

	tokens := Tokenize(sentence)
	type run struct {
		first, last int // token indexes, inclusive
		content     int
		distance    int
	}

	var matches []int
	for i, tok := range tokens {
		if inQuestion[tok.Term] {
			matches = append(matches, i)
		}
	}
	distanceTo := func(first, last int) int {
		best := len(tokens)
		for _, m := range matches {
			d := first - m
			if m > last {
				d = m - last
			}
			if d < 0 {
				d = -d
			}
			if d < best {
				best = d
			}
		}
		return best
	}

	var best *run
	for i := 0; i < len(tokens); {
		if inQuestion[tokens[i].Term] {
			i++
			continue
		}
		j := i
		for j+1 < len(tokens) && !inQuestion[tokens[j+1].Term] {
			j++
		}

		first, last := i, j
		for first <= last && IsStopWord(tokens[first].Term) {
			first++
		}
		for last >= first && IsStopWord(tokens[last].Term) {
			last--
		}
		if first <= last {
			r := run{first: first, last: last, distance: distanceTo(first, last)}
			for k := first; k <= last; k++ {
				if !IsStopWord(tokens[k].Term) {
					r.content++
				}
			}
			if best == nil || r.content > best.content ||
				(r.content == best.content && r.distance < best.distance) {
				best = &r
			}
		}
		i = j + 1
	}

	if best == nil {
		return 0, len(sentence)
	}
	start, end := tokens[best.first].Start, tokens[best.last].End
	if strings.TrimSpace(sentence[start:end]) == "" {
		return 0, len(sentence)
	}
	return start, end
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either is a zero vector or their lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
