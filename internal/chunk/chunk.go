// Package chunk splits normalized document text into pieces that each fit
// one model call's input budget.
//
// Splitting prefers paragraph boundaries (blank lines). A paragraph that is
// too large on its own is split on sentence boundaries. A single sentence
// larger than the budget is emitted alone and may exceed it: there is no
// smaller unit to split on.
package chunk

import (
	"regexp"
	"strings"

	"github.com/alnah/go-flashgen/internal/token"
)

const (
	paragraphSep = "\n\n"
	sentenceSep  = " "
)

// sentenceEnd matches the whitespace run that follows terminal punctuation.
// RE2 has no lookbehind, so the punctuation is matched and kept on the left side.
var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Chunk is a contiguous slice of the source text.
type Chunk struct {
	Index   int    // 0-based position in source order
	Total   int    // number of chunks produced from the source
	Content string // chunk text
	Tokens  int    // estimated token count of Content
}

// Split divides text into chunks whose estimated size is at most maxTokens.
// Text whose whole estimate fits is returned unchanged as a single chunk.
// Blank input yields no chunks. A nil estimator uses token.CharEstimator.
func Split(text string, maxTokens int, est token.Estimator) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if est == nil {
		est = token.CharEstimator{}
	}

	if total := est.Estimate(text); total <= maxTokens {
		return []Chunk{{Index: 0, Total: 1, Content: text, Tokens: total}}
	}

	b := &builder{est: est, max: maxTokens}
	for _, para := range strings.Split(text, paragraphSep) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if tokens := est.Estimate(para); tokens <= maxTokens {
			b.add(para, tokens, paragraphSep)
			continue
		}

		// Oversized paragraph: start fresh and pack its sentences.
		b.flush()
		for _, sentence := range splitSentences(para) {
			b.add(sentence, est.Estimate(sentence), sentenceSep)
		}
	}
	b.flush()

	for i := range b.chunks {
		b.chunks[i].Total = len(b.chunks)
	}
	return b.chunks
}

// joinSlack bounds how many tokens joining two units can add beyond the sum
// of their separate estimates and the separator's.
const joinSlack = 2

// builder greedily accumulates units into the current chunk.
// tokens is an upper bound on the estimate of current; the chunk is measured
// exactly only when that bound would exceed max, and once more when flushed.
type builder struct {
	est     token.Estimator
	max     int
	current strings.Builder
	tokens  int
	chunks  []Chunk
}

// add appends unit (estimated at unitTokens) to the current chunk joined by
// sep, or flushes first when the combined estimate would exceed the budget.
func (b *builder) add(unit string, unitTokens int, sep string) {
	if b.current.Len() == 0 {
		b.current.WriteString(unit)
		b.tokens = unitTokens
		return
	}

	bound := b.tokens + b.est.Estimate(sep) + unitTokens + joinSlack
	if bound <= b.max {
		b.current.WriteString(sep)
		b.current.WriteString(unit)
		b.tokens = bound
		return
	}

	if exact := b.est.Estimate(b.current.String() + sep + unit); exact <= b.max {
		b.current.WriteString(sep)
		b.current.WriteString(unit)
		b.tokens = exact
		return
	}

	b.flush()
	b.current.WriteString(unit)
	b.tokens = unitTokens
}

func (b *builder) flush() {
	if b.current.Len() == 0 {
		return
	}
	content := b.current.String()
	b.chunks = append(b.chunks, Chunk{
		Index:   len(b.chunks),
		Content: content,
		Tokens:  b.est.Estimate(content),
	})
	b.current.Reset()
	b.tokens = 0
}

// splitSentences splits a paragraph after '.', '!' or '?' followed by whitespace.
func splitSentences(para string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
		// loc[0] is the punctuation; keep it with the sentence.
		if s := strings.TrimSpace(para[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(para[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
