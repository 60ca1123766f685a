package services

import (
	"strings"
	"unicode/utf8"
)

// ChunkText splits text into segments no longer than maxLength runes so each
// can be sent to a provider with a request length limit.
//
// Text that already fits is returned as a single chunk, unchanged. Longer text
// is split into sentences (each keeps its own . ! or ? run) which are packed
// greedily, in order, into chunks joined by a single space. A sentence that
// cannot fit on its own is split on whitespace into word groups packed the
// same way. Every chunk ends with sentence punctuation; a period is appended
// to the final chunk when the text has none. A single word longer than
// maxLength is emitted as its own chunk and is the only way a chunk can exceed
// the limit. Whitespace-only segments produce no chunks.
func ChunkText(text string, maxLength int) []string {
	if maxLength <= 0 || utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	buf := ""
	flush := func() {
		if buf != "" {
			chunks = append(chunks, terminateSentence(buf))
			buf = ""
		}
	}

	for _, sentence := range splitSentences(text) {
		need := utf8.RuneCountInString(sentence) + periodCost(sentence)

		if buf != "" && utf8.RuneCountInString(buf)+1+need <= maxLength {
			buf += " " + sentence
			continue
		}
		flush()
		if need <= maxLength {
			buf = sentence
			continue
		}
		chunks = append(chunks, splitWords(sentence, maxLength)...)
	}
	flush()

	return chunks
}

// splitSentences cuts text after every run of sentence terminators.
// Segments are trimmed; empty segments are dropped.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if !isSentenceTerminator(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceTerminator(runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// splitWords packs the words of an oversized sentence into groups.
// Only the last group carries the sentence end.
func splitWords(sentence string, maxLength int) []string {
	budget := maxLength - periodCost(sentence)

	var groups []string
	group := ""
	for _, word := range strings.Fields(sentence) {
		switch {
		case group == "":
			group = word
		case utf8.RuneCountInString(group)+1+utf8.RuneCountInString(word) <= budget:
			group += " " + word
		default:
			groups = append(groups, group)
			group = word
		}
	}
	if group != "" {
		groups = append(groups, terminateSentence(group))
	}
	return groups
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// periodCost is the number of runes terminateSentence will add to s.
func periodCost(s string) int {
	r, _ := utf8.DecodeLastRuneInString(s)
	if isSentenceTerminator(r) {
		return 0
	}
	return 1
}

func terminateSentence(s string) string {
	if periodCost(s) == 0 {
		return s
	}
	return s + "."
}
