// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textproc is the text preprocessing shared by every keyword method
// and by temporal term matching. Analyze splits a text into sentences,
// sentences into chunks at punctuation, and chunks into lowercase words.
package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest word kept as a content token.
const MinTokenLength = 3

// Word is one lowercase word with the casing facts YAKE needs.
type Word struct {
	Text string
	// Stop is true for stop words.
	Stop bool
	// Capitalized is true when the word starts upper case and is not the
	// first word of its sentence.
	Capitalized bool
	// Acronym is true when every letter is upper case and there are at least two.
	Acronym bool
}

// Content reports whether the word can be part of a keyword.
func (w Word) Content() bool {
	if w.Stop || utf8.RuneCountInString(w.Text) < MinTokenLength {
		return false
	}
	r, _ := utf8.DecodeRuneInString(w.Text)
	return unicode.IsLetter(r)
}

// Sentence holds the chunks of one sentence. Chunks never span punctuation.
type Sentence struct {
	Chunks [][]Word
}

// Words returns all words of the sentence in order.
func (s Sentence) Words() []Word {
	var out []Word
	for _, c := range s.Chunks {
		out = append(out, c...)
	}
	return out
}

// Document is one analyzed text.
type Document struct {
	// Index is the position of the text in the caller's input.
	Index     int
	Sentences []Sentence

	// chunkKeys are the space-delimited chunks used for term matching.
	chunkKeys []string
}

// Analyze preprocesses one text. Invalid UTF-8 must be rejected by the caller.
func Analyze(index int, text string) Document {
	doc := Document{Index: index}
	var (
		sentence Sentence
		chunk    []Word
		word     strings.Builder
		first    = true
	)
	flushWord := func() {
		raw := strings.Trim(word.String(), "-")
		word.Reset()
		if raw == "" {
			return
		}
		chunk = append(chunk, newWord(raw, first))
		first = false
	}
	flushChunk := func() {
		flushWord()
		if len(chunk) > 0 {
			sentence.Chunks = append(sentence.Chunks, chunk)
			chunk = nil
		}
	}
	flushSentence := func() {
		flushChunk()
		if len(sentence.Chunks) > 0 {
			doc.Sentences = append(doc.Sentences, sentence)
			sentence = Sentence{}
		}
		first = true
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			word.WriteRune(r)
		case unicode.IsSpace(r), r == '\'', r == '’':
			flushWord()
		case r == '.' || r == '!' || r == '?' || r == ';':
			flushSentence()
		default:
			flushChunk()
		}
	}
	flushSentence()

	for _, s := range doc.Sentences {
		for _, c := range s.Chunks {
			doc.chunkKeys = append(doc.chunkKeys, " "+joinWords(c)+" ")
		}
	}
	return doc
}

func newWord(raw string, sentenceStart bool) Word {
	lower := strings.ToLower(raw)
	w := Word{Text: lower, Stop: IsStopWord(lower)}
	r, _ := utf8.DecodeRuneInString(raw)
	if unicode.IsUpper(r) && !sentenceStart {
		w.Capitalized = true
	}
	letters, upper := 0, 0
	for _, c := range raw {
		if unicode.IsLetter(c) {
			letters++
			if unicode.IsUpper(c) {
				upper++
			}
		}
	}
	w.Acronym = letters >= 2 && letters == upper
	return w
}

func joinWords(ws []Word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Tokens returns the content tokens of the document in order.
func (d Document) Tokens() []string {
	var out []string
	for _, s := range d.Sentences {
		for _, c := range s.Chunks {
			for _, w := range c {
				if w.Content() {
					out = append(out, w.Text)
				}
			}
		}
	}
	return out
}

// Runs returns the maximal sequences of content words. Stop words, short
// words, numbers, and punctuation end a run.
func (d Document) Runs() [][]string {
	var out [][]string
	for _, s := range d.Sentences {
		for _, c := range s.Chunks {
			var run []string
			for _, w := range c {
				if w.Content() {
					run = append(run, w.Text)
					continue
				}
				if len(run) > 0 {
					out = append(out, run)
					run = nil
				}
			}
			if len(run) > 0 {
				out = append(out, run)
			}
		}
	}
	return out
}

// NGrams returns every n-gram with min <= n <= max formed inside runs.
func (d Document) NGrams(min, max int) []string {
	var out []string
	for _, run := range d.Runs() {
		out = append(out, RunNGrams(run, min, max)...)
	}
	return out
}

// RunNGrams returns the n-grams of one run.
func RunNGrams(run []string, min, max int) []string {
	var out []string
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(run); i++ {
			out = append(out, strings.Join(run[i:i+n], " "))
		}
	}
	return out
}

// Empty reports whether the document has no content tokens.
func (d Document) Empty() bool {
	for _, s := range d.Sentences {
		for _, c := range s.Chunks {
			for _, w := range c {
				if w.Content() {
					return false
				}
			}
		}
	}
	return true
}

// Contains reports whether the term's words occur contiguously inside one
// chunk of the document. Stop words in the term are matched literally.
func (d Document) Contains(term string) bool {
	return d.ContainsKey(TermKey(term))
}

// ContainsKey is Contains for a key already produced by TermKey.
func (d Document) ContainsKey(key string) bool {
	if key == "" {
		return false
	}
	needle := " " + key + " "
	for _, c := range d.chunkKeys {
		if strings.Contains(c, needle) {
			return true
		}
	}
	return false
}

// TermKey tokenizes a term the same way Analyze tokenizes text and returns
// its words joined by single spaces.
func TermKey(term string) string {
	doc := Analyze(0, term)
	var parts []string
	for _, s := range doc.Sentences {
		for _, c := range s.Chunks {
			for _, w := range c {
				parts = append(parts, w.Text)
			}
		}
	}
	return strings.Join(parts, " ")
}

// Valid reports whether text is valid UTF-8 with at least one non-space rune.
func Valid(text string) bool {
	return utf8.ValidString(text) && strings.TrimSpace(text) != ""
}

// NormalizeTerm case-folds a term and collapses its whitespace.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}

// CleanKeyword normalizes a source-provided keyword: edge characters that
// are neither letters nor digits are stripped before NormalizeTerm. Terms of
// MinTokenLength-1 characters or fewer come back empty.
func CleanKeyword(raw string) string {
	trimmed := strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	term := NormalizeTerm(trimmed)
	if utf8.RuneCountInString(term) < MinTokenLength {
		return ""
	}
	return term
}
