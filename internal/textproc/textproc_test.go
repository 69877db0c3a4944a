// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSplitsSentencesAndChunks(t *testing.T) {
	doc := Analyze(3, "Deep learning models, for Image Recognition. The CNN works!")
	require.Len(t, doc.Sentences, 2)
	assert.Equal(t, 3, doc.Index)
	assert.Len(t, doc.Sentences[0].Chunks, 2)

	words := doc.Sentences[0].Words()
	require.Len(t, words, 6)
	assert.Equal(t, "deep", words[0].Text)
	assert.False(t, words[0].Capitalized, "sentence-initial words are not capitalized")
	assert.True(t, words[4].Capitalized)
	assert.True(t, words[3].Stop)

	cnn := doc.Sentences[1].Words()[1]
	assert.Equal(t, "cnn", cnn.Text)
	assert.True(t, cnn.Acronym)
}

func TestTokensDropStopWordsShortWordsAndNumbers(t *testing.T) {
	doc := Analyze(0, "The AI of 2024 is a state-of-the-art system in NLP")
	assert.Equal(t, []string{"state-of-the-art", "system", "nlp"}, doc.Tokens())
}

func TestRunsBreakAtStopWordsAndPunctuation(t *testing.T) {
	doc := Analyze(0, "Neural network pruning and knowledge distillation: a survey of graph neural networks")
	assert.Equal(t, [][]string{
		{"neural", "network", "pruning"},
		{"knowledge", "distillation"},
		{"graph", "neural", "networks"},
	}, doc.Runs())
}

func TestNGrams(t *testing.T) {
	doc := Analyze(0, "quantum error correction")
	assert.Equal(t, []string{
		"quantum", "error", "correction",
		"quantum error", "error correction",
	}, doc.NGrams(1, 2))
	assert.Equal(t, []string{"quantum error correction"}, doc.NGrams(3, 5))
}

func TestEmpty(t *testing.T) {
	assert.True(t, Analyze(0, "").Empty())
	assert.True(t, Analyze(0, "the and of, it is!").Empty())
	assert.False(t, Analyze(0, "the transformer").Empty())
}

func TestContains(t *testing.T) {
	doc := Analyze(0, "Advances in the Internet of Things. Machine-learning, edge computing")
	assert.True(t, doc.Contains("internet of things"))
	assert.True(t, doc.Contains("Internet  of Things"))
	assert.True(t, doc.Contains("machine-learning"))
	assert.True(t, doc.Contains("edge computing"))
	assert.False(t, doc.Contains("things machine-learning"), "terms do not span sentences")
	assert.False(t, doc.Contains("machine-learning edge"), "terms do not span punctuation")
	assert.False(t, doc.Contains("edge"+" comp"))
	assert.False(t, doc.Contains(""))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("text"))
	assert.False(t, Valid("   \t\n"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("bad \xff bytes"))
}

func TestCleanKeyword(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Machine Learning ", "machine learning"},
		{"*Deep   Learning.", "deep learning"},
		{"AI", ""},
		{"(NLP)", "nlp"},
		{"--", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanKeyword(tt.in), tt.in)
	}
}

func TestStopWords(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("paper"))
	assert.False(t, IsStopWord("transformer"))
	assert.Contains(t, StopWords(), "study")
}
