// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Method identifies a keyword extraction method.
type Method string

const (
	MethodAPI   Method = "api"
	MethodTFIDF Method = "tfidf"
	MethodRAKE  Method = "rake"
	MethodYAKE  Method = "yake"
	MethodAll   Method = "all"
)

// NLPMethods lists the text-based extraction methods in the order used
// when all of them are requested.
var NLPMethods = []Method{MethodTFIDF, MethodRAKE, MethodYAKE}

// KeywordEntry is one derived keyword. Terms are unique within a KeywordSet.
type KeywordEntry struct {
	// Term is the normalized keyword: case-folded, whitespace-collapsed.
	Term string `json:"term" yaml:"term"`

	// Frequency is the number of records containing the term.
	Frequency int `json:"frequency" yaml:"frequency"`

	// Score is the raw method score. TF-IDF weights are >= 0, RAKE scores
	// are >= 1, YAKE scores are > 0 with lower meaning more relevant.
	Score float64 `json:"score" yaml:"score"`

	// Importance is the score normalized to [0,1], higher is more relevant.
	Importance float64 `json:"importance" yaml:"importance"`

	// Method is the extraction method that produced the entry.
	Method Method `json:"method" yaml:"method"`

	// Rank is the 1-based position within the set.
	Rank int `json:"rank" yaml:"rank"`
}

// KeywordSet is the result of one extraction method over one corpus.
// Sets produced by different methods are never merged implicitly.
type KeywordSet struct {
	Method   Method         `json:"method" yaml:"method"`
	Keywords []KeywordEntry `json:"keywords" yaml:"keywords"`

	// Documents is the number of texts that were analyzed.
	Documents int `json:"documents" yaml:"documents"`

	// Skipped is the number of input entries dropped as empty or invalid.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Vocabulary is the number of candidate terms before ranking and truncation.
	Vocabulary int `json:"vocabulary" yaml:"vocabulary"`
}

// IsEmpty reports whether the set holds no keywords.
func (s KeywordSet) IsEmpty() bool {
	return len(s.Keywords) == 0
}

// Frequencies returns the term to frequency mapping of the set.
func (s KeywordSet) Frequencies() map[string]int {
	out := make(map[string]int, len(s.Keywords))
	for _, k := range s.Keywords {
		out[k.Term] = k.Frequency
	}
	return out
}

// Terms returns the terms of the set in rank order.
func (s KeywordSet) Terms() []string {
	out := make([]string, len(s.Keywords))
	for i, k := range s.Keywords {
		out[i] = k.Term
	}
	return out
}

// APIKeywords holds the source-provided keywords of a corpus.
type APIKeywords struct {
	// ByPublication maps a publication ID to its cleaned keyword list.
	ByPublication map[string][]string `json:"by_publication" yaml:"by_publication"`

	// Entries is the corpus frequency table, frequency descending.
	Entries []KeywordEntry `json:"entries" yaml:"entries"`

	// Occurrences counts every (publication, keyword) pair.
	Occurrences int `json:"occurrences" yaml:"occurrences"`

	// Publications is the number of records that contributed at least one keyword.
	Publications int `json:"publications" yaml:"publications"`
}

// Set returns the API keywords as a KeywordSet with method "api".
func (a APIKeywords) Set() KeywordSet {
	return KeywordSet{
		Method:     MethodAPI,
		Keywords:   a.Entries,
		Documents:  a.Publications,
		Vocabulary: len(a.Entries),
	}
}
