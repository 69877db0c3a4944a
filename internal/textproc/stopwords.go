// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

// englishStopWords is the NLTK English stop word list.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she",
	"her", "hers", "herself", "it", "its", "itself", "they", "them", "their",
	"theirs", "themselves", "what", "which", "who", "whom", "this", "that",
	"these", "those", "am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of",
	"at", "by", "for", "with", "about", "against", "between", "into", "through",
	"during", "before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further", "then",
	"once", "here", "there", "when", "where", "why", "how", "all", "any",
	"both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can",
	"will", "just", "don", "should", "now", "d", "ll", "m", "o", "re", "ve",
	"y", "ain", "aren", "couldn", "didn", "doesn", "hadn", "hasn", "haven",
	"isn", "ma", "mightn", "mustn", "needn", "shan", "shouldn", "wasn",
	"weren", "won", "wouldn", "also", "may", "might", "must", "shall", "would",
	"could", "one", "two", "using", "used", "use", "based", "within", "without",
	"among", "across", "upon", "via", "well", "however", "whereas", "whether",
}

// domainStopWords are words that carry no topic signal in scholarly text.
var domainStopWords = []string{
	"paper", "article", "study", "research", "analysis", "approach",
	"method", "result", "results", "conclusion", "abstract", "introduction",
	"literature", "review", "survey", "work", "works", "author",
	"authors", "et", "al", "therefore", "thus",
	"furthermore", "moreover", "additionally", "finally",
}

var stopWords = func() map[string]struct{} {
	m := make(map[string]struct{}, len(englishStopWords)+len(domainStopWords))
	for _, w := range englishStopWords {
		m[w] = struct{}{}
	}
	for _, w := range domainStopWords {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopWord reports whether w (lowercase) is a stop word.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// StopWords returns a copy of the stop word list.
func StopWords() []string {
	out := make([]string, 0, len(stopWords))
	out = append(out, englishStopWords...)
	return append(out, domainStopWords...)
}
