// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"sort"

	"github.com/pdiddy/research-analytics/internal/keywords"
	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

const (
	topicTerms  = 10
	topicTitles = 5
)

// topicTFIDF scores terms inside one cluster. Every term counts, even if
// only one member mentions it.
var topicTFIDF = types.TFIDFConfig{
	NgramRange:  []int{1, 2},
	MaxFeatures: 1000,
	MinDF:       1,
	MaxDF:       1,
}

// ClusterTopics summarizes each non-noise cluster of result: size, the top
// TF-IDF terms over its members' titles and abstracts, the year span, and
// up to five titles. pubs must be aligned with result.Labels.
func ClusterTopics(pubs []types.Publication, result types.ClusterResult) []types.ClusterTopic {
	members := make(map[int][]int)
	for i, l := range result.Labels {
		if l == types.NoiseLabel || i >= len(pubs) {
			continue
		}
		members[l] = append(members[l], i)
	}
	labels := make([]int, 0, len(members))
	for l := range members {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	tfidf := keywords.NewTFIDF(topicTFIDF, nil)
	topics := make([]types.ClusterTopic, 0, len(labels))
	for _, l := range labels {
		topic := types.ClusterTopic{Label: l, Size: len(members[l]), TopTerms: []string{}, Titles: []string{}}
		var docs []textproc.Document
		for _, i := range members[l] {
			p := pubs[i]
			if text := p.Text(); textproc.Valid(text) {
				docs = append(docs, textproc.Analyze(i, text))
			}
			if p.Title != "" && len(topic.Titles) < topicTitles {
				topic.Titles = append(topic.Titles, p.Title)
			}
			if p.HasYear() {
				y := *p.Year
				if topic.FirstYear == 0 || y < topic.FirstYear {
					topic.FirstYear = y
				}
				if y > topic.LastYear {
					topic.LastYear = y
				}
			}
		}
		if len(docs) > 0 {
			for _, k := range keywords.Rank(tfidf.Extract(docs), false, topicTerms) {
				topic.TopTerms = append(topic.TopTerms, k.Term)
			}
		}
		topics = append(topics, topic)
	}
	return topics
}
