// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-analytics/pkg/types"
)

func TestComparePeriods(t *testing.T) {
	pubs := []types.Publication{
		pub("a", 2000, "expert systems and neural networks"),
		pub("b", 2001, "expert systems"),
		pub("c", 2001, "fuzzy logic"),
		pub("d", 2010, "neural networks"),
		pub("e", 2011, "neural networks"),
		pub("f", 2011, "transformers"),
		pub("g", 2012, "fuzzy logic"),
	}
	periods := []types.Period{
		{Name: "early", Start: 2000, End: 2005},
		{Name: "recent", Start: 2010, End: 2015},
	}
	terms := []string{"expert systems", "neural networks", "transformers", "fuzzy logic", "absent"}

	got, err := NewAnalyzer(defaultConfig(), nil).ComparePeriods(pubs, terms, periods)
	require.NoError(t, err)
	require.Len(t, got, 1)
	cmp := got[0]
	assert.Equal(t, "early", cmp.Before.Name)
	assert.Equal(t, 2, cmp.Common)

	byTerm := make(map[string]types.KeywordChange)
	for _, c := range cmp.Changes {
		byTerm[c.Term] = c
	}
	require.Len(t, byTerm, 4)
	assert.Equal(t, types.ChangeDisappeared, byTerm["expert systems"].Type)
	assert.Equal(t, types.ChangeIncreased, byTerm["neural networks"].Type)
	require.NotNil(t, byTerm["neural networks"].Growth)
	assert.Equal(t, 1.0, *byTerm["neural networks"].Growth)
	assert.Equal(t, types.ChangeEmerged, byTerm["transformers"].Type)
	assert.Nil(t, byTerm["transformers"].Growth)
	assert.Equal(t, types.ChangeStable, byTerm["fuzzy logic"].Type)

	assert.Equal(t, "expert systems", cmp.Changes[0].Term, "largest absolute change first")
}

func TestComparePeriodsThresholds(t *testing.T) {
	assert.Equal(t, types.ChangeIncreased, changeType(5, 6))
	assert.Equal(t, types.ChangeStable, changeType(10, 11))
	assert.Equal(t, types.ChangeDecreased, changeType(5, 4))
	assert.Equal(t, types.ChangeStable, changeType(10, 9))
}

func TestComparePeriodsInvalid(t *testing.T) {
	_, err := NewAnalyzer(defaultConfig(), nil).ComparePeriods(nil, nil, []types.Period{{Name: "bad", Start: 2020, End: 2010}})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestComparePeriodsSinglePeriod(t *testing.T) {
	got, err := NewAnalyzer(defaultConfig(), nil).ComparePeriods(nil, []string{"x"}, []types.Period{{Name: "only", Start: 2000, End: 2001}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPublicationVolume(t *testing.T) {
	pubs := []types.Publication{
		pub("a", 2001, "x"), pub("b", 2001, "x"),
		pub("c", 2003, "x"),
		{ID: "u", Title: "undated"},
		pub("d", 2004, "x"), pub("e", 2004, "x"), pub("f", 2004, "x"),
	}
	vol := PublicationVolume(pubs)
	require.Len(t, vol, 4)
	assert.Equal(t, 2001, vol[0].Year)
	assert.Equal(t, 2, vol[0].Count)
	assert.Nil(t, vol[0].Growth)
	assert.Zero(t, vol[1].Count)
	require.NotNil(t, vol[1].Growth)
	assert.Equal(t, -1.0, *vol[1].Growth)
	assert.Nil(t, vol[2].Growth)
	require.NotNil(t, vol[3].Growth)
	assert.Equal(t, 2.0, *vol[3].Growth)

	assert.Empty(t, PublicationVolume(nil))
}
