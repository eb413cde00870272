// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deep-research/pkg/types"
)

func record(section, title, url, quote string) Record {
	return Record{
		Source:  string(types.SourceGoogle),
		Title:   title,
		URL:     url,
		Quote:   quote,
		Section: section,
	}
}

func TestAggregateEmpty(t *testing.T) {
	store, stats, err := Aggregate(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, Stats{}, stats)
}

func TestAggregateFiltersMissingURLAndQuote(t *testing.T) {
	var w bytes.Buffer
	batches := map[string]Batch{
		types.SectionDiseaseOverview: {
			Section: types.SectionDiseaseOverview,
			Records: []Record{
				record(types.SectionDiseaseOverview, "kept", "https://example.org", "q"),
				record(types.SectionDiseaseOverview, "no url", "", "q"),
				record(types.SectionDiseaseOverview, "no quote", "https://example.org/2", "  "),
			},
		},
	}

	store, stats, err := Aggregate(batches, nil, &w)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 2, stats.Filtered)
	assert.Equal(t, 1, stats.Kept)
	assert.Contains(t, w.String(), "missing url")
	assert.Contains(t, w.String(), "missing quote")
}

func TestAggregateReconstructsURLs(t *testing.T) {
	batches := map[string]Batch{
		types.SectionClinicalTrialsAnalysis: {
			Records: []Record{
				{
					Ref:     "nct01234567",
					Source:  string(types.SourceClinicalTrials),
					Title:   "trial",
					Quote:   "q",
					Section: types.SectionClinicalTrialsAnalysis,
				},
				{
					Ref:     "38012345",
					Source:  string(types.SourcePubMed),
					Title:   "paper",
					Quote:   "q2",
					Section: types.SectionClinicalTrialsAnalysis,
				},
				{
					Ref:     "E1",
					Source:  string(types.SourcePubMed),
					Title:   "unresolvable",
					Quote:   "q3",
					Section: types.SectionClinicalTrialsAnalysis,
				},
			},
		},
	}

	store, stats, err := Aggregate(batches, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
	assert.Equal(t, 1, stats.Filtered)

	urls := make([]string, 0, 2)
	for _, item := range store.Items {
		urls = append(urls, item.URL)
	}
	assert.Contains(t, urls, "https://clinicaltrials.gov/study/NCT01234567")
	assert.Contains(t, urls, "https://pubmed.ncbi.nlm.nih.gov/38012345/")
}

func TestAggregateDeduplicatesAcrossBatches(t *testing.T) {
	dup := record(types.SectionDiseaseOverview, "same", "https://example.org", "same quote")
	batches := map[string]Batch{
		types.SectionDiseaseOverview: {Records: []Record{dup}},
		types.SectionCompetitorAnalysis: {Records: []Record{
			// Same content, but filed under its own section by the
			// record itself: still a duplicate of the first.
			dup,
		}},
	}

	store, stats, err := Aggregate(batches, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, stats.Duplicates)
}

func TestAggregateKeepsSameContentDifferentSections(t *testing.T) {
	batches := map[string]Batch{
		types.SectionDiseaseOverview: {Records: []Record{
			record(types.SectionDiseaseOverview, "same", "https://example.org", "same quote"),
		}},
		types.SectionCompetitorAnalysis: {Records: []Record{
			record(types.SectionCompetitorAnalysis, "same", "https://example.org", "same quote"),
		}},
	}

	store, stats, err := Aggregate(batches, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len(), "content hash includes the section, so both survive")
	assert.Equal(t, 0, stats.Duplicates)
}

func TestAggregateFirstOccurrenceWins(t *testing.T) {
	prior, _, err := Aggregate(map[string]Batch{
		types.SectionDiseaseOverview: {Records: []Record{
			record(types.SectionDiseaseOverview, "same", "https://example.org", "same quote"),
		}},
	}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, prior.Len())
	priorID := prior.Items[0].ID

	store, stats, err := Aggregate(map[string]Batch{
		types.SectionDiseaseOverview: {Records: []Record{
			record(types.SectionDiseaseOverview, "same", "https://example.org", "same quote"),
			record(types.SectionDiseaseOverview, "new", "https://example.org/new", "new quote"),
		}},
	}, prior, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, priorID, store.Items[0].ID, "prior store's item comes first and keeps its id")
}

func TestAggregateIdempotent(t *testing.T) {
	batches := map[string]Batch{
		types.SectionDiseaseOverview: {Records: []Record{
			record(types.SectionDiseaseOverview, "a", "https://example.org/a", "qa"),
			record(types.SectionDiseaseOverview, "b", "https://example.org/b", "qb"),
		}},
	}

	first, _, err := Aggregate(batches, nil, nil)
	require.NoError(t, err)

	second, stats, err := Aggregate(nil, first, nil)
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := range first.Items {
		assert.Equal(t, first.Items[i].ID, second.Items[i].ID)
	}
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t, 0, stats.Filtered)
}

func TestAggregateIDCollisionTreatedAsDuplicate(t *testing.T) {
	// Same section, url, and quote but different titles: distinct
	// content hashes, identical derived ids. The second is dropped so
	// the store's id uniqueness invariant holds.
	batches := map[string]Batch{
		types.SectionDiseaseOverview: {Records: []Record{
			record(types.SectionDiseaseOverview, "title one", "https://example.org", "quote"),
			record(types.SectionDiseaseOverview, "title two", "https://example.org", "quote"),
		}},
	}

	store, stats, err := Aggregate(batches, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, stats.Duplicates)
	assert.True(t, strings.HasPrefix(store.Items[0].Title, "title one"))
}
