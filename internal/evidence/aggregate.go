// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Canonical URL bases for reconstruction of missing links. Declared as
// vars so tests can substitute.
var (
	pubmedBase         = "https://pubmed.ncbi.nlm.nih.gov/"
	clinicalTrialsBase = "https://clinicaltrials.gov/study/"
)

// Stats reports aggregation counts for observability. The counts carry
// no semantic weight; the returned store is the single source of truth.
type Stats struct {
	// Total is the number of input records considered, including prior
	// store items.
	Total int

	// Kept is the number of items in the resulting store.
	Kept int

	// Filtered counts records dropped for quality reasons (missing url
	// or quote after reconstruction, unknown section).
	Filtered int

	// Duplicates counts records dropped because their content hash was
	// already present.
	Duplicates int
}

// Aggregate merges per-section collector batches with a prior store
// into a new deduplicated Store. It is a pure function of its inputs:
// prior items are considered first (first occurrence wins), records
// missing a URL get a best-effort reconstruction from their supplied
// reference id, records still lacking a url or quote are dropped and
// counted, and content-hash duplicates are dropped and counted.
// Warnings go to w; a nil prior store and empty batches yield a valid
// empty store. Re-aggregating a store with no new batches returns an
// equivalent store.
func Aggregate(batches map[string]Batch, prior *Store, w io.Writer) (*Store, Stats, error) {
	if w == nil {
		w = io.Discard
	}

	var merged []Record
	if prior != nil {
		for _, item := range prior.Items {
			merged = append(merged, recordFromItem(item))
		}
	}
	for _, section := range sortedSections(batches) {
		merged = append(merged, batches[section].Records...)
	}

	var (
		stats    Stats
		items    []types.EvidenceItem
		seenHash = make(map[string]bool)
		seenID   = make(map[string]bool)
	)

	for _, rec := range merged {
		stats.Total++

		if rec.URL == "" {
			rec.URL = reconstructURL(rec)
		}
		if strings.TrimSpace(rec.URL) == "" {
			fmt.Fprintf(w, "warning: dropping evidence %q from %s: missing url\n", rec.Title, rec.Section)
			stats.Filtered++
			continue
		}
		if strings.TrimSpace(rec.Quote) == "" {
			fmt.Fprintf(w, "warning: dropping evidence %q from %s: missing quote\n", rec.Title, rec.Section)
			stats.Filtered++
			continue
		}

		item, err := NewItem(types.EvidenceItem{
			Source:             types.EvidenceSource(rec.Source),
			Title:              rec.Title,
			URL:                rec.URL,
			Quote:              rec.Quote,
			Year:               rec.Year,
			Tags:               rec.Tags,
			SupportedQuestions: rec.SupportedQuestions,
			Section:            rec.Section,
		})
		if err != nil {
			fmt.Fprintf(w, "warning: dropping evidence record: %v\n", err)
			stats.Filtered++
			continue
		}

		hash := ContentHash(item)
		if seenHash[hash] || seenID[item.ID] {
			stats.Duplicates++
			continue
		}
		seenHash[hash] = true
		seenID[item.ID] = true
		items = append(items, item)
	}

	store, err := NewStore(items)
	if err != nil {
		return nil, stats, fmt.Errorf("building evidence store: %w", err)
	}
	stats.Kept = len(items)

	fmt.Fprintf(w, "aggregation complete: %d items retained (filtered %d, duplicates %d, of %d total)\n",
		stats.Kept, stats.Filtered, stats.Duplicates, stats.Total)
	return store, stats, nil
}

// recordFromItem converts an already-normalized store item back into a
// record so a prior store and new batches merge through one code path.
func recordFromItem(item types.EvidenceItem) Record {
	return Record{
		Source:             string(item.Source),
		Title:              item.Title,
		URL:                item.URL,
		Quote:              item.Quote,
		Year:               item.Year,
		Tags:               item.Tags,
		SupportedQuestions: item.SupportedQuestions,
		Section:            item.Section,
	}
}

// reconstructURL attempts to build a canonical URL from the
// collector-supplied reference id. PubMed records with a purely numeric
// ref resolve to the PMID page; trial-registry records with an NCT ref
// resolve to the study page.
func reconstructURL(rec Record) string {
	ref := strings.TrimSpace(rec.Ref)
	if ref == "" {
		return ""
	}

	switch types.EvidenceSource(rec.Source) {
	case types.SourcePubMed:
		if isNumeric(ref) {
			return pubmedBase + ref + "/"
		}
	case types.SourceClinicalTrials:
		if strings.HasPrefix(strings.ToUpper(ref), "NCT") {
			return clinicalTrialsBase + strings.ToUpper(ref)
		}
	}
	return ""
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func sortedSections(batches map[string]Batch) []string {
	sections := make([]string, 0, len(batches))
	for s := range batches {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	return sections
}
