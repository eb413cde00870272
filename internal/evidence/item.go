// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence implements the evidence model and the deduplicating
// aggregation engine: deterministic item identity, the indexed evidence
// store, tolerant decoding of collector batches, and the pure merge
// that combines per-section batches with a prior store.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pdiddy/deep-research/pkg/types"
)

// idFingerprintLen is the number of hex characters kept from the
// content digest when deriving an item id.
const idFingerprintLen = 8

// ItemID derives the deterministic evidence id for the given section
// and content. The id is the section name plus the first 8 hex
// characters of sha256("url|quote"); re-deriving from the same content
// always yields the same id.
func ItemID(section, url, quote string) string {
	sum := sha256.Sum256([]byte(url + "|" + quote))
	return section + "_" + hex.EncodeToString(sum[:])[:idFingerprintLen]
}

// ContentHash computes the full dedup hash over an item's identifying
// content. The section is part of the hash: identical content filed
// under two different sections is not a duplicate.
func ContentHash(item types.EvidenceItem) string {
	sum := sha256.Sum256([]byte(item.Section + "|" + item.Title + "|" + item.URL + "|" + item.Quote))
	return hex.EncodeToString(sum[:])
}

// NewItem constructs a validated EvidenceItem. The id is always
// recomputed from section, url, and quote; any id supplied by a
// collector is ignored. The section must be a member of the closed
// section vocabulary, and title and quote must be non-empty.
func NewItem(item types.EvidenceItem) (types.EvidenceItem, error) {
	if !types.IsCommonSection(item.Section) {
		return types.EvidenceItem{}, fmt.Errorf("section %q is not a known report section", item.Section)
	}
	if item.Title == "" {
		return types.EvidenceItem{}, fmt.Errorf("evidence item for section %s has no title", item.Section)
	}
	if item.Quote == "" {
		return types.EvidenceItem{}, fmt.Errorf("evidence item %q has no quote", item.Title)
	}
	if item.Source == "" {
		item.Source = types.SourceOther
	}
	item.ID = ItemID(item.Section, item.URL, item.Quote)
	return item, nil
}
