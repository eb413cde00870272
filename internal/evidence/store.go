// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Store is the deduplicated, indexed aggregate of all evidence items
// collected so far. It is a value: each aggregation pass builds a new
// Store from scratch, and the indexes are a cache fully rebuildable
// from Items alone. A Store is never mutated after construction.
type Store struct {
	// Items holds every evidence item in first-seen order, unique ids.
	Items []types.EvidenceItem `json:"items" yaml:"items"`

	// BySection maps section name to evidence ids, in item order.
	BySection map[string][]string `json:"by_section" yaml:"by_section"`

	// BySource maps source URL (empty string when absent) to evidence
	// ids, in item order.
	BySource map[string][]string `json:"by_source" yaml:"by_source"`

	// HashIndex maps full content hash to evidence id. Dedup
	// bookkeeping only.
	HashIndex map[string]string `json:"hash_index" yaml:"hash_index"`
}

// NewStore builds a Store from items, rebuilding all indexes. It fails
// when two items share an id; an empty item list yields a valid empty
// store.
func NewStore(items []types.EvidenceItem) (*Store, error) {
	s := &Store{
		Items:     items,
		BySection: make(map[string][]string),
		BySource:  make(map[string][]string),
		HashIndex: make(map[string]string),
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, fmt.Errorf("duplicate evidence id %q: all ids must be unique across the store", item.ID)
		}
		seen[item.ID] = true

		s.BySection[item.Section] = append(s.BySection[item.Section], item.ID)
		s.BySource[item.URL] = append(s.BySource[item.URL], item.ID)
		s.HashIndex[ContentHash(item)] = item.ID
	}
	return s, nil
}

// Len returns the number of items in the store.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// SectionItems returns the store's items for one section, in
// first-seen order.
func (s *Store) SectionItems(section string) []types.EvidenceItem {
	if s == nil {
		return nil
	}
	var out []types.EvidenceItem
	for _, item := range s.Items {
		if item.Section == section {
			out = append(out, item)
		}
	}
	return out
}

// Item returns the item with the given id, or nil.
func (s *Store) Item(id string) *types.EvidenceItem {
	if s == nil {
		return nil
	}
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}
