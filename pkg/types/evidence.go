// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EvidenceSource identifies the origin kind of an evidence item.
type EvidenceSource string

const (
	SourcePubMed         EvidenceSource = "pubmed"
	SourceClinicalTrials EvidenceSource = "clinicaltrials"
	SourceGoogle         EvidenceSource = "google"
	SourceGuideline      EvidenceSource = "guideline"
	SourcePressRelease   EvidenceSource = "press_release"
	SourceOther          EvidenceSource = "other"
)

// EvidenceItem is a single citation tied to exactly one report section.
type EvidenceItem struct {
	// ID is the deterministic item identifier: the owning section name
	// followed by an 8-hex-character fingerprint of "url|quote"
	// (e.g. "disease_overview_3fa1b2c4"). It is always derived from
	// content, never taken from collector output.
	ID string `json:"id" yaml:"id"`

	// Source is the origin kind of the citation.
	Source EvidenceSource `json:"source" yaml:"source"`

	// Title is the exact title of the cited source.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical URL for the source.
	URL string `json:"url" yaml:"url"`

	// Quote is a verbatim supporting excerpt from the source.
	Quote string `json:"quote" yaml:"quote"`

	// Year is the publication year, when known.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Tags are short topical labels to help retrieval and grouping.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// SupportedQuestions lists the plan key questions, verbatim, that
	// this item evidences.
	SupportedQuestions []string `json:"supported_questions,omitempty" yaml:"supported_questions,omitempty"`

	// Section is the report section this evidence belongs to. Must be a
	// member of the closed section vocabulary.
	Section string `json:"section" yaml:"section"`
}

// EvidenceBatch is one collector's output for a single section.
type EvidenceBatch struct {
	// Section is the section the collector was assigned.
	Section string `json:"section" yaml:"section"`

	// Evidence lists the collected items.
	Evidence []EvidenceItem `json:"evidence" yaml:"evidence"`
}
