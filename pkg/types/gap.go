// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GapTask requests more evidence for under-covered questions in one
// section. Tasks are created fresh each round and never persisted
// beyond it.
type GapTask struct {
	// Section is the section with a coverage shortfall.
	Section string `json:"section" yaml:"section"`

	// MissingQuestions lists the key questions still lacking evidence.
	// Never empty.
	MissingQuestions []string `json:"missing_questions" yaml:"missing_questions"`

	// MinEvidence is the per-question evidence floor the follow-up
	// collection should satisfy.
	MinEvidence int `json:"min_evidence" yaml:"min_evidence"`
}

// CollectTask is the unit of work handed to a collector: either a full
// section sweep (round zero) or a targeted follow-up derived from a
// GapTask (later rounds).
type CollectTask struct {
	// Disease is the disease or indication under research.
	Disease string `json:"disease" yaml:"disease"`

	// Section is the section the collector is assigned.
	Section string `json:"section" yaml:"section"`

	// Questions lists the key questions to evidence.
	Questions []string `json:"questions" yaml:"questions"`

	// Scope states what to include and exclude, from the plan section.
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	// MinEvidence is the per-question evidence floor.
	MinEvidence int `json:"min_evidence" yaml:"min_evidence"`

	// SuggestedQueries carries advisory search queries from reviewer
	// guidance, when present.
	SuggestedQueries []string `json:"suggested_queries,omitempty" yaml:"suggested_queries,omitempty"`

	// Targeted marks a follow-up task derived from a coverage gap.
	Targeted bool `json:"targeted" yaml:"targeted"`
}
