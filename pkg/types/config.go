// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultMinEvidence is the baseline per-question evidence floor.
const DefaultMinEvidence = 2

// DefaultMaxRounds bounds the collect → aggregate → analyze loop.
const DefaultMaxRounds = 5

// CoverageConfig holds coverage thresholds for the gap-driven loop.
type CoverageConfig struct {
	// MinEvidence is the per-question evidence floor (default 2).
	MinEvidence int `json:"min_evidence" yaml:"min_evidence"`

	// SectionMinEvidence maps section names to a section-wide floor on
	// distinct supporting evidence ids. Sections without an entry use
	// MinEvidence as the floor.
	SectionMinEvidence map[string]int `json:"section_min_evidence,omitempty" yaml:"section_min_evidence,omitempty"`

	// MaxRounds is the maximum number of collection rounds (default 5).
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`
}

// SectionMin returns the section-wide distinct-evidence floor for the
// named section, falling back to the per-question floor when the
// section has no specific override.
func (c CoverageConfig) SectionMin(section string) int {
	if n, ok := c.SectionMinEvidence[section]; ok {
		return n
	}
	return c.QuestionMin()
}

// QuestionMin returns the per-question floor, defaulting when unset.
func (c CoverageConfig) QuestionMin() int {
	if c.MinEvidence > 0 {
		return c.MinEvidence
	}
	return DefaultMinEvidence
}

// Rounds returns the round budget, defaulting when unset.
func (c CoverageConfig) Rounds() int {
	if c.MaxRounds > 0 {
		return c.MaxRounds
	}
	return DefaultMaxRounds
}

// DefaultCoverageConfig returns the tuned coverage thresholds. The
// section floors push breadth beyond the per-question minimums.
func DefaultCoverageConfig() CoverageConfig {
	return CoverageConfig{
		MinEvidence: DefaultMinEvidence,
		MaxRounds:   DefaultMaxRounds,
		SectionMinEvidence: map[string]int{
			SectionRationaleExecutiveSummary: 5,
			SectionDiseaseOverview:           5,
			SectionTherapeuticLandscape:      6,
			SectionTreatmentGuidelines:       4,
			SectionCompetitorAnalysis:        6,
			SectionClinicalTrialsAnalysis:    7,
			SectionMarketOpportunity:         6,
		},
	}
}

// CollectorConfig holds settings for the collector dispatch layer.
type CollectorConfig struct {
	// Command is the collector executable invoked per task. The task is
	// written to its stdin as JSON; an evidence batch is read from its
	// stdout.
	Command string `json:"command" yaml:"command"`

	// Args are extra arguments passed to Command.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Timeout bounds a single collector invocation (default 5m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts for a failed collector
	// invocation (default 2). Retries happen only in the dispatch
	// layer; the core loop never retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BatchDir selects the file-replay collector instead of Command:
	// batches are read from <BatchDir>/<section>.json.
	BatchDir string `json:"batch_dir,omitempty" yaml:"batch_dir,omitempty"`
}

// ArchiveConfig holds settings for the evidence archive.
type ArchiveConfig struct {
	// ArchiveDir is the base directory for the archive database
	// (contains index/research.db).
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxResults is the default maximum number of query results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Coverage  CoverageConfig  `json:"coverage" yaml:"coverage"`
	Collector CollectorConfig `json:"collector" yaml:"collector"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
}
