// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coverage measures how well an evidence store answers a
// research plan's key questions, and turns shortfalls into targeted
// gap tasks. Coverage is recomputed in full from the store and plan
// each round; nothing here is incrementally patched.
package coverage

import (
	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/pkg/types"
)

// SectionCoverage maps one section's key questions to the ids of the
// evidence items supporting them. Questions keeps plan order so the
// derived gap tasks are stable.
type SectionCoverage struct {
	// Questions lists the section's key questions in plan order.
	Questions []string `json:"questions" yaml:"questions"`

	// Supporting maps each question to supporting evidence ids, in
	// store order, without repeats.
	Supporting map[string][]string `json:"supporting" yaml:"supporting"`
}

// Coverage is the per-question coverage map for a whole plan. Derived
// state: built fresh from a plan and a store, never stored or mutated.
type Coverage struct {
	// Sections lists section names in plan order.
	Sections []string `json:"sections" yaml:"sections"`

	// BySection maps section name to that section's coverage.
	BySection map[string]SectionCoverage `json:"by_section" yaml:"by_section"`
}

// Build computes the coverage map for plan against store. Every
// (section, question) pair from the plan gets an entry, empty when
// nothing supports it. An item counts toward a question only when the
// question appears verbatim among the item's supported questions and
// belongs to the item's own section. Items from sections outside the
// plan are ignored.
func Build(plan types.ResearchPlan, store *evidence.Store) Coverage {
	cov := Coverage{BySection: make(map[string]SectionCoverage, len(plan.Sections))}

	for _, section := range plan.Sections {
		sc := SectionCoverage{
			Questions:  append([]string(nil), section.KeyQuestions...),
			Supporting: make(map[string][]string, len(section.KeyQuestions)),
		}
		for _, q := range section.KeyQuestions {
			sc.Supporting[q] = nil
		}
		cov.Sections = append(cov.Sections, section.Name)
		cov.BySection[section.Name] = sc
	}

	if store == nil {
		return cov
	}

	for _, item := range store.Items {
		sc, ok := cov.BySection[item.Section]
		if !ok {
			continue
		}
		for _, q := range item.SupportedQuestions {
			ids, known := sc.Supporting[q]
			if !known {
				continue
			}
			if containsID(ids, item.ID) {
				continue
			}
			sc.Supporting[q] = append(ids, item.ID)
		}
	}

	return cov
}

// QuestionCovered reports whether a question's supporting evidence
// meets the per-question floor.
func QuestionCovered(ids []string, minEvidence int) bool {
	return len(ids) >= minEvidence
}

// SectionCovered reports whether a section is fully covered: every
// question individually meets the per-question floor, and the distinct
// evidence ids across the whole section meet the section floor. The
// second check forces breadth beyond barely-covered questions.
func SectionCovered(section string, sc SectionCoverage, cfg types.CoverageConfig) bool {
	for _, q := range sc.Questions {
		if !QuestionCovered(sc.Supporting[q], cfg.QuestionMin()) {
			return false
		}
	}
	return sc.DistinctEvidence() >= cfg.SectionMin(section)
}

// DistinctEvidence returns the number of distinct evidence ids
// supporting any question in the section.
func (sc SectionCoverage) DistinctEvidence() int {
	distinct := make(map[string]bool)
	for _, ids := range sc.Supporting {
		for _, id := range ids {
			distinct[id] = true
		}
	}
	return len(distinct)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
