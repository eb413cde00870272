// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a finished run as Markdown: a per-section
// evidence appendix and a coverage summary table. It also validates
// evidence citations in downstream report drafts against the store.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/deep-research/internal/coverage"
	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/pkg/types"
)

const (
	appendixFile = "evidence_appendix.md"
	summaryFile  = "coverage_summary.md"
)

// evidenceIDPattern matches derived evidence ids: section name plus an
// eight-hex-digit content fingerprint, e.g. disease_overview_a1b2c3d4.
var evidenceIDPattern = regexp.MustCompile(`^[a-z][a-z_]*_[0-9a-f]{8}$`)

// citationPattern matches inline citations: [id] or [id1; id2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// EvidenceAppendix renders the store as a Markdown appendix, one
// heading per plan section in plan order. Sections with no evidence
// are rendered with an explicit empty marker rather than omitted.
func EvidenceAppendix(plan types.ResearchPlan, store *evidence.Store) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Evidence Appendix: %s\n", plan.Disease)

	for _, section := range plan.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", section.Name)

		items := store.SectionItems(section.Name)
		if len(items) == 0 {
			b.WriteString("_No evidence collected._\n")
			continue
		}
		for _, item := range items {
			fmt.Fprintf(&b, "- **[%s]** %s\n", item.ID, item.Title)
			if item.URL != "" {
				fmt.Fprintf(&b, "  - Source: %s (%s)\n", item.URL, item.Source)
			} else {
				fmt.Fprintf(&b, "  - Source: %s\n", item.Source)
			}
			fmt.Fprintf(&b, "  - Quote: %q\n", item.Quote)
			if item.Year > 0 {
				fmt.Fprintf(&b, "  - Year: %d\n", item.Year)
			}
			if len(item.Tags) > 0 {
				fmt.Fprintf(&b, "  - Tags: %s\n", strings.Join(item.Tags, ", "))
			}
		}
	}
	return b.String()
}

// CoverageSummary renders the coverage map as a Markdown table, one
// row per (section, question) plus a per-section total row showing the
// distinct-evidence count against the section floor.
func CoverageSummary(cov coverage.Coverage, cfg types.CoverageConfig) string {
	var b strings.Builder
	b.WriteString("# Coverage Summary\n\n")
	b.WriteString("| Section | Question | Evidence | Floor | Status |\n")
	b.WriteString("|---|---|---|---|---|\n")

	for _, section := range cov.Sections {
		sc := cov.BySection[section]
		for _, q := range sc.Questions {
			ids := sc.Supporting[q]
			status := "covered"
			if !coverage.QuestionCovered(ids, cfg.QuestionMin()) {
				status = "GAP"
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
				section, q, len(ids), cfg.QuestionMin(), status)
		}

		status := "covered"
		if !coverage.SectionCovered(section, sc, cfg) {
			status = "GAP"
		}
		fmt.Fprintf(&b, "| %s | _section total_ | %d | %d | %s |\n",
			section, sc.DistinctEvidence(), cfg.SectionMin(section), status)
	}
	return b.String()
}

// Write renders the appendix and summary into outputDir, creating it
// if needed.
func Write(outputDir string, plan types.ResearchPlan, store *evidence.Store, cov coverage.Coverage, cfg types.CoverageConfig) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	appendix := EvidenceAppendix(plan, store)
	if err := os.WriteFile(filepath.Join(outputDir, appendixFile), []byte(appendix), 0o644); err != nil {
		return fmt.Errorf("writing evidence appendix: %w", err)
	}

	summary := CoverageSummary(cov, cfg)
	if err := os.WriteFile(filepath.Join(outputDir, summaryFile), []byte(summary), 0o644); err != nil {
		return fmt.Errorf("writing coverage summary: %w", err)
	}
	return nil
}

// ValidateCitations scans the Markdown files in draftDir for bracketed
// evidence ids and returns the ids that have no item in the store,
// sorted. Brackets that do not look like evidence ids (links, images,
// prose) are ignored.
func ValidateCitations(draftDir string, store *evidence.Store) ([]string, error) {
	entries, err := os.ReadDir(draftDir)
	if err != nil {
		return nil, fmt.Errorf("reading draft directory: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(draftDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		for _, id := range extractEvidenceIDs(string(data)) {
			if store.Item(id) == nil {
				seen[id] = true
			}
		}
	}

	var missing []string
	for id := range seen {
		missing = append(missing, id)
	}
	sort.Strings(missing)
	return missing, nil
}

// extractEvidenceIDs finds all evidence ids cited in text. It handles
// both single citations [id] and multi-citations [id1; id2].
func extractEvidenceIDs(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	var ids []string
	for _, m := range matches {
		for _, p := range strings.Split(m[1], ";") {
			id := strings.TrimSpace(p)
			if evidenceIDPattern.MatchString(id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
