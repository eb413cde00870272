// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan loads and validates research plans and reviewer
// guidance from YAML files.
package plan

import (
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Load reads a research plan YAML file and validates it.
func Load(path string) (*types.ResearchPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	var p types.ResearchPlan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks plan structure: a disease name, at least one
// section, every section name a member of the closed vocabulary and
// unique, and at least one key question per section.
func Validate(p *types.ResearchPlan) error {
	if p.Disease == "" {
		return fmt.Errorf("plan has no disease name")
	}
	if len(p.Sections) == 0 {
		return fmt.Errorf("plan has no sections")
	}
	seen := make(map[string]bool, len(p.Sections))
	for _, s := range p.Sections {
		if !types.IsCommonSection(s.Name) {
			return fmt.Errorf("plan section %q is not a known report section", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("plan section %q appears more than once", s.Name)
		}
		seen[s.Name] = true
		if len(s.KeyQuestions) == 0 {
			return fmt.Errorf("plan section %q has no key questions", s.Name)
		}
	}
	return nil
}

// LoadGuidance reads a reviewer-guidance YAML file. Guidance is
// advisory: a missing or unparseable file produces a warning on w and
// a nil map, and the run proceeds on pure coverage-based logic.
func LoadGuidance(path string, w io.Writer) types.GuidanceMap {
	if path == "" {
		return nil
	}
	if w == nil {
		w = io.Discard
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "warning: could not read guidance %s: %v\n", path, err)
		return nil
	}
	var g types.GuidanceMap
	if err := yaml.Unmarshal(data, &g); err != nil {
		fmt.Fprintf(w, "warning: could not parse guidance %s: %v; proceeding without it\n", path, err)
		return nil
	}
	for section := range g {
		if !types.IsCommonSection(section) {
			fmt.Fprintf(w, "warning: guidance for unknown section %q ignored\n", section)
			delete(g, section)
		}
	}
	return g
}
