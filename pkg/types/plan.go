// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Canonical report section names. These seven sections form the closed
// vocabulary shared by the planner, collectors, and the report writer;
// evidence tied to any other section name is rejected at construction.
const (
	SectionRationaleExecutiveSummary = "rationale_executive_summary"
	SectionDiseaseOverview           = "disease_overview"
	SectionTherapeuticLandscape      = "therapeutic_landscape"
	SectionTreatmentGuidelines       = "current_treatment_guidelines"
	SectionCompetitorAnalysis        = "competitor_analysis"
	SectionClinicalTrialsAnalysis    = "clinical_trials_analysis"
	SectionMarketOpportunity         = "market_opportunity_analysis"
)

// commonSections lists the canonical sections in report order.
var commonSections = []string{
	SectionRationaleExecutiveSummary,
	SectionDiseaseOverview,
	SectionTherapeuticLandscape,
	SectionTreatmentGuidelines,
	SectionCompetitorAnalysis,
	SectionClinicalTrialsAnalysis,
	SectionMarketOpportunity,
}

// CommonSections returns the canonical report sections in report order.
func CommonSections() []string {
	out := make([]string, len(commonSections))
	copy(out, commonSections)
	return out
}

// IsCommonSection reports whether name is a member of the closed
// section vocabulary.
func IsCommonSection(name string) bool {
	for _, s := range commonSections {
		if s == name {
			return true
		}
	}
	return false
}

// ResearchSection is one section of a research plan.
type ResearchSection struct {
	// Name is the exact section name from the closed section vocabulary.
	Name string `json:"name" yaml:"name"`

	// Description explains what the section should cover for the
	// specific indication.
	Description string `json:"description" yaml:"description"`

	// EvidenceTypes lists the preferred evidence source kinds for this
	// section (advisory; passed through to collectors).
	EvidenceTypes []EvidenceSource `json:"evidence_types,omitempty" yaml:"evidence_types,omitempty"`

	// KeyQuestions are the section-specific research questions. The
	// strings are opaque coverage keys and must match verbatim between
	// the plan and evidence items' supported questions.
	KeyQuestions []string `json:"key_questions" yaml:"key_questions"`

	// Scope states what to include and exclude in the section.
	Scope string `json:"scope" yaml:"scope"`
}

// ResearchPlan is the structured outline of report sections and key
// questions for one drug/indication pair. Produced by the external
// planner collaborator.
type ResearchPlan struct {
	// Disease is the disease or indication under research.
	Disease string `json:"disease" yaml:"disease"`

	// Sections lists the plan sections in report order, at most one per
	// canonical section name.
	Sections []ResearchSection `json:"sections" yaml:"sections"`
}

// Section returns the plan section with the given name, or nil.
func (p *ResearchPlan) Section(name string) *ResearchSection {
	for i := range p.Sections {
		if p.Sections[i].Name == name {
			return &p.Sections[i]
		}
	}
	return nil
}

// SectionGuidance is qualitative reviewer guidance for one section.
// Only NeedsMoreResearch affects gap-building; the rest is advisory
// metadata passed through to re-dispatched collectors.
type SectionGuidance struct {
	NeedsMoreResearch bool     `json:"needs_more_research" yaml:"needs_more_research"`
	Notes             string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	SuggestedQueries  []string `json:"suggested_queries,omitempty" yaml:"suggested_queries,omitempty"`
}

// GuidanceMap maps section names to reviewer guidance.
type GuidanceMap map[string]SectionGuidance
