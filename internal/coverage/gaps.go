// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coverage

import "github.com/pdiddy/deep-research/pkg/types"

// BuildGapTasks converts coverage shortfalls into targeted collection
// tasks, one per under-covered section, in plan order. Three checks
// apply per section:
//
//  1. questions failing the per-question floor become missing
//  2. a reviewer "needs more research" flag forces all of the
//     section's questions into the task, a broad resweep
//  3. a section meeting every per-question floor but failing the
//     section-wide distinct-evidence floor also resweeps all questions
//
// A section passing all three produces no task. The function never
// invents sections or questions outside the coverage map, and it is
// pure: the same inputs always yield the same task list.
func BuildGapTasks(cov Coverage, cfg types.CoverageConfig, guidance types.GuidanceMap) []types.GapTask {
	var tasks []types.GapTask

	for _, section := range cov.Sections {
		sc := cov.BySection[section]

		var missing []string
		for _, q := range sc.Questions {
			if !QuestionCovered(sc.Supporting[q], cfg.QuestionMin()) {
				missing = append(missing, q)
			}
		}

		if len(missing) == 0 && guidance[section].NeedsMoreResearch {
			missing = append([]string(nil), sc.Questions...)
		}

		if len(missing) == 0 && !SectionCovered(section, sc, cfg) {
			// Every question clears its floor but the section lacks
			// volume overall.
			missing = append([]string(nil), sc.Questions...)
		}

		if len(missing) == 0 {
			continue
		}

		tasks = append(tasks, types.GapTask{
			Section:          section,
			MissingQuestions: missing,
			MinEvidence:      cfg.QuestionMin(),
		})
	}

	return tasks
}
