// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/plan"
	"github.com/pdiddy/deep-research/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect and validate research plans",
}

var planValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a research plan YAML file",
	Long: `Validate checks that a plan names a disease, uses only known report
sections, and gives every section at least one key question. On success
it prints a summary of the plan's sections and questions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlanValidate,
}

var planSectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the report sections a plan may use",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range types.CommonSections() {
			fmt.Println(s)
		}
	},
}

func runPlanValidate(cmd *cobra.Command, args []string) error {
	path := "plans/plan.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	p, err := plan.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Plan for %q: %d section(s)\n", p.Disease, len(p.Sections))
	for _, s := range p.Sections {
		fmt.Printf("  %s: %d question(s)\n", s.Name, len(s.KeyQuestions))
		for _, q := range s.KeyQuestions {
			fmt.Printf("    - %s\n", strings.TrimSpace(q))
		}
	}
	return nil
}

func init() {
	planCmd.AddCommand(planValidateCmd)
	planCmd.AddCommand(planSectionsCmd)

	rootCmd.AddCommand(planCmd)
}
