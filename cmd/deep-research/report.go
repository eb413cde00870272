// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Validate downstream report drafts against archived evidence",
}

var reportCheckCmd = &cobra.Command{
	Use:   "check <run-id>",
	Short: "Check draft citations against a run's archived evidence",
	Long: `Check scans the Markdown drafts in --drafts for bracketed evidence-id
citations and reports any id with no item in the named run's archived
evidence store.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportCheck,
}

func runReportCheck(cmd *cobra.Command, args []string) error {
	runID := args[0]
	draftsDir, _ := cmd.Flags().GetString("drafts")

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(cmd.Context(), archive.QueryOptions{RunID: runID, MaxResults: 100000})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no evidence archived for run %s", runID)
	}

	items := make([]types.EvidenceItem, 0, len(results))
	for _, r := range results {
		items = append(items, r.EvidenceItem)
	}
	evStore, err := evidence.NewStore(items)
	if err != nil {
		return err
	}

	missing, err := report.ValidateCitations(draftsDir, evStore)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		for _, id := range missing {
			fmt.Printf("unknown evidence id: %s\n", id)
		}
		return fmt.Errorf("%d citation(s) reference unknown evidence", len(missing))
	}

	fmt.Println("All citations resolve to archived evidence.")
	return nil
}

func init() {
	reportCheckCmd.Flags().String("drafts", "output", "directory of Markdown report drafts")
	reportCheckCmd.Flags().String("archive-dir", "archive", "archive base directory")

	reportCmd.AddCommand(reportCheckCmd)
	rootCmd.AddCommand(reportCmd)
}
