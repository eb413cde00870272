// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Query the evidence archive (runs, retrieve, coverage, export)",
	Long: `Archive queries the local SQLite archive of finished runs. Use
subcommands to list runs, search archived evidence, inspect a run's
coverage, or export.`,
}

// --- runs subcommand ---

var archiveRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived runs, newest first",
	RunE:  runArchiveRuns,
}

func runArchiveRuns(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-16s  %-6s  %s\n",
		"Run", "Disease", "State", "Rounds", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range runs {
		disease := r.Disease
		if len(disease) > 30 {
			disease = disease[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-16s  %-6d  %s\n",
			r.ID, disease, r.State, r.Rounds, r.CreatedAt)
	}
	return nil
}

// --- retrieve subcommand ---

var archiveRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search archived evidence with full-text search and filters",
	Long: `Retrieve searches archived evidence items using FTS5 full-text search
over titles and quotes, structured filters (section, source, tag,
question, run), or a combination of both.`,
	RunE: runArchiveRetrieve,
}

func runArchiveRetrieve(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --section, --source, --tag, --question, or --run")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []archive.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-36s  %-28s  %-46s  %s\n",
		"Rank", "ID", "Section", "Title", "Year")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 124))

	for i, r := range results {
		title := r.Title
		if len(title) > 46 {
			title = title[:43] + "..."
		}
		section := r.Section
		if len(section) > 28 {
			section = section[:25] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-36s  %-28s  %-46s  %d\n",
			i+1, r.ID, section, title, r.Year)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- coverage subcommand ---

var archiveCoverageCmd = &cobra.Command{
	Use:   "coverage <run-id>",
	Short: "Show a run's archived per-question coverage",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveCoverage,
}

func runArchiveCoverage(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Coverage(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no coverage archived for run %s", args[0])
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	section := ""
	for _, row := range rows {
		if row.Section != section {
			section = row.Section
			fmt.Printf("%s:\n", section)
		}
		fmt.Printf("  %s: %d item(s)\n", row.Question, len(row.EvidenceIDs))
	}
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived evidence to YAML or JSON",
	Long: `Export writes archived evidence (or a filtered subset) to
<archive-dir>/index/export.yaml or export.json. Supports the same
filter flags as retrieve for partial exports.`,
	RunE: runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	archiveDir, _ := cmd.Flags().GetString("archive-dir")

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.yaml\n", archiveDir)
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.json\n", archiveDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	if archiveDir == "" {
		archiveDir = "archive"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return archive.Open(types.ArchiveConfig{
		ArchiveDir: archiveDir,
		MaxResults: maxResults,
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) archive.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	section, _ := cmd.Flags().GetString("section")
	source, _ := cmd.Flags().GetString("source")
	tag, _ := cmd.Flags().GetString("tag")
	question, _ := cmd.Flags().GetString("question")
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")

	return archive.QueryOptions{
		Query:      queryText,
		Section:    section,
		Source:     source,
		Tag:        tag,
		Question:   question,
		RunID:      runID,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	archiveCmd.PersistentFlags().String("archive-dir", "archive", "archive base directory (contains index/research.db)")
	archiveCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Runs flags: none beyond the shared set.

	// Retrieve flags.
	archiveRetrieveCmd.Flags().String("query", "", "full-text search query over titles and quotes")
	archiveRetrieveCmd.Flags().String("section", "", "filter by report section")
	archiveRetrieveCmd.Flags().String("source", "", "filter by evidence source: pubmed, clinicaltrials, google, guideline, press_release, other")
	archiveRetrieveCmd.Flags().String("tag", "", "filter by tag")
	archiveRetrieveCmd.Flags().String("question", "", "filter by supported question (exact match)")
	archiveRetrieveCmd.Flags().String("run", "", "filter by run ID")
	archiveRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	archiveRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Coverage flags.
	archiveCoverageCmd.Flags().Bool("json", false, "output coverage as JSON")

	// Export flags.
	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	archiveExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	archiveExportCmd.Flags().String("section", "", "filter by section for partial export")
	archiveExportCmd.Flags().String("source", "", "filter by source for partial export")
	archiveExportCmd.Flags().String("tag", "", "filter by tag for partial export")
	archiveExportCmd.Flags().String("question", "", "filter by question for partial export")
	archiveExportCmd.Flags().String("run", "", "filter by run ID for partial export")
	archiveExportCmd.Flags().Int("limit", 0, "maximum items to export (0 = all)")

	// Wire subcommands.
	archiveCmd.AddCommand(archiveRunsCmd)
	archiveCmd.AddCommand(archiveRetrieveCmd)
	archiveCmd.AddCommand(archiveCoverageCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
