// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/internal/collect"
	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/internal/plan"
	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the gap-driven research loop for a plan",
	Long: `Run loads a research plan, dispatches one collector per section,
aggregates the returned evidence, and iterates with targeted collectors
until every key question meets its evidence floor or the round budget
runs out. Budget exhaustion is not an error: the partial store is still
archived and reported, with the outstanding gaps listed.

Collectors are external programs: the task is written to stdin as JSON
and an evidence batch is read from stdout. Use --batch-dir to replay
captured batches from files instead.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("plan", "plans/plan.yaml", "research plan YAML file")
	runCmd.Flags().String("guidance", "", "optional reviewer guidance YAML file")
	runCmd.Flags().String("collector-cmd", "", "collector executable (task on stdin, batch on stdout)")
	runCmd.Flags().StringSlice("collector-arg", nil, "extra argument for the collector (repeatable)")
	runCmd.Flags().String("batch-dir", "", "replay batches from <dir>/<section>.json instead of running a collector")
	runCmd.Flags().Duration("timeout", 0, "per-collector timeout (default 5m)")
	runCmd.Flags().Int("max-retries", 0, "collector retry attempts (default 2)")
	runCmd.Flags().Int("min-evidence", 0, "per-question evidence floor (default 2)")
	runCmd.Flags().Int("max-rounds", 0, "collection round budget (default 5)")
	runCmd.Flags().String("archive-dir", "archive", "archive base directory (empty disables archiving)")
	runCmd.Flags().String("output-dir", "output", "directory for Markdown report fragments")
	runCmd.Flags().Bool("json", false, "print the run summary as JSON")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	planPath, _ := cmd.Flags().GetString("plan")
	p, err := plan.Load(planPath)
	if err != nil {
		return err
	}

	guidancePath, _ := cmd.Flags().GetString("guidance")
	guidance := plan.LoadGuidance(guidancePath, os.Stderr)

	collector, err := buildCollector(cmd)
	if err != nil {
		return err
	}

	cfg := coverageConfig(cmd)
	ctrl, err := pipeline.New(*p, collector, cfg,
		pipeline.WithGuidance(guidance),
		pipeline.WithOutput(os.Stderr))
	if err != nil {
		return err
	}

	res, err := ctrl.Run(cmd.Context())
	if err != nil {
		return err
	}

	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	if archiveDir != "" {
		if err := archiveRun(cmd, archiveDir, p.Disease, res); err != nil {
			return err
		}
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir != "" {
		if err := report.Write(outputDir, *p, res.Store, res.Coverage, cfg); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report fragments written to %s\n", outputDir)
	}

	return printRunSummary(cmd, res)
}

// buildCollector selects the dispatch strategy: file replay when
// --batch-dir is set, otherwise an external command wrapped in the
// retry layer.
func buildCollector(cmd *cobra.Command) (pipeline.Collector, error) {
	batchDir, _ := cmd.Flags().GetString("batch-dir")
	if batchDir == "" {
		batchDir = viper.GetString("collector.batch_dir")
	}
	if batchDir != "" {
		return collect.FileCollector{Dir: batchDir}, nil
	}

	command, _ := cmd.Flags().GetString("collector-cmd")
	if command == "" {
		command = viper.GetString("collector.command")
	}
	if command == "" {
		return nil, fmt.Errorf("collector required: provide --collector-cmd or --batch-dir")
	}

	cmdArgs, _ := cmd.Flags().GetStringSlice("collector-arg")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("collector.timeout")
	}
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	if maxRetries == 0 {
		maxRetries = viper.GetInt("collector.max_retries")
	}

	exec, err := collect.NewExecCollector(types.CollectorConfig{
		Command: command,
		Args:    cmdArgs,
		Timeout: timeout,
	}, loadedSecrets)
	if err != nil {
		return nil, err
	}
	return collect.WithRetry(exec, maxRetries), nil
}

// coverageConfig starts from the tuned defaults and applies config-file
// and flag overrides.
func coverageConfig(cmd *cobra.Command) types.CoverageConfig {
	cfg := types.DefaultCoverageConfig()

	if n := viper.GetInt("coverage.min_evidence"); n > 0 {
		cfg.MinEvidence = n
	}
	if n := viper.GetInt("coverage.max_rounds"); n > 0 {
		cfg.MaxRounds = n
	}
	for section, n := range viper.GetStringMap("coverage.section_min_evidence") {
		if v, ok := n.(int); ok && v > 0 {
			cfg.SectionMinEvidence[section] = v
		}
	}

	if n, _ := cmd.Flags().GetInt("min-evidence"); n > 0 {
		cfg.MinEvidence = n
	}
	if n, _ := cmd.Flags().GetInt("max-rounds"); n > 0 {
		cfg.MaxRounds = n
	}
	return cfg
}

func archiveRun(cmd *cobra.Command, archiveDir, disease string, res *pipeline.Result) error {
	store, err := archive.Open(types.ArchiveConfig{ArchiveDir: archiveDir})
	if err != nil {
		return err
	}
	defer store.Close()

	run := archive.RunRecord{
		ID:        res.RunID,
		Disease:   disease,
		State:     string(res.State),
		Rounds:    res.Rounds,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.SaveRun(cmd.Context(), run, res.Store, res.Coverage); err != nil {
		return fmt.Errorf("archiving run %s: %w", res.RunID, err)
	}
	fmt.Fprintf(os.Stderr, "Run %s archived to %s\n", res.RunID, archiveDir)
	return nil
}

// runSummary is the JSON shape of the run outcome.
type runSummary struct {
	RunID  string          `json:"run_id"`
	State  string          `json:"state"`
	Rounds int             `json:"rounds"`
	Items  int             `json:"items"`
	Gaps   []types.GapTask `json:"gaps,omitempty"`
}

func printRunSummary(cmd *cobra.Command, res *pipeline.Result) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runSummary{
			RunID:  res.RunID,
			State:  string(res.State),
			Rounds: res.Rounds,
			Items:  res.Store.Len(),
			Gaps:   res.Gaps,
		})
	}

	fmt.Printf("Run %s finished: %s after %d round(s), %d evidence item(s)\n",
		res.RunID, res.State, res.Rounds, res.Store.Len())
	if len(res.Gaps) > 0 {
		fmt.Printf("Outstanding gaps (%d):\n", len(res.Gaps))
		for _, gap := range res.Gaps {
			fmt.Printf("  %s: %d question(s) below the %d-item floor\n",
				gap.Section, len(gap.MissingQuestions), gap.MinEvidence)
		}
	}
	return nil
}
