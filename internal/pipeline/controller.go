// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the gap-driven research loop: dispatch
// collectors for every plan section, aggregate their batches into an
// immutable evidence store, measure coverage, derive gap tasks, and
// iterate with targeted collectors until coverage converges or the
// round budget runs out.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/deep-research/internal/coverage"
	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/pkg/types"
)

// State is the controller's position in the research loop.
type State string

const (
	StatePlanned            State = "PLANNED"
	StateCollecting         State = "COLLECTING"
	StateAggregating        State = "AGGREGATING"
	StateAnalyzing          State = "ANALYZING"
	StateTargetedCollecting State = "TARGETED_COLLECTING"
	StateConverged          State = "CONVERGED"
	StateBudgetExhausted    State = "BUDGET_EXHAUSTED"
)

// Terminal reports whether the state ends the loop.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateBudgetExhausted
}

// Collector executes one collection task against an external
// collaborator and returns its raw payload. Implementations live in
// the dispatch layer (internal/collect); the controller only sees
// bytes and decodes them tolerantly.
type Collector interface {
	Collect(ctx context.Context, task types.CollectTask) ([]byte, error)
}

// Result is the outcome of a full pipeline run. Both terminal states
// yield a usable store and coverage map; BUDGET_EXHAUSTED is a quality
// signal, not an error.
type Result struct {
	// RunID uniquely identifies this run.
	RunID string

	// State is the terminal state: CONVERGED or BUDGET_EXHAUSTED.
	State State

	// Rounds is the number of collection rounds executed.
	Rounds int

	// Store is the final evidence store.
	Store *evidence.Store

	// Coverage is the final per-question coverage map.
	Coverage coverage.Coverage

	// Stats holds the counts from the final aggregation pass.
	Stats evidence.Stats

	// Gaps lists the tasks still outstanding at exit. Empty when the
	// run converged.
	Gaps []types.GapTask
}

// Controller owns the loop state machine. Each round consumes an
// immutable store snapshot and produces a new one; no shared mutable
// state crosses rounds.
type Controller struct {
	plan      types.ResearchPlan
	collector Collector
	cfg       types.CoverageConfig
	guidance  types.GuidanceMap
	state     State
	w         io.Writer
}

// Option configures a Controller.
type Option func(*Controller)

// WithGuidance supplies reviewer guidance for gap-building and
// targeted-task enrichment.
func WithGuidance(g types.GuidanceMap) Option {
	return func(c *Controller) { c.guidance = g }
}

// WithOutput directs progress and warning lines to w.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) { c.w = w }
}

// New validates the plan and builds a Controller in the PLANNED state.
// The plan must have at least one section; every section name must be
// a member of the closed section vocabulary and appear at most once.
func New(plan types.ResearchPlan, collector Collector, cfg types.CoverageConfig, opts ...Option) (*Controller, error) {
	if collector == nil {
		return nil, fmt.Errorf("collector is required")
	}
	if len(plan.Sections) == 0 {
		return nil, fmt.Errorf("research plan has no sections")
	}
	seen := make(map[string]bool, len(plan.Sections))
	for _, s := range plan.Sections {
		if !types.IsCommonSection(s.Name) {
			return nil, fmt.Errorf("plan section %q is not a known report section", s.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("plan section %q appears more than once", s.Name)
		}
		seen[s.Name] = true
	}

	c := &Controller{
		plan:      plan,
		collector: collector,
		cfg:       cfg,
		state:     StatePlanned,
		w:         io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.w == nil {
		c.w = io.Discard
	}
	return c, nil
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Run executes the loop to a terminal state. Round zero dispatches one
// collector per plan section; later rounds dispatch one targeted
// collector per gap task. The analysis after each aggregation doubles
// as the final analysis pass when the budget runs out, so the last
// round's evidence is always reflected in the returned coverage.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	fmt.Fprintf(c.w, "run %s: %d section(s), budget %d round(s)\n", res.RunID, len(c.plan.Sections), c.cfg.Rounds())

	var store *evidence.Store
	tasks := c.initialTasks()

	for round := 0; ; round++ {
		res.Rounds = round + 1

		if round == 0 {
			c.transition(StateCollecting)
		} else {
			c.transition(StateTargetedCollecting)
		}
		fmt.Fprintf(c.w, "round %d: dispatching %d collector(s)\n", round+1, len(tasks))
		batches := c.dispatch(ctx, tasks)

		c.transition(StateAggregating)
		next, stats, err := evidence.Aggregate(batches, store, c.w)
		if err != nil {
			return nil, fmt.Errorf("round %d aggregation: %w", round+1, err)
		}
		store = next
		res.Stats = stats

		c.transition(StateAnalyzing)
		res.Store = store
		res.Coverage = coverage.Build(c.plan, store)
		res.Gaps = coverage.BuildGapTasks(res.Coverage, c.cfg, c.guidance)

		if len(res.Gaps) == 0 {
			c.transition(StateConverged)
			res.State = StateConverged
			fmt.Fprintf(c.w, "run %s converged after %d round(s) with %d item(s)\n", res.RunID, res.Rounds, store.Len())
			return res, nil
		}
		if round+1 >= c.cfg.Rounds() {
			c.transition(StateBudgetExhausted)
			res.State = StateBudgetExhausted
			fmt.Fprintf(c.w, "run %s exhausted its %d-round budget with %d gap task(s) outstanding\n",
				res.RunID, res.Rounds, len(res.Gaps))
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tasks = c.targetedTasks(res.Gaps)
	}
}

func (c *Controller) transition(next State) {
	c.state = next
	fmt.Fprintf(c.w, "state: %s\n", next)
}

// initialTasks builds the round-zero tasks: one full-section sweep per
// plan section.
func (c *Controller) initialTasks() []types.CollectTask {
	tasks := make([]types.CollectTask, 0, len(c.plan.Sections))
	for _, s := range c.plan.Sections {
		tasks = append(tasks, types.CollectTask{
			Disease:          c.plan.Disease,
			Section:          s.Name,
			Questions:        s.KeyQuestions,
			Scope:            s.Scope,
			MinEvidence:      c.cfg.QuestionMin(),
			SuggestedQueries: c.guidance[s.Name].SuggestedQueries,
		})
	}
	return tasks
}

// targetedTasks converts gap tasks into collector tasks, enriched with
// the plan section's scope and any advisory queries from guidance.
func (c *Controller) targetedTasks(gaps []types.GapTask) []types.CollectTask {
	tasks := make([]types.CollectTask, 0, len(gaps))
	for _, gap := range gaps {
		task := types.CollectTask{
			Disease:          c.plan.Disease,
			Section:          gap.Section,
			Questions:        gap.MissingQuestions,
			MinEvidence:      gap.MinEvidence,
			SuggestedQueries: c.guidance[gap.Section].SuggestedQueries,
			Targeted:         true,
		}
		if s := c.plan.Section(gap.Section); s != nil {
			task.Scope = s.Scope
		}
		tasks = append(tasks, task)
	}
	return tasks
}
