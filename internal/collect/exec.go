// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect implements the collector dispatch layer: adapters
// that hand CollectTasks to external collaborators and return their
// raw payloads. Retry policy lives here, never in the core loop.
package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

const defaultTimeout = 5 * time.Minute

// runner abstracts command execution for testing.
type runner interface {
	RunPiped(ctx context.Context, name string, args, env []string, stdin io.Reader, stdout io.Writer) error
}

// osRunner is the production runner backed by os/exec.
type osRunner struct{}

func (osRunner) RunPiped(ctx context.Context, name string, args, env []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.Run()
}

// ExecCollector invokes an external collector command once per task.
// The task is written to the command's stdin as JSON; the evidence
// batch payload is read from its stdout. Secrets are passed through
// the process environment, so the engine itself never holds API
// sessions.
type ExecCollector struct {
	cfg types.CollectorConfig
	env []string
	run runner
}

// NewExecCollector builds an ExecCollector. Secrets are exported as
// environment variables with file names upper-snaked (e.g.
// "pubmed-api-key" becomes PUBMED_API_KEY).
func NewExecCollector(cfg types.CollectorConfig, secrets map[string]string) (*ExecCollector, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("collector command is required")
	}
	return &ExecCollector{cfg: cfg, env: environ(secrets), run: osRunner{}}, nil
}

// Collect runs the collector command for one task and returns its
// stdout. Empty output is an error so the controller can log it and
// treat the section as empty for the round.
func (c *ExecCollector) Collect(ctx context.Context, task types.CollectTask) ([]byte, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("encoding task for section %s: %w", task.Section, err)
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer
	if err := c.run.RunPiped(ctx, c.cfg.Command, c.cfg.Args, c.env, bytes.NewReader(payload), &out); err != nil {
		return nil, fmt.Errorf("running collector for section %s: %w", task.Section, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("collector produced no output for section %s", task.Section)
	}
	return out.Bytes(), nil
}

// environ converts a secrets map to KEY=value environment entries.
func environ(secrets map[string]string) []string {
	var env []string
	for name, value := range secrets {
		key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		env = append(env, key+"="+value)
	}
	return env
}
