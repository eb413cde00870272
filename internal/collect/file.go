// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/deep-research/pkg/types"
)

// FileCollector replays evidence batches from a directory instead of
// calling an external collaborator. Round-zero tasks read
// <dir>/<section>.json; targeted tasks prefer
// <dir>/<section>.targeted.json and fall back to the round-zero file.
// Useful for offline runs and for re-aggregating previously captured
// collector output.
type FileCollector struct {
	// Dir is the batch directory.
	Dir string
}

// Collect reads the batch file for the task's section. A missing file
// yields an empty batch payload rather than an error: a section with
// no captured batch simply stays uncovered.
func (f FileCollector) Collect(_ context.Context, task types.CollectTask) ([]byte, error) {
	paths := []string{filepath.Join(f.Dir, task.Section+".json")}
	if task.Targeted {
		paths = append([]string{filepath.Join(f.Dir, task.Section+".targeted.json")}, paths...)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading batch file %s: %w", path, err)
		}
	}
	return []byte(fmt.Sprintf(`{"section": %q, "evidence": []}`, task.Section)), nil
}
