// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/pkg/types"
)

// dispatch fans the round's tasks out to the collector concurrently
// and gathers the decoded batches. A collector failure or a malformed
// payload is downgraded to a warning and an absent batch for that
// section; it never aborts the round, and it never cancels sibling
// collectors.
func (c *Controller) dispatch(ctx context.Context, tasks []types.CollectTask) map[string]evidence.Batch {
	type taskResult struct {
		section string
		payload []byte
		err     error
	}

	ch := make(chan taskResult, len(tasks))
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task types.CollectTask) {
			defer wg.Done()
			payload, err := c.collector.Collect(ctx, task)
			ch <- taskResult{section: task.Section, payload: payload, err: err}
		}(task)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	batches := make(map[string]evidence.Batch, len(tasks))
	for tr := range ch {
		if tr.err != nil {
			fmt.Fprintf(c.w, "warning: collector for section %s failed: %v\n", tr.section, tr.err)
			continue
		}
		batch, err := evidence.DecodeBatch(tr.section, tr.payload)
		if err != nil {
			fmt.Fprintf(c.w, "warning: %v; treating section %s as empty this round\n", err, tr.section)
			continue
		}
		batches[tr.section] = batch
	}
	return batches
}
