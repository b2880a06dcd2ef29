package index

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

/* One consumer's share of a flush. */
type flushTask struct {
	name string
	run  func() error
}

func consumerName(c interface{}) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}

/*
Runs the tasks concurrently, at most limit at a time; limit <= 0
means no bound. Every task runs to completion even if another one
failed. The first error is returned.
*/
func runFlushTasks(tasks []flushTask, limit int, state *SegmentWriteState) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			start := time.Now()
			err := task.run()
			if state.InfoStream.IsEnabled("DW") {
				state.InfoStream.Message("DW", "flush %v of segment %v took %v (err=%v)",
					task.name, state.SegmentName, time.Since(start), err)
			}
			return err
		})
	}
	return g.Wait()
}
