// Package tasks wires concrete background jobs into the scheduler.
package tasks

import (
	"context"
	"errors"

	"github.com/skyflixer/skyflixer/internal/config"
	"github.com/skyflixer/skyflixer/internal/scheduler"
	"github.com/skyflixer/skyflixer/internal/videoindex"
)

const IndexRefreshTaskID = "index-refresh"

// RegisterIndexRefreshTask registers the periodic index rebuild with the
// scheduler. A rebuild that overlaps a still-running one is skipped, not an
// error.
func RegisterIndexRefreshTask(sched *scheduler.Scheduler, builder *videoindex.Builder, cfg *config.IndexConfig) error {
	cronExpr := cfg.RefreshCron
	if cronExpr == "" {
		cronExpr = "0 */6 * * *"
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          IndexRefreshTaskID,
		Name:        "Index Refresh",
		Description: "Fetch all host listings and rebuild the video index",
		Cron:        cronExpr,
		RunOnStart:  cfg.RebuildOnStart,
		Func: func(ctx context.Context) error {
			_, err := builder.Rebuild(ctx)
			if errors.Is(err, videoindex.ErrRebuildInFlight) {
				return nil
			}
			return err
		},
	})
}
