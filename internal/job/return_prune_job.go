package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/minionops/minionbase/internal/returner"
)

// ReturnPruneJob expires old job returns, loads and events. Archive
// export, when configured, happens inside the returner service before
// anything is deleted.
type ReturnPruneJob struct {
	returner  *returner.Service
	keepHours int
	eventKeep int
}

func NewReturnPruneJob(svc *returner.Service, keepHours, eventKeepHours int) *ReturnPruneJob {
	return &ReturnPruneJob{returner: svc, keepHours: keepHours, eventKeep: eventKeepHours}
}

func (j *ReturnPruneJob) Name() string {
	return "return_prune"
}

func (j *ReturnPruneJob) Run(ctx context.Context) error {
	keep := j.keepHours
	if keep <= 0 {
		keep = 24
	}
	eventKeep := j.eventKeep
	if eventKeep <= 0 {
		eventKeep = keep
	}
	stats, err := j.returner.Prune(ctx,
		time.Duration(keep)*time.Hour,
		time.Duration(eventKeep)*time.Hour)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("pruned job data",
		zap.Int64("returns", stats.Returns),
		zap.Int64("loads", stats.Loads),
		zap.Int64("events", stats.Events))
	return nil
}
