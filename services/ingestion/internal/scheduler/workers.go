package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"jobtrends/common/jobs"

	"go.uber.org/zap"
)

const defaultWorkers = 10

type workerManager struct {
	scheduler  *JobScheduler
	logger     *zap.Logger
	numWorkers int
}

func newWorkerManager(scheduler *JobScheduler, logger *zap.Logger, numWorkers int) *workerManager {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &workerManager{
		scheduler:  scheduler,
		logger:     logger,
		numWorkers: numWorkers,
	}
}

func (w *workerManager) startWorkers(ctx context.Context, stats *RunStats, recordChan <-chan jobs.RawRecord) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < w.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range recordChan {
				if err := w.scheduler.processRecord(ctx, rec); err != nil {
					w.logger.Error("failed to publish record",
						zap.String("job_title", rec.JobTitle),
						zap.Error(err))
					atomic.AddInt32(&stats.RecordsFailed, 1)
					continue
				}
				atomic.AddInt32(&stats.RecordsPublished, 1)
			}
		}()
	}
	return &wg
}
