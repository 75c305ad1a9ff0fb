package scheduler

import (
	"context"
	"sync"
	"time"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"
	"jobtrends/services/ingestion/internal/api"
	"jobtrends/services/ingestion/internal/config"
	"jobtrends/services/ingestion/internal/messaging"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/ingestion/scheduler")

// JobScheduler periodically downloads the dataset and publishes every record
// it has not published before.
type JobScheduler struct {
	client        api.DatasetClient
	publisher     messaging.Publisher
	logger        *zap.Logger
	config        *config.Config
	mutex         sync.Mutex
	isActive      bool
	workerManager *workerManager

	seenMu sync.Mutex
	seen   map[string]struct{}
}

func NewJobScheduler(client api.DatasetClient, publisher messaging.Publisher, logger *zap.Logger, config *config.Config) *JobScheduler {
	scheduler := &JobScheduler{
		client:    client,
		publisher: publisher,
		logger:    logger,
		config:    config,
		seen:      make(map[string]struct{}),
	}
	scheduler.workerManager = newWorkerManager(scheduler, logger, config.PublishWorkers)
	return scheduler
}

func (s *JobScheduler) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "JobScheduler.Start")
	defer span.End()

	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	s.isActive = true
	s.mutex.Unlock()

	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("initial fetch failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("periodic fetch failed", zap.Error(err))
			}
		}
	}
}

func (s *JobScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isActive = false
}

type RunStats struct {
	RecordsFetched   int32
	RecordsSkipped   int32
	RecordsPublished int32
	RecordsFailed    int32
}

// RunOnce fetches the dataset and publishes new records through the worker pool.
func (s *JobScheduler) RunOnce(ctx context.Context) (RunStats, error) {
	ctx, span := tracer.Start(ctx, "JobScheduler.RunOnce")
	defer span.End()

	s.logger.Info("fetching job postings dataset", zap.String("url", s.config.DatasetURL))
	table, err := s.client.FetchTable(ctx)
	if err != nil {
		span.RecordError(err)
		return RunStats{}, errors.Internal("failed to fetch dataset", err)
	}

	stats := &RunStats{RecordsFetched: int32(len(table.Records))}
	span.SetAttributes(telemetry.Int("records.count", len(table.Records)))

	recordChan := make(chan jobs.RawRecord)
	doneChan := make(chan struct{})

	wg := s.workerManager.startWorkers(ctx, stats, recordChan)
	go s.feedRecords(ctx, table.Records, recordChan, stats)
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	return s.waitForCompletion(ctx, doneChan, stats)
}

// feedRecords sends unseen records to the workers and closes the channel
// when done.
func (s *JobScheduler) feedRecords(ctx context.Context, records []jobs.RawRecord, recordChan chan<- jobs.RawRecord, stats *RunStats) {
	defer close(recordChan)
	for _, rec := range records {
		if !s.markSeen(rec) {
			stats.RecordsSkipped++
			continue
		}
		select {
		case <-ctx.Done():
			s.forget(rec)
			return
		case recordChan <- rec:
		}
	}
}

// markSeen reports whether rec is new and records it.
func (s *JobScheduler) markSeen(rec jobs.RawRecord) bool {
	key := rec.ContentKey()
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

func (s *JobScheduler) forget(rec jobs.RawRecord) {
	s.seenMu.Lock()
	delete(s.seen, rec.ContentKey())
	s.seenMu.Unlock()
}

func (s *JobScheduler) waitForCompletion(ctx context.Context, doneChan <-chan struct{}, stats *RunStats) (RunStats, error) {
	select {
	case <-ctx.Done():
		return RunStats{}, ctx.Err()
	case <-doneChan:
		s.logger.Info("completed publishing job postings",
			zap.Int32("fetched", stats.RecordsFetched),
			zap.Int32("skipped", stats.RecordsSkipped),
			zap.Int32("published", stats.RecordsPublished),
			zap.Int32("failed", stats.RecordsFailed))
		return *stats, nil
	}
}

func (s *JobScheduler) processRecord(ctx context.Context, rec jobs.RawRecord) error {
	ctx, span := tracer.Start(ctx, "JobScheduler.processRecord")
	defer span.End()
	span.SetAttributes(telemetry.String("job_title", rec.JobTitle))

	if err := s.publisher.PublishRawRecord(ctx, rec); err != nil {
		span.RecordError(err)
		// retry on the next poll
		s.forget(rec)
		return errors.Internal("failed to publish raw record", err)
	}
	return nil
}
