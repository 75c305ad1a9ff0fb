package scheduler

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"jobtrends/common/jobs"
	"jobtrends/services/ingestion/internal/config"

	"go.uber.org/zap"
)

type staticClient struct {
	table jobs.Table
	err   error
}

func (c staticClient) FetchTable(context.Context) (jobs.Table, error) {
	return c.table, c.err
}

type recordingPublisher struct {
	mu      sync.Mutex
	records []jobs.RawRecord
	failFor string
}

func (p *recordingPublisher) PublishRawRecord(_ context.Context, rec jobs.RawRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rec.JobTitle == p.failFor {
		return stderrors.New("nats down")
	}
	p.records = append(p.records, rec)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func table() jobs.Table {
	return jobs.Table{
		Columns: []string{"job_title", "location", "salary", "job_description"},
		Records: []jobs.RawRecord{
			{JobTitle: "Data Analyst", Location: "Austin", JobDescription: "SQL"},
			{JobTitle: "Senior Analyst", Location: "Remote", JobDescription: "Python"},
			{JobTitle: "Data Analyst", Location: "Austin", JobDescription: "SQL"},
		},
	}
}

func TestRunOnce_DeduplicatesAcrossRuns(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewJobScheduler(staticClient{table: table()}, pub, zap.NewNop(), &config.Config{PublishWorkers: 2})

	stats, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stats.RecordsFetched != 3 || stats.RecordsPublished != 2 || stats.RecordsSkipped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	stats, err = s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stats.RecordsPublished != 0 || stats.RecordsSkipped != 3 {
		t.Fatalf("second run should publish nothing, got %+v", stats)
	}
	if pub.count() != 2 {
		t.Fatalf("expected 2 published records, got %d", pub.count())
	}
}

func TestRunOnce_FailedPublishIsRetried(t *testing.T) {
	pub := &recordingPublisher{failFor: "Senior Analyst"}
	s := NewJobScheduler(staticClient{table: table()}, pub, zap.NewNop(), &config.Config{})

	stats, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stats.RecordsFailed != 1 || stats.RecordsPublished != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	pub.mu.Lock()
	pub.failFor = ""
	pub.mu.Unlock()

	stats, err = s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stats.RecordsPublished != 1 {
		t.Fatalf("failed record should be republished, got %+v", stats)
	}
}

func TestRunOnce_FetchError(t *testing.T) {
	s := NewJobScheduler(staticClient{err: stderrors.New("boom")}, &recordingPublisher{}, zap.NewNop(), &config.Config{})
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestFeedRecords_CancelledSendIsNotRemembered(t *testing.T) {
	s := NewJobScheduler(staticClient{}, &recordingPublisher{}, zap.NewNop(), &config.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := table().Records[0]
	recordChan := make(chan jobs.RawRecord)
	stats := &RunStats{}
	s.feedRecords(ctx, []jobs.RawRecord{rec}, recordChan, stats)

	if _, open := <-recordChan; open {
		t.Fatal("record channel should be closed")
	}
	if !s.markSeen(rec) {
		t.Fatal("a record that was never handed to a worker must be retried on the next poll")
	}
}
