package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"jobtrends/common/jobs"
	"jobtrends/services/processing/internal/config"
	"jobtrends/services/processing/internal/processor"
	"jobtrends/services/processing/internal/repository"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func connect(t *testing.T) *nats.Conn {
	t.Helper()
	s := natsserver.RunRandClientPortServer()
	t.Cleanup(s.Shutdown)

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

type channelRepo struct {
	mu   sync.Mutex
	rows []repository.Row
	got  chan struct{}
}

func (r *channelRepo) StoreJobs(_ context.Context, rows []repository.Row) error {
	r.mu.Lock()
	r.rows = append(r.rows, rows...)
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

func TestHandler_StoresRawRecordsFromBus(t *testing.T) {
	nc := connect(t)
	repo := &channelRepo{got: make(chan struct{}, 4)}
	cfg := &config.Config{RawSubject: "jobs.raw", QueueGroup: "processing-service", ProcessingTimeout: time.Second}
	p := processor.NewJobProcessor(zap.NewNop(), nil, repo, nil)
	h := NewHandler(zap.NewNop(), nc, noop.NewTracerProvider().Tracer("test"), p, cfg)

	lc := fxtest.NewLifecycle(t)
	if err := h.RegisterSubscriptions(lc); err != nil {
		t.Fatalf("register: %v", err)
	}
	lc.RequireStart()

	rec := jobs.RawRecord{
		JobTitle:       "Senior Data Analyst",
		Location:       "Remote",
		Salary:         "$45,000 - $55,000",
		JobDescription: "Python and SQL",
		Extra:          map[string]string{"source_url": "https://example.com/1", "company": "Acme"},
	}
	data, _ := json.Marshal(rec)
	if err := nc.Publish(cfg.RawSubject, []byte(`{"job_title":""}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := nc.Publish(cfg.RawSubject, data); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-repo.got:
	case <-time.After(2 * time.Second):
		t.Fatal("record was not stored")
	}
	lc.RequireStop()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.rows) != 1 {
		t.Fatalf("expected only the valid record to be stored, got %d", len(repo.rows))
	}
	job := repo.rows[0].Job
	if job.Seniority != jobs.SenioritySenior || !job.HasPython || !job.HasSQL || job.SalaryBucket != jobs.SalaryBucketLow {
		t.Fatalf("unexpected job %+v", job)
	}
	if _, ok := job.Extra["source_url"]; ok {
		t.Fatalf("provenance column stored: %v", job.Extra)
	}
}

func TestDatasetPublisher(t *testing.T) {
	nc := connect(t)
	sub, err := nc.SubscribeSync("jobs.enriched")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := NewDatasetPublisher(nc, "jobs.enriched", zap.NewNop())
	event := jobs.DatasetEvent{ID: "e1", Path: "data/cleaned_jobs.csv", Rows: 12, GeneratedAt: time.Now().UTC()}
	if err := pub.PublishDatasetReady(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg, err := sub.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatalf("next msg: %v", err)
	}
	var got jobs.DatasetEvent
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "e1" || got.Rows != 12 || got.Path != event.Path {
		t.Fatalf("unexpected event %+v", got)
	}
}
