package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jobtrends/common/cache"
	"jobtrends/common/cache/memory"
	"jobtrends/common/errors"
	"jobtrends/services/ingestion/internal/config"

	"go.uber.org/zap"
)

func TestDatasetClient_FetchTableCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("job_title,location,salary,job_description\nAnalyst,Remote,$50k,SQL\n"))
	}))
	defer srv.Close()

	cfg := &config.Config{DatasetURL: srv.URL, DatasetTimeout: time.Second, CacheTTL: time.Minute}
	client := NewDatasetClient(zap.NewNop(), cfg, memory.New(cache.DefaultOptions()))

	for i := 0; i < 3; i++ {
		table, err := client.FetchTable(context.Background())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(table.Records) != 1 || table.Records[0].Salary != "$50k" {
			t.Fatalf("unexpected table %+v", table)
		}
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single download, got %d", hits)
	}
}

func TestDatasetClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := &config.Config{DatasetURL: srv.URL, DatasetTimeout: time.Second}
	client := NewDatasetClient(zap.NewNop(), cfg, memory.New(cache.DefaultOptions()))

	if _, err := client.FetchTable(context.Background()); !errors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
