package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jobtrends/common/jobs"
	"jobtrends/services/ingestion/internal/config"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func TestPublisher_PublishRawRecord(t *testing.T) {
	s := natsserver.RunRandClientPortServer()
	defer s.Shutdown()

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()
	sub, err := nc.SubscribeSync("jobs.raw")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	pub, err := NewPublisher(zap.NewNop(), &config.Config{
		NATSURL:         s.ClientURL(),
		NATSConnTimeout: time.Second,
		RawSubject:      "jobs.raw",
	})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	rec := jobs.RawRecord{JobTitle: "Data Analyst", Location: "Austin", Salary: "$60k", JobDescription: "SQL"}
	if err := pub.PublishRawRecord(context.Background(), rec); err != nil {
		t.Fatalf("publish: %v", err)
	}
	pub.Close()

	msg, err := sub.NextMsg(2 * time.Second)
	if err != nil {
		t.Fatalf("next msg: %v", err)
	}
	var got jobs.RawRecord
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ContentKey() != rec.ContentKey() {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestNewPublisher_Unreachable(t *testing.T) {
	_, err := NewPublisher(zap.NewNop(), &config.Config{
		NATSURL:         "nats://127.0.0.1:1",
		NATSConnTimeout: 100 * time.Millisecond,
		RawSubject:      "jobs.raw",
	})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
