package messaging

import (
	"context"
	"encoding/json"
	"time"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"
	"jobtrends/services/ingestion/internal/config"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/ingestion/messaging")

type Publisher interface {
	PublishRawRecord(ctx context.Context, record jobs.RawRecord) error
	Close()
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewPublisher(logger *zap.Logger, config *config.Config) (Publisher, error) {
	opts := []nats.Option{
		nats.Name("ingestion-service"),
		nats.Timeout(config.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(config.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:    conn,
		subject: config.RawSubject,
		logger:  logger,
	}, nil
}

func (p *natsPublisher) PublishRawRecord(ctx context.Context, record jobs.RawRecord) error {
	_, span := tracer.Start(ctx, "PublishRawRecord")
	defer span.End()

	data, err := json.Marshal(record)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling raw record", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(p.subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish raw record",
			zap.String("job_title", record.JobTitle),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published raw record",
		zap.String("job_title", record.JobTitle),
		zap.String("subject", p.subject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
		}
	}
}
