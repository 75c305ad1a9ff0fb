package events

import (
	"context"
	"encoding/json"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/processing/events")

type DatasetPublisher interface {
	PublishDatasetReady(ctx context.Context, event jobs.DatasetEvent) error
}

type natsDatasetPublisher struct {
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewDatasetPublisher(nc *nats.Conn, subject string, logger *zap.Logger) DatasetPublisher {
	return &natsDatasetPublisher{
		nc:      nc,
		subject: subject,
		logger:  logger,
	}
}

func (p *natsDatasetPublisher) PublishDatasetReady(ctx context.Context, event jobs.DatasetEvent) error {
	_, span := tracer.Start(ctx, "PublishDatasetReady")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling dataset event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.nc.Publish(p.subject, data); err != nil {
		span.RecordError(err)
		return errors.Unavailable("publishing dataset event", err)
	}
	if err := p.nc.Flush(); err != nil {
		return errors.Unavailable("flushing dataset event", err)
	}

	p.logger.Info("published dataset event",
		zap.String("id", event.ID),
		zap.String("path", event.Path),
		zap.Int("rows", event.Rows))
	return nil
}
