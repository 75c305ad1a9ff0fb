package events

import (
	"context"
	"fmt"

	"jobtrends/services/processing/internal/config"
	"jobtrends/services/processing/internal/processor"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Handler struct {
	logger       *zap.Logger
	nc           *nats.Conn
	tracer       trace.Tracer
	jobProcessor *processor.JobProcessor
	config       *config.Config
	sub          *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, jobProcessor *processor.JobProcessor, config *config.Config) *Handler {
	return &Handler{
		logger:       logger,
		nc:           nc,
		tracer:       tracer,
		jobProcessor: jobProcessor,
		config:       config,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(h.config.RawSubject, h.config.QueueGroup, h.handleRawRecord)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.config.RawSubject, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions",
		zap.String("subject", h.config.RawSubject),
		zap.String("queue", h.config.QueueGroup))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Drain()
		},
	})

	return nil
}

func (h *Handler) handleRawRecord(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.ProcessingTimeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "handleRawRecord")
	defer span.End()

	if err := h.jobProcessor.ProcessRawRecord(ctx, msg.Data); err != nil {
		h.logger.Error("Failed to process raw record",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
		return
	}

	h.logger.Debug("Processed raw record",
		zap.String("subject", msg.Subject),
	)
}
