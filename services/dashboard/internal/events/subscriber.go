package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const invalidateTimeout = 5 * time.Second

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler drops the memoized dataset whenever a new enriched table is
// announced. Every dashboard instance subscribes, so no queue group is used.
type Handler struct {
	logger  *zap.Logger
	nc      *nats.Conn
	tracer  trace.Tracer
	store   Invalidator
	subject string
	sub     *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, store Invalidator, subject string) *Handler {
	return &Handler{
		logger:  logger,
		nc:      nc,
		tracer:  tracer,
		store:   store,
		subject: subject,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.Subscribe(h.subject, func(msg *nats.Msg) {
		h.HandleDatasetEvent(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.subject, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions", zap.String("subject", h.subject))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Drain()
		},
	})
	return nil
}

func (h *Handler) HandleDatasetEvent(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "HandleDatasetEvent")
	defer span.End()

	var event jobs.DatasetEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// still invalidate, the payload is informational only
		h.logger.Warn("Malformed dataset event", zap.Error(err))
	} else {
		span.SetAttributes(
			telemetry.String("event.id", event.ID),
			telemetry.Int("event.rows", event.Rows),
		)
	}

	if err := h.store.Invalidate(ctx); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to invalidate dataset", zap.Error(err))
		return
	}

	h.logger.Info("Dataset refreshed",
		zap.String("event_id", event.ID),
		zap.String("path", event.Path),
		zap.Int("rows", event.Rows))
}
