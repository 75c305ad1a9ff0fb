package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"
	"jobtrends/services/processing/internal/parser"
	"jobtrends/services/processing/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TableLoader loads a raw table from a path or URL.
type TableLoader interface {
	Load(ctx context.Context, location string) (jobs.Table, error)
}

// DatasetPublisher announces a freshly written enriched table.
type DatasetPublisher interface {
	PublishDatasetReady(ctx context.Context, event jobs.DatasetEvent) error
}

type TransformOptions struct {
	Input   string
	Output  string
	Store   bool
	Publish bool
}

type TransformReport struct {
	RowsRead       int
	RowsDropped    int
	RowsWritten    int
	ColumnsDropped []string
	Stored         bool
	Published      bool
	Duration       time.Duration
}

type JobProcessor struct {
	logger    *zap.Logger
	loader    TableLoader
	repo      repository.JobRepository
	publisher DatasetPublisher
	tracer    trace.Tracer
	now       func() time.Time
}

// NewJobProcessor wires the processor. repo and publisher may be nil when
// storage or notification is not configured.
func NewJobProcessor(logger *zap.Logger, loader TableLoader, repo repository.JobRepository, publisher DatasetPublisher) *JobProcessor {
	return &JobProcessor{
		logger:    logger,
		loader:    loader,
		repo:      repo,
		publisher: publisher,
		tracer:    telemetry.GetTracer("jobtrends/processing/processor"),
		now:       time.Now,
	}
}

// Transform runs the batch pipeline: load, clean, enrich, write and
// optionally store and announce the enriched table.
func (p *JobProcessor) Transform(ctx context.Context, opts TransformOptions) (TransformReport, error) {
	ctx, span := p.tracer.Start(ctx, "Transform")
	defer span.End()

	start := p.now()
	report := TransformReport{}

	raw, err := p.loader.Load(ctx, opts.Input)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("Failed to load raw dataset", zap.String("input", opts.Input), zap.Error(err))
		return report, fmt.Errorf("load raw dataset: %w", err)
	}

	cleaned, stats := parser.Clean(raw)
	report.RowsRead = stats.RowsRead
	report.RowsDropped = stats.RowsDropped
	report.ColumnsDropped = stats.ColumnsDropped

	enriched := parser.EnrichTable(cleaned)

	if err := writeEnriched(opts.Output, cleaned.Columns, enriched); err != nil {
		span.RecordError(err)
		return report, err
	}
	report.RowsWritten = len(enriched)

	if opts.Store {
		if err := p.store(ctx, enriched); err != nil {
			span.RecordError(err)
			return report, err
		}
		report.Stored = true
	}

	if opts.Publish {
		if p.publisher == nil {
			return report, errors.Unavailable("no dataset publisher configured", nil)
		}
		event := jobs.DatasetEvent{
			ID:          uuid.NewString(),
			Path:        opts.Output,
			Rows:        len(enriched),
			GeneratedAt: p.now().UTC(),
		}
		if err := p.publisher.PublishDatasetReady(ctx, event); err != nil {
			span.RecordError(err)
			return report, fmt.Errorf("publish dataset event: %w", err)
		}
		report.Published = true
	}

	report.Duration = p.now().Sub(start)
	span.SetAttributes(
		telemetry.Int("rows.read", report.RowsRead),
		telemetry.Int("rows.dropped", report.RowsDropped),
		telemetry.Int("rows.written", report.RowsWritten),
	)
	p.logger.Info("Transformed job postings",
		zap.String("input", opts.Input),
		zap.String("output", opts.Output),
		zap.Int("rows_read", report.RowsRead),
		zap.Int("rows_dropped", report.RowsDropped),
		zap.Int("rows_written", report.RowsWritten),
		zap.Strings("columns_dropped", report.ColumnsDropped),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// ProcessRawRecord enriches one raw record received from the bus and stores it.
func (p *JobProcessor) ProcessRawRecord(ctx context.Context, data []byte) error {
	ctx, span := p.tracer.Start(ctx, "ProcessRawRecord")
	defer span.End()

	rec, err := parser.ParseRawRecord(data)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("parse raw record: %w", err)
	}

	job := parser.Enrich(rec)
	if err := p.store(ctx, []jobs.EnrichedJob{job}); err != nil {
		span.RecordError(err)
		p.logger.Error("Failed to store enriched job", zap.Error(err))
		return err
	}
	return nil
}

func (p *JobProcessor) store(ctx context.Context, enriched []jobs.EnrichedJob) error {
	if p.repo == nil {
		return errors.Unavailable("no job repository configured", nil)
	}

	rows := make([]repository.Row, len(enriched))
	for i, job := range enriched {
		rows[i] = repository.Row{ID: parser.RecordID(job.RawRecord), Job: job}
	}
	if err := p.repo.StoreJobs(ctx, rows); err != nil {
		return errors.Internal("store enriched jobs", err)
	}
	return nil
}

// writeEnriched writes through a temporary file in the destination directory
// so readers never observe a partial table.
func writeEnriched(path string, columns []string, rows []jobs.EnrichedJob) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Internal(fmt.Sprintf("creating %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".enriched-*.csv")
	if err != nil {
		return errors.Internal("creating temporary output", err)
	}
	defer os.Remove(tmp.Name())

	if err := jobs.WriteEnrichedCSV(tmp, columns, rows); err != nil {
		tmp.Close()
		return errors.Internal(fmt.Sprintf("writing %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Internal(fmt.Sprintf("writing %s", path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Internal(fmt.Sprintf("renaming output to %s", path), err)
	}
	return nil
}
