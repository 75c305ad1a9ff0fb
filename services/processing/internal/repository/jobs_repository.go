package repository

import (
	"context"
	"fmt"
	"time"

	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/processing/repository")

type Row struct {
	ID  uuid.UUID
	Job jobs.EnrichedJob
}

type JobRepository interface {
	StoreJobs(ctx context.Context, rows []Row) error
}

type clickhouseRepository struct {
	conn      clickhouse.Conn
	logger    *zap.Logger
	batchSize int
	now       func() time.Time
}

func NewClickHouseRepository(conn clickhouse.Conn, logger *zap.Logger, batchSize int) JobRepository {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &clickhouseRepository{
		conn:      conn,
		logger:    logger,
		batchSize: batchSize,
		now:       time.Now,
	}
}

const insertEnrichedJobs = `
	INSERT INTO jobs_enriched (
		id, job_title, location, salary, job_description, extra,
		has_python, has_sql, has_excel, has_aws, is_remote,
		seniority, min_salary, salary_bucket, ingested_at
	)
`

func (r *clickhouseRepository) StoreJobs(ctx context.Context, rows []Row) error {
	ctx, span := tracer.Start(ctx, "StoreJobs")
	defer span.End()
	span.SetAttributes(telemetry.Int("rows", len(rows)))

	ingestedAt := r.now().UTC()
	for start := 0; start < len(rows); start += r.batchSize {
		end := start + r.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := r.insertBatch(ctx, rows[start:end], ingestedAt); err != nil {
			span.RecordError(err)
			return err
		}
	}

	r.logger.Debug("stored enriched jobs", zap.Int("rows", len(rows)))
	return nil
}

func (r *clickhouseRepository) insertBatch(ctx context.Context, rows []Row, ingestedAt time.Time) error {
	batch, err := r.conn.PrepareBatch(ctx, insertEnrichedJobs)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, row := range rows {
		job := row.Job
		extra := job.Extra
		if extra == nil {
			extra = map[string]string{}
		}
		if err := batch.Append(
			row.ID,
			job.JobTitle,
			job.Location,
			job.Salary,
			job.JobDescription,
			extra,
			job.HasPython,
			job.HasSQL,
			job.HasExcel,
			job.HasAWS,
			job.IsRemote,
			string(job.Seniority),
			job.MinSalary,
			string(job.SalaryBucket),
			ingestedAt,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append job %s: %w", row.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
