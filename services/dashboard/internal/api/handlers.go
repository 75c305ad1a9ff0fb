package api

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"
	"jobtrends/services/dashboard/internal/view"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/dashboard/api")

type DatasetLoader interface {
	Load(ctx context.Context) (*jobs.Dataset, error)
}

type JobsHandler struct {
	store  DatasetLoader
	logger *zap.Logger
}

func NewJobsHandler(store DatasetLoader, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{store: store, logger: logger}
}

type JobsResponse struct {
	Total int                `json:"total"`
	Jobs  []jobs.EnrichedJob `json:"jobs"`
}

type SummaryResponse struct {
	view.Summary
	RemotePctText    string `json:"remote_pct_display"`
	AvgMinSalaryText string `json:"avg_min_salary_display"`
}

// ParsePredicates reads repeated location, seniority and skill query
// parameters. Skill and seniority values may also be comma separated.
func ParsePredicates(c *fiber.Ctx) (view.Predicates, error) {
	args := c.Context().QueryArgs()
	var p view.Predicates

	for _, v := range args.PeekMulti("location") {
		if loc := string(v); strings.TrimSpace(loc) != "" {
			p.Locations = append(p.Locations, loc)
		}
	}
	for _, raw := range splitValues(args.PeekMulti("seniority")) {
		s, err := jobs.ParseSeniority(raw)
		if err != nil {
			return view.Predicates{}, errors.InvalidInput("invalid seniority filter", err)
		}
		p.Seniorities = append(p.Seniorities, s)
	}
	for _, raw := range splitValues(args.PeekMulti("skill")) {
		s, err := jobs.ParseSkill(raw)
		if err != nil {
			return view.Predicates{}, errors.InvalidInput("invalid skill filter", err)
		}
		p.Skills = append(p.Skills, s)
	}
	return p, nil
}

func splitValues(values [][]byte) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(string(v), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *JobsHandler) filtered(ctx context.Context, c *fiber.Ctx) (*jobs.Dataset, []jobs.EnrichedJob, view.Predicates, error) {
	p, err := ParsePredicates(c)
	if err != nil {
		return nil, nil, p, err
	}
	ds, err := h.store.Load(ctx)
	if err != nil {
		h.logger.Error("failed to load dataset", zap.Error(err))
		return nil, nil, p, err
	}
	return ds, view.Filter(ds.Jobs, p), p, nil
}

func (h *JobsHandler) HandleFilters(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "HandleFilters")
	defer span.End()

	ds, err := h.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	return c.JSON(view.FilterOptions(ds.Jobs))
}

func (h *JobsHandler) HandleJobs(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "HandleJobs")
	defer span.End()

	_, rows, _, err := h.filtered(ctx, c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(telemetry.Int("rows.matched", len(rows)))
	return c.JSON(JobsResponse{Total: len(rows), Jobs: rows})
}

func (h *JobsHandler) HandleSummary(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "HandleSummary")
	defer span.End()

	_, rows, p, err := h.filtered(ctx, c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s := view.Summarize(rows, p.Skills)
	return c.JSON(SummaryResponse{
		Summary:          s,
		RemotePctText:    s.RemotePctDisplay(),
		AvgMinSalaryText: s.AvgMinSalaryDisplay(),
	})
}

func (h *JobsHandler) HandleCharts(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "HandleCharts")
	defer span.End()

	bins := view.DefaultHistogramBins
	if raw := c.Query("bins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			return errors.InvalidInput("bins must be an integer between 1 and 1000", err)
		}
		bins = n
	}

	_, rows, p, err := h.filtered(ctx, c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	return c.JSON(view.BuildCharts(rows, p.Skills, bins))
}

func (h *JobsHandler) HandleExport(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "HandleExport")
	defer span.End()

	ds, rows, _, err := h.filtered(ctx, c)
	if err != nil {
		span.RecordError(err)
		return err
	}

	var buf bytes.Buffer
	if err := jobs.WriteEnrichedCSV(&buf, ds.Columns, rows); err != nil {
		return errors.Internal("writing export", err)
	}
	c.Attachment("filtered_jobs.csv")
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Send(buf.Bytes())
}
