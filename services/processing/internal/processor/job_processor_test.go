package processor

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/services/processing/internal/repository"

	"go.uber.org/zap"
)

type stubLoader struct {
	table jobs.Table
	err   error
}

func (s stubLoader) Load(context.Context, string) (jobs.Table, error) {
	return s.table, s.err
}

type recordingRepo struct {
	rows []repository.Row
	err  error
}

func (r *recordingRepo) StoreJobs(_ context.Context, rows []repository.Row) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, rows...)
	return nil
}

type recordingPublisher struct {
	events []jobs.DatasetEvent
}

func (p *recordingPublisher) PublishDatasetReady(_ context.Context, event jobs.DatasetEvent) error {
	p.events = append(p.events, event)
	return nil
}

func sampleTable() jobs.Table {
	return jobs.Table{
		Columns: []string{"job_title", "location", "salary", "job_description", "source_url"},
		Records: []jobs.RawRecord{
			{
				JobTitle:       "Senior Data Analyst",
				Location:       "New York",
				Salary:         "$45,000 - $55,000",
				JobDescription: "Looking for a Python developer, remote OK",
				Extra:          map[string]string{"source_url": "https://example.com/1"},
			},
			{JobTitle: "Data Analyst", Location: "", JobDescription: "SQL"},
			{JobTitle: "Data Analyst", Location: "Austin", Salary: "DOE", JobDescription: "SQL and AWS"},
		},
	}
}

func TestTransform_WritesEnrichedTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "cleaned_jobs.csv")
	repo := &recordingRepo{}
	pub := &recordingPublisher{}
	p := NewJobProcessor(zap.NewNop(), stubLoader{table: sampleTable()}, repo, pub)

	report, err := p.Transform(context.Background(), TransformOptions{
		Input:   "raw.csv",
		Output:  out,
		Store:   true,
		Publish: true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if report.RowsRead != 3 || report.RowsDropped != 1 || report.RowsWritten != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !report.Stored || !report.Published {
		t.Fatalf("expected store and publish, got %+v", report)
	}
	if len(report.ColumnsDropped) != 1 || report.ColumnsDropped[0] != "source_url" {
		t.Fatalf("unexpected dropped columns %v", report.ColumnsDropped)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	ds, err := jobs.ReadEnrichedCSV(f)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Join(ds.Columns, ",") != "job_title,location,salary,job_description" {
		t.Fatalf("unexpected columns %v", ds.Columns)
	}
	if len(ds.Jobs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ds.Jobs))
	}
	first := ds.Jobs[0]
	if !first.HasPython || !first.IsRemote || first.Seniority != jobs.SenioritySenior || first.SalaryBucket != jobs.SalaryBucketLow {
		t.Fatalf("unexpected first row %+v", first)
	}
	second := ds.Jobs[1]
	if !second.HasSQL || !second.HasAWS || second.Seniority != jobs.SeniorityMid || second.MinSalary != nil {
		t.Fatalf("unexpected second row %+v", second)
	}

	if len(repo.rows) != 2 || repo.rows[0].ID == repo.rows[1].ID {
		t.Fatalf("unexpected stored rows %+v", repo.rows)
	}
	if len(pub.events) != 1 || pub.events[0].Rows != 2 || pub.events[0].Path != out {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestTransform_MissingInputIsFatal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")
	loadErr := errors.NotFound("raw dataset raw.csv", os.ErrNotExist)
	p := NewJobProcessor(zap.NewNop(), stubLoader{err: loadErr}, nil, nil)

	_, err := p.Transform(context.Background(), TransformOptions{Input: "raw.csv", Output: out})
	if !errors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, statErr := os.Stat(out); !stderrors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("no output should be written on a missing input")
	}
}

func TestTransform_StoreWithoutRepository(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")
	p := NewJobProcessor(zap.NewNop(), stubLoader{table: sampleTable()}, nil, nil)

	_, err := p.Transform(context.Background(), TransformOptions{Input: "raw.csv", Output: out, Store: true})
	if errors.TypeOf(err) != errors.ErrTypeUnavailable {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestProcessRawRecord(t *testing.T) {
	repo := &recordingRepo{}
	p := NewJobProcessor(zap.NewNop(), nil, repo, nil)

	msg := []byte(`{"job_title":"Jr Analyst","location":"Remote","salary":"$120,000","job_description":"Excel"}`)
	if err := p.ProcessRawRecord(context.Background(), msg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one stored row, got %d", len(repo.rows))
	}
	job := repo.rows[0].Job
	if job.Seniority != jobs.SeniorityJunior || !job.HasExcel || !job.IsRemote || job.SalaryBucket != jobs.SalaryBucketHigh {
		t.Fatalf("unexpected job %+v", job)
	}

	if err := p.ProcessRawRecord(context.Background(), []byte(`{}`)); !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	repo.err = stderrors.New("clickhouse down")
	if err := p.ProcessRawRecord(context.Background(), msg); errors.TypeOf(err) != errors.ErrTypeInternal {
		t.Fatalf("expected INTERNAL, got %v", err)
	}
}

func TestProcessRawRecord_DropsProvenanceColumns(t *testing.T) {
	repo := &recordingRepo{}
	p := NewJobProcessor(zap.NewNop(), nil, repo, nil)

	msg := []byte(`{"job_title":"Data Analyst","location":"Austin","salary":"","job_description":"SQL",` +
		`"extra":{"source_url":"https://example.com/1","crawl_timestamp":"2024-01-01","company":"Acme"}}`)
	if err := p.ProcessRawRecord(context.Background(), msg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one stored row, got %d", len(repo.rows))
	}

	extra := repo.rows[0].Job.Extra
	for _, col := range []string{"source_url", "crawl_timestamp"} {
		if _, ok := extra[col]; ok {
			t.Fatalf("column %s should not be stored, got %v", col, extra)
		}
	}
	if extra["company"] != "Acme" {
		t.Fatalf("non-provenance columns must be kept, got %v", extra)
	}
}
