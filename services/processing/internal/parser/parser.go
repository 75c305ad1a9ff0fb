package parser

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"jobtrends/common/errors"
	"jobtrends/common/jobs"
)

// ProvenanceColumns are crawl metadata columns dropped before enrichment.
var ProvenanceColumns = []string{"source_url", "url", "crawl_timestamp", "crawled_at", "scraped_at"}

var recordNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

var provenance = func() map[string]bool {
	m := make(map[string]bool, len(ProvenanceColumns))
	for _, c := range ProvenanceColumns {
		m[c] = true
	}
	return m
}()

type CleanStats struct {
	RowsRead       int
	RowsDropped    int
	ColumnsDropped []string
}

// Clean drops rows missing a title, location or description and removes
// provenance columns. The input table is not modified.
func Clean(table jobs.Table) (jobs.Table, CleanStats) {
	stats := CleanStats{RowsRead: len(table.Records)}

	out := jobs.Table{Columns: make([]string, 0, len(table.Columns))}
	for _, col := range table.Columns {
		if provenance[col] {
			stats.ColumnsDropped = append(stats.ColumnsDropped, col)
			continue
		}
		out.Columns = append(out.Columns, col)
	}

	for _, rec := range table.Records {
		if isBlank(rec.JobTitle) || isBlank(rec.Location) || isBlank(rec.JobDescription) {
			stats.RowsDropped++
			continue
		}
		out.Records = append(out.Records, StripProvenance(rec))
	}
	return out, stats
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// StripProvenance returns rec without crawl metadata columns. rec.Extra is
// copied, never modified.
func StripProvenance(rec jobs.RawRecord) jobs.RawRecord {
	if len(rec.Extra) == 0 {
		return rec
	}
	extra := make(map[string]string, len(rec.Extra))
	for k, v := range rec.Extra {
		if !provenance[strings.ToLower(strings.TrimSpace(k))] {
			extra[k] = v
		}
	}
	rec.Extra = extra
	return rec
}

// Enrich derives every feature column from a single raw record.
func Enrich(rec jobs.RawRecord) jobs.EnrichedJob {
	minSalary := ParseMinSalary(rec.Salary)
	return jobs.EnrichedJob{
		RawRecord:    rec,
		HasPython:    HasSkill(rec.JobDescription, jobs.SkillPython),
		HasSQL:       HasSkill(rec.JobDescription, jobs.SkillSQL),
		HasExcel:     HasSkill(rec.JobDescription, jobs.SkillExcel),
		HasAWS:       HasSkill(rec.JobDescription, jobs.SkillAWS),
		IsRemote:     IsRemote(rec.JobDescription, rec.Location),
		Seniority:    jobs.ClassifySeniority(rec.JobTitle),
		MinSalary:    minSalary,
		SalaryBucket: jobs.BucketSalary(minSalary),
	}
}

func EnrichTable(table jobs.Table) []jobs.EnrichedJob {
	out := make([]jobs.EnrichedJob, len(table.Records))
	for i, rec := range table.Records {
		out[i] = Enrich(rec)
	}
	return out
}

// ParseRawRecord decodes a single raw record message published on the bus
// and drops its provenance columns.
func ParseRawRecord(data []byte) (jobs.RawRecord, error) {
	var rec jobs.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return jobs.RawRecord{}, errors.InvalidInput("decoding raw record", err)
	}
	if isBlank(rec.JobTitle) || isBlank(rec.Location) || isBlank(rec.JobDescription) {
		return jobs.RawRecord{}, errors.InvalidInput("raw record is missing title, location or description", nil)
	}
	return StripProvenance(rec), nil
}

// RecordID derives a stable identifier from the record's content so that
// re-ingesting the same posting yields the same row.
func RecordID(rec jobs.RawRecord) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(rec.ContentKey()))
}
