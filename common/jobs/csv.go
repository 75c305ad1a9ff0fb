package jobs

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"jobtrends/common/errors"
)

// RequiredColumns must be present in every raw dataset header.
var RequiredColumns = []string{ColumnJobTitle, ColumnLocation, ColumnJobDescription}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

func readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.InvalidInput("dataset is empty", nil)
	}
	if err != nil {
		return nil, errors.InvalidInput("reading header", err)
	}
	header = normalizeHeader(header)

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, errors.InvalidInput(fmt.Sprintf("missing required column %q", col), nil)
		}
	}
	return header, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func recordFromRow(header, row []string, skip map[string]bool) RawRecord {
	rec := RawRecord{}
	for i, col := range header {
		if skip[col] {
			continue
		}
		v := cell(row, i)
		switch col {
		case ColumnJobTitle:
			rec.JobTitle = v
		case ColumnLocation:
			rec.Location = v
		case ColumnSalary:
			rec.Salary = v
		case ColumnJobDescription:
			rec.JobDescription = v
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = v
		}
	}
	return rec
}

// ReadRawCSV parses a raw job postings table. Every column is retained; a
// header without job_title, location or job_description is rejected.
func ReadRawCSV(r io.Reader) (Table, error) {
	reader := newReader(r)
	header, err := readHeader(reader)
	if err != nil {
		return Table{}, err
	}

	table := Table{Columns: header}
	for {
		row, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, errors.InvalidInput("reading row", err)
		}
		table.Records = append(table.Records, recordFromRow(header, row, nil))
	}
	return table, nil
}

// ReadEnrichedCSV parses a table previously written by WriteEnrichedCSV. It
// also accepts pandas-style booleans (True/False) and float salaries. A blank
// or missing seniority or salary_bucket is derived from the title or
// min_salary.
func ReadEnrichedCSV(r io.Reader) (*Dataset, error) {
	reader := newReader(r)
	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	derived := make(map[string]bool, len(DerivedColumns))
	for _, c := range DerivedColumns {
		derived[c] = true
	}
	index := make(map[string]int, len(header))
	ds := &Dataset{}
	for i, h := range header {
		index[h] = i
		if !derived[h] {
			ds.Columns = append(ds.Columns, h)
		}
	}

	get := func(row []string, col string) string {
		if i, ok := index[col]; ok {
			return strings.TrimSpace(cell(row, i))
		}
		return ""
	}

	line := 1
	for {
		row, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.InvalidInput("reading row", err)
		}
		line++

		job := EnrichedJob{RawRecord: recordFromRow(header, row, derived)}
		for _, f := range []struct {
			col string
			dst *bool
		}{
			{ColumnHasPython, &job.HasPython},
			{ColumnHasSQL, &job.HasSQL},
			{ColumnHasExcel, &job.HasExcel},
			{ColumnHasAWS, &job.HasAWS},
			{ColumnIsRemote, &job.IsRemote},
		} {
			if *f.dst, err = parseBool(get(row, f.col)); err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("line %d: column %s", line, f.col), err)
			}
		}

		job.Seniority = Seniority(get(row, ColumnSeniority))
		if job.Seniority == "" {
			job.Seniority = ClassifySeniority(job.JobTitle)
		}
		if job.MinSalary, err = parseOptionalInt(get(row, ColumnMinSalary)); err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("line %d: column %s", line, ColumnMinSalary), err)
		}
		job.SalaryBucket = SalaryBucket(get(row, ColumnSalaryBucket))
		if job.SalaryBucket == "" {
			job.SalaryBucket = BucketSalary(job.MinSalary)
		}

		ds.Jobs = append(ds.Jobs, job)
	}
	return ds, nil
}

// WriteEnrichedCSV writes the retained raw columns followed by DerivedColumns.
func WriteEnrichedCSV(w io.Writer, columns []string, rows []EnrichedJob) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(columns)+len(DerivedColumns))
	header = append(header, columns...)
	header = append(header, DerivedColumns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, job := range rows {
		for i, col := range columns {
			row[i] = job.Value(col)
		}
		n := len(columns)
		row[n] = strconv.FormatBool(job.HasPython)
		row[n+1] = strconv.FormatBool(job.HasSQL)
		row[n+2] = strconv.FormatBool(job.HasExcel)
		row[n+3] = strconv.FormatBool(job.HasAWS)
		row[n+4] = strconv.FormatBool(job.IsRemote)
		row[n+5] = string(job.Seniority)
		row[n+6] = ""
		if job.MinSalary != nil {
			row[n+6] = strconv.FormatInt(*job.MinSalary, 10)
		}
		row[n+7] = string(job.SalaryBucket)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// parseOptionalInt reads a salary cell. Negative or out of range values are
// treated as absent.
func parseOptionalInt(s string) (*int64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return nil, nil
		}
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if stderrors.As(err, &numErr) && stderrors.Is(numErr.Err, strconv.ErrRange) {
			return nil, nil
		}
		return nil, err
	}
	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return nil, nil
	}
	v := int64(f)
	return &v, nil
}
