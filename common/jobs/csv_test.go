package jobs

import (
	"bytes"
	"strings"
	"testing"

	"jobtrends/common/errors"
)

func int64Ptr(v int64) *int64 { return &v }

func TestReadRawCSV(t *testing.T) {
	input := "\ufeffJob_Title, location ,salary,job_description,company\n" +
		"Senior Data Analyst,NYC,\"$45,000 - $55,000\",Python and SQL,Acme\n" +
		"Intern,Remote,,short\n"

	table, err := ReadRawCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	wantCols := []string{"job_title", "location", "salary", "job_description", "company"}
	if strings.Join(table.Columns, ",") != strings.Join(wantCols, ",") {
		t.Fatalf("columns = %v, want %v", table.Columns, wantCols)
	}
	if len(table.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(table.Records))
	}

	first := table.Records[0]
	if first.JobTitle != "Senior Data Analyst" || first.Salary != "$45,000 - $55,000" {
		t.Fatalf("unexpected first record %+v", first)
	}
	if first.Value("company") != "Acme" {
		t.Fatalf("expected extra column to be retained, got %+v", first.Extra)
	}

	// ragged row: missing trailing cell reads as empty
	if table.Records[1].Value("company") != "" {
		t.Fatalf("expected empty company for short row")
	}
}

func TestReadRawCSV_MissingRequiredColumn(t *testing.T) {
	_, err := ReadRawCSV(strings.NewReader("job_title,salary\nAnalyst,1\n"))
	if !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	_, err = ReadRawCSV(strings.NewReader(""))
	if !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for empty input, got %v", err)
	}
}

func TestWriteThenReadEnrichedCSV(t *testing.T) {
	columns := []string{"job_title", "location", "salary", "job_description", "company"}
	rows := []EnrichedJob{
		{
			RawRecord: RawRecord{
				JobTitle:       "Senior Data Analyst",
				Location:       "New York, NY",
				Salary:         "$120,000",
				JobDescription: "SQL, \"quoted\" text",
				Extra:          map[string]string{"company": "Acme"},
			},
			HasSQL:       true,
			Seniority:    SenioritySenior,
			MinSalary:    int64Ptr(120000),
			SalaryBucket: SalaryBucketHigh,
		},
		{
			RawRecord: RawRecord{JobTitle: "Analyst", Location: "Remote", JobDescription: "remote"},
			IsRemote:  true,
			Seniority: SeniorityMid,
			// absent salary
			SalaryBucket: SalaryBucketUnknown,
		},
	}

	var buf bytes.Buffer
	if err := WriteEnrichedCSV(&buf, columns, rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	want := "job_title,location,salary,job_description,company,has_python,has_sql,has_excel,has_aws,is_remote,seniority,min_salary,salary_bucket"
	if header != want {
		t.Fatalf("header = %q, want %q", header, want)
	}

	ds, err := ReadEnrichedCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Join(ds.Columns, ",") != strings.Join(columns, ",") {
		t.Fatalf("columns = %v", ds.Columns)
	}
	if len(ds.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(ds.Jobs))
	}

	got := ds.Jobs[0]
	if !got.HasSQL || got.HasPython || got.Seniority != SenioritySenior || got.SalaryBucket != SalaryBucketHigh {
		t.Fatalf("unexpected job %+v", got)
	}
	if got.MinSalary == nil || *got.MinSalary != 120000 {
		t.Fatalf("unexpected min salary %v", got.MinSalary)
	}
	if got.Value("company") != "Acme" || got.JobDescription != "SQL, \"quoted\" text" {
		t.Fatalf("raw values not preserved: %+v", got.RawRecord)
	}
	if ds.Jobs[1].MinSalary != nil || !ds.Jobs[1].IsRemote {
		t.Fatalf("unexpected second job %+v", ds.Jobs[1])
	}
}

func TestReadEnrichedCSV_PandasOutput(t *testing.T) {
	input := "job_title,location,salary,job_description,has_python,has_sql,has_excel,has_aws,is_remote,seniority,min_salary\n" +
		"Data Analyst,Austin,$45000,Python,True,False,False,False,False,Mid,45000.0\n" +
		"Jr Analyst,Austin,,Excel,False,False,True,False,True,Junior,\n"

	ds, err := ReadEnrichedCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ds.Jobs[0].HasPython || *ds.Jobs[0].MinSalary != 45000 {
		t.Fatalf("unexpected first job %+v", ds.Jobs[0])
	}
	if ds.Jobs[1].MinSalary != nil || ds.Jobs[1].SalaryBucket != SalaryBucketUnknown {
		t.Fatalf("unexpected second job %+v", ds.Jobs[1])
	}
	if ds.Jobs[0].SalaryBucket != SalaryBucketLow {
		t.Fatalf("bucket should follow min_salary when the column is missing, got %s", ds.Jobs[0].SalaryBucket)
	}
}

func TestReadEnrichedCSV_DerivesMissingColumns(t *testing.T) {
	input := "job_title,location,job_description,min_salary,salary_bucket\n" +
		"Senior Data Analyst,NYC,SQL,120000,\n" +
		"Data Analyst,NYC,SQL,75000.0,\n" +
		"Intern,NYC,SQL,,\n" +
		",NYC,SQL,10,Low\n"

	ds, err := ReadEnrichedCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []struct {
		seniority Seniority
		bucket    SalaryBucket
	}{
		{SenioritySenior, SalaryBucketHigh},
		{SeniorityMid, SalaryBucketMedium},
		{SeniorityJunior, SalaryBucketUnknown},
		{SeniorityOther, SalaryBucketLow},
	}
	for i, w := range want {
		got := ds.Jobs[i]
		if got.Seniority != w.seniority || got.SalaryBucket != w.bucket {
			t.Errorf("row %d: got %s/%s, want %s/%s", i, got.Seniority, got.SalaryBucket, w.seniority, w.bucket)
		}
		if (got.MinSalary == nil) != (got.SalaryBucket == SalaryBucketUnknown) {
			t.Errorf("row %d: bucket %s inconsistent with min_salary %v", i, got.SalaryBucket, got.MinSalary)
		}
	}
}

func TestReadEnrichedCSV_InvalidSalariesAreAbsent(t *testing.T) {
	for _, v := range []string{"-5", "-5.0", "1e30", "99999999999999999999", "1e400", "NaN"} {
		input := "job_title,location,job_description,min_salary\nAnalyst,NYC,SQL," + v + "\n"
		ds, err := ReadEnrichedCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", v, err)
		}
		if got := ds.Jobs[0]; got.MinSalary != nil || got.SalaryBucket != SalaryBucketUnknown {
			t.Errorf("%s: got min_salary %v bucket %s, want absent", v, got.MinSalary, got.SalaryBucket)
		}
	}

	input := "job_title,location,job_description,min_salary\nAnalyst,NYC,SQL,abc\n"
	if _, err := ReadEnrichedCSV(strings.NewReader(input)); !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestReadEnrichedCSV_BadBool(t *testing.T) {
	input := "job_title,location,job_description,has_python\nA,B,C,maybe\n"
	if _, err := ReadEnrichedCSV(strings.NewReader(input)); !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestParseSkillAndSeniority(t *testing.T) {
	for _, in := range []string{"python", "Python", "has_python", " PYTHON "} {
		if s, err := ParseSkill(in); err != nil || s != SkillPython {
			t.Fatalf("ParseSkill(%q) = %v, %v", in, s, err)
		}
	}
	if _, err := ParseSkill("go"); err == nil {
		t.Fatalf("expected error for unknown skill")
	}
	if s, err := ParseSeniority("senior"); err != nil || s != SenioritySenior {
		t.Fatalf("ParseSeniority = %v, %v", s, err)
	}
	if _, err := ParseSeniority("staff"); err == nil {
		t.Fatalf("expected error for unknown seniority")
	}
	if SkillAWS.Label() != "AWS" || SkillExcel.Column() != "has_excel" {
		t.Fatalf("unexpected skill naming")
	}
}
