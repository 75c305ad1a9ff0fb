package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ColumnJobTitle       = "job_title"
	ColumnLocation       = "location"
	ColumnSalary         = "salary"
	ColumnJobDescription = "job_description"

	ColumnHasPython    = "has_python"
	ColumnHasSQL       = "has_sql"
	ColumnHasExcel     = "has_excel"
	ColumnHasAWS       = "has_aws"
	ColumnIsRemote     = "is_remote"
	ColumnSeniority    = "seniority"
	ColumnMinSalary    = "min_salary"
	ColumnSalaryBucket = "salary_bucket"
)

// DerivedColumns lists the enriched columns in output order.
var DerivedColumns = []string{
	ColumnHasPython,
	ColumnHasSQL,
	ColumnHasExcel,
	ColumnHasAWS,
	ColumnIsRemote,
	ColumnSeniority,
	ColumnMinSalary,
	ColumnSalaryBucket,
}

type RawRecord struct {
	JobTitle       string            `json:"job_title"`
	Location       string            `json:"location"`
	Salary         string            `json:"salary"`
	JobDescription string            `json:"job_description"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Value returns the raw value stored under column.
func (r RawRecord) Value(column string) string {
	switch column {
	case ColumnJobTitle:
		return r.JobTitle
	case ColumnLocation:
		return r.Location
	case ColumnSalary:
		return r.Salary
	case ColumnJobDescription:
		return r.JobDescription
	}
	return r.Extra[column]
}

// ContentKey joins the four core fields. Two records with the same key
// describe the same posting.
func (r RawRecord) ContentKey() string {
	return strings.Join([]string{r.JobTitle, r.Location, r.Salary, r.JobDescription}, "\x1f")
}

// Table is a raw dataset: the retained column names in input order and one
// record per row.
type Table struct {
	Columns []string
	Records []RawRecord
}

type EnrichedJob struct {
	RawRecord

	HasPython    bool         `json:"has_python"`
	HasSQL       bool         `json:"has_sql"`
	HasExcel     bool         `json:"has_excel"`
	HasAWS       bool         `json:"has_aws"`
	IsRemote     bool         `json:"is_remote"`
	Seniority    Seniority    `json:"seniority"`
	MinSalary    *int64       `json:"min_salary"`
	SalaryBucket SalaryBucket `json:"salary_bucket"`
}

// HasSkill reports the flag for skill.
func (j EnrichedJob) HasSkill(skill Skill) bool {
	switch skill {
	case SkillPython:
		return j.HasPython
	case SkillSQL:
		return j.HasSQL
	case SkillExcel:
		return j.HasExcel
	case SkillAWS:
		return j.HasAWS
	}
	return false
}

// Dataset is an enriched table along with its raw column layout.
type Dataset struct {
	Columns []string      `json:"columns"`
	Jobs    []EnrichedJob `json:"jobs"`
}

func (d *Dataset) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Dataset) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}

type Seniority string

const (
	SenioritySenior Seniority = "Senior"
	SeniorityMid    Seniority = "Mid"
	SeniorityJunior Seniority = "Junior"
	SeniorityOther  Seniority = "Other"
)

func ParseSeniority(s string) (Seniority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "senior":
		return SenioritySenior, nil
	case "mid":
		return SeniorityMid, nil
	case "junior":
		return SeniorityJunior, nil
	case "other":
		return SeniorityOther, nil
	}
	return "", fmt.Errorf("unknown seniority %q", s)
}

type SalaryBucket string

const (
	SalaryBucketLow     SalaryBucket = "Low"
	SalaryBucketMedium  SalaryBucket = "Medium"
	SalaryBucketHigh    SalaryBucket = "High"
	SalaryBucketUnknown SalaryBucket = "Unknown"
)

type Skill string

const (
	SkillPython Skill = "python"
	SkillSQL    Skill = "sql"
	SkillExcel  Skill = "excel"
	SkillAWS    Skill = "aws"
)

// Skills is the canonical skill order used for columns and counts.
var Skills = []Skill{SkillPython, SkillSQL, SkillExcel, SkillAWS}

func (s Skill) Label() string {
	switch s {
	case SkillPython:
		return "Python"
	case SkillSQL:
		return "SQL"
	case SkillExcel:
		return "Excel"
	case SkillAWS:
		return "AWS"
	}
	return string(s)
}

func (s Skill) Column() string {
	return "has_" + string(s)
}

func ParseSkill(s string) (Skill, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "has_")
	for _, skill := range Skills {
		if v == string(skill) {
			return skill, nil
		}
	}
	return "", fmt.Errorf("unknown skill %q", s)
}
