package view

import (
	"math"
	"sort"

	"jobtrends/common/jobs"
)

const DefaultHistogramBins = 30

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// SalaryHistogram splits present min_salary values into equal-width bins.
// A single distinct value is centred in a unit-wide range. The last bin is
// closed on both ends.
func SalaryHistogram(rows []jobs.EnrichedJob, bins int) []HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.MinSalary != nil {
			values = append(values, float64(*row.MinSalary))
		}
	}
	if len(values) == 0 {
		return []HistogramBin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

type PresenceCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PythonPresence counts rows without and with Python, in that order.
func PythonPresence(rows []jobs.EnrichedJob) []PresenceCount {
	no, yes := 0, 0
	for _, row := range rows {
		if row.HasPython {
			yes++
		} else {
			no++
		}
	}
	return []PresenceCount{{Label: "No", Count: no}, {Label: "Yes", Count: yes}}
}

type SeniorityCount struct {
	Seniority jobs.Seniority `json:"seniority"`
	Count     int            `json:"count"`
}

// SeniorityCounts orders levels by descending count, then by name.
func SeniorityCounts(rows []jobs.EnrichedJob) []SeniorityCount {
	counts := make(map[jobs.Seniority]int)
	for _, row := range rows {
		counts[row.Seniority]++
	}

	out := make([]SeniorityCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, SeniorityCount{Seniority: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Seniority < out[j].Seniority
	})
	return out
}

type Charts struct {
	SalaryHistogram []HistogramBin   `json:"salary_histogram"`
	PythonPresence  []PresenceCount  `json:"python_presence"`
	SkillCounts     []SkillCount     `json:"skill_counts"`
	SeniorityCounts []SeniorityCount `json:"seniority_counts"`
}

// BuildCharts computes every chart aggregate. With no skills selected the
// skill chart covers all of them.
func BuildCharts(rows []jobs.EnrichedJob, skills []jobs.Skill, bins int) Charts {
	if len(skills) == 0 {
		skills = jobs.Skills
	}
	return Charts{
		SalaryHistogram: SalaryHistogram(rows, bins),
		PythonPresence:  PythonPresence(rows),
		SkillCounts:     SkillCounts(rows, skills),
		SeniorityCounts: SeniorityCounts(rows),
	}
}
