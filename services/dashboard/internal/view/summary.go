package view

import (
	"fmt"

	"jobtrends/common/jobs"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type SkillCount struct {
	Skill jobs.Skill `json:"skill"`
	Label string     `json:"label"`
	Count int        `json:"count"`
}

type Summary struct {
	Total     int     `json:"total"`
	RemotePct float64 `json:"remote_pct"`
	// AvgMinSalary is nil when no row carries a salary.
	AvgMinSalary *float64     `json:"avg_min_salary"`
	SkillCounts  []SkillCount `json:"skill_counts"`
}

// Summarize computes the summary over rows. Skill counts follow the
// canonical skill order regardless of the order skills are given in.
func Summarize(rows []jobs.EnrichedJob, skills []jobs.Skill) Summary {
	s := Summary{Total: len(rows)}

	var remote, salaries int
	var salarySum float64
	for _, row := range rows {
		if row.IsRemote {
			remote++
		}
		if row.MinSalary != nil {
			salaries++
			salarySum += float64(*row.MinSalary)
		}
	}
	if len(rows) > 0 {
		s.RemotePct = float64(remote) / float64(len(rows)) * 100
	}
	if salaries > 0 {
		avg := salarySum / float64(salaries)
		s.AvgMinSalary = &avg
	}
	s.SkillCounts = SkillCounts(rows, skills)
	return s
}

// SkillCounts counts rows flagged for each of skills, in canonical order.
func SkillCounts(rows []jobs.EnrichedJob, skills []jobs.Skill) []SkillCount {
	selected := make(map[jobs.Skill]bool, len(skills))
	for _, s := range skills {
		selected[s] = true
	}

	counts := make([]SkillCount, 0, len(skills))
	for _, skill := range jobs.Skills {
		if !selected[skill] {
			continue
		}
		c := SkillCount{Skill: skill, Label: skill.Label()}
		for _, row := range rows {
			if row.HasSkill(skill) {
				c.Count++
			}
		}
		counts = append(counts, c)
	}
	return counts
}

func (s Summary) RemotePctDisplay() string {
	return fmt.Sprintf("%.2f%%", s.RemotePct)
}

// AvgMinSalaryDisplay renders the average as currency, $0.00 when absent.
func (s Summary) AvgMinSalaryDisplay() string {
	if s.AvgMinSalary == nil {
		return FormatCurrency(0)
	}
	return FormatCurrency(*s.AvgMinSalary)
}

// FormatCurrency formats v with a dollar sign, thousands separators and two
// decimals, e.g. $1,234.56.
func FormatCurrency(v float64) string {
	p := message.NewPrinter(language.English)
	if v < 0 {
		return "-" + p.Sprintf("$%.2f", -v)
	}
	return p.Sprintf("$%.2f", v)
}
