// Package view filters an enriched table and aggregates the matching rows
// for display. Every function is pure and leaves its input untouched.
package view

import (
	"jobtrends/common/jobs"
)

// Predicates combine conjunctively. An empty dimension places no constraint.
type Predicates struct {
	Locations   []string
	Seniorities []jobs.Seniority
	Skills      []jobs.Skill
}

func (p Predicates) IsEmpty() bool {
	return len(p.Locations) == 0 && len(p.Seniorities) == 0 && len(p.Skills) == 0
}

// Filter returns the rows matching every active predicate, in input order.
func Filter(rows []jobs.EnrichedJob, p Predicates) []jobs.EnrichedJob {
	locations := make(map[string]struct{}, len(p.Locations))
	for _, l := range p.Locations {
		locations[l] = struct{}{}
	}
	seniorities := make(map[jobs.Seniority]struct{}, len(p.Seniorities))
	for _, s := range p.Seniorities {
		seniorities[s] = struct{}{}
	}

	out := make([]jobs.EnrichedJob, 0, len(rows))
	for _, row := range rows {
		if len(locations) > 0 {
			if _, ok := locations[row.Location]; !ok {
				continue
			}
		}
		if len(seniorities) > 0 {
			if _, ok := seniorities[row.Seniority]; !ok {
				continue
			}
		}
		if !hasAllSkills(row, p.Skills) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func hasAllSkills(row jobs.EnrichedJob, skills []jobs.Skill) bool {
	for _, s := range skills {
		if !row.HasSkill(s) {
			return false
		}
	}
	return true
}
