package view

import (
	"strings"

	"jobtrends/common/jobs"
)

type Options struct {
	Locations   []string         `json:"locations"`
	Seniorities []jobs.Seniority `json:"seniorities"`
	Skills      []jobs.Skill     `json:"skills"`
}

// FilterOptions lists the distinct non-blank locations and seniorities in
// first-seen order.
func FilterOptions(rows []jobs.EnrichedJob) Options {
	opts := Options{
		Locations:   []string{},
		Seniorities: []jobs.Seniority{},
		Skills:      jobs.Skills,
	}
	seenLoc := make(map[string]bool)
	seenSen := make(map[jobs.Seniority]bool)
	for _, row := range rows {
		if strings.TrimSpace(row.Location) != "" && !seenLoc[row.Location] {
			seenLoc[row.Location] = true
			opts.Locations = append(opts.Locations, row.Location)
		}
		if row.Seniority != "" && !seenSen[row.Seniority] {
			seenSen[row.Seniority] = true
			opts.Seniorities = append(opts.Seniorities, row.Seniority)
		}
	}
	return opts
}
