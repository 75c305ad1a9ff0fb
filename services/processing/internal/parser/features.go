package parser

import (
	"regexp"
	"strconv"
	"strings"

	"jobtrends/common/jobs"
)

var (
	skillPatterns = map[jobs.Skill]*regexp.Regexp{
		jobs.SkillPython: regexp.MustCompile(`(?i)\bpython\b`),
		jobs.SkillSQL:    regexp.MustCompile(`(?i)\bsql\b`),
		jobs.SkillExcel:  regexp.MustCompile(`(?i)\bexcel\b`),
		jobs.SkillAWS:    regexp.MustCompile(`(?i)\baws\b`),
	}

	currencyPattern = regexp.MustCompile(`[$€£¥₹,]`)
	digitsPattern   = regexp.MustCompile(`[0-9]+`)
)

// HasSkill reports whether description mentions skill as a whole word.
func HasSkill(description string, skill jobs.Skill) bool {
	pattern, ok := skillPatterns[skill]
	if !ok {
		return false
	}
	return pattern.MatchString(description)
}

func IsRemote(description, location string) bool {
	return strings.Contains(strings.ToLower(description), "remote") ||
		strings.Contains(strings.ToLower(location), "remote")
}

// ParseMinSalary returns the first run of digits in the salary string once
// currency symbols and thousands separators are removed. It returns nil when
// there is nothing usable.
func ParseMinSalary(salary string) *int64 {
	cleaned := currencyPattern.ReplaceAllString(strings.ToLower(salary), "")
	match := digitsPattern.FindString(cleaned)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
