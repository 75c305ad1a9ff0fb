package jobs

import (
	"regexp"
	"strings"
)

const (
	lowSalaryCeiling    = 50000
	mediumSalaryCeiling = 100000
)

var (
	tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

	seniorTokens = []string{"senior", "sr", "lead", "principal", "manager", "director", "vp", "head"}
	juniorTokens = []string{"junior", "jr", "associate", "entry", "intern", "internship"}
)

// ClassifySeniority maps a job title to a seniority level. Senior keywords win
// over junior ones; titles matching neither are Mid.
func ClassifySeniority(title string) Seniority {
	tokens := tokenPattern.FindAllString(strings.ToLower(title), -1)
	if len(tokens) == 0 {
		return SeniorityOther
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		seen[tok] = struct{}{}
	}

	if containsAny(seen, seniorTokens) {
		return SenioritySenior
	}
	if containsAny(seen, juniorTokens) {
		return SeniorityJunior
	}
	return SeniorityMid
}

func containsAny(tokens map[string]struct{}, candidates []string) bool {
	for _, c := range candidates {
		if _, ok := tokens[c]; ok {
			return true
		}
	}
	return false
}

func BucketSalary(minSalary *int64) SalaryBucket {
	switch {
	case minSalary == nil:
		return SalaryBucketUnknown
	case *minSalary < lowSalaryCeiling:
		return SalaryBucketLow
	case *minSalary <= mediumSalaryCeiling:
		return SalaryBucketMedium
	default:
		return SalaryBucketHigh
	}
}
