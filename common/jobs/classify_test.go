package jobs

import "testing"

func TestClassifySeniority(t *testing.T) {
	tests := []struct {
		title string
		want  Seniority
	}{
		{"Senior Data Analyst", SenioritySenior},
		{"Data Analyst", SeniorityMid},
		{"Sr. Data Engineer", SenioritySenior},
		{"Lead Analyst", SenioritySenior},
		{"VP, Analytics", SenioritySenior},
		{"Head of Data", SenioritySenior},
		{"Junior Analyst", SeniorityJunior},
		{"Jr Data Scientist", SeniorityJunior},
		{"Entry-Level Analyst", SeniorityJunior},
		{"Data Science Internship", SeniorityJunior},
		{"Associate Manager", SenioritySenior},
		{"SRE", SeniorityMid},
		{"Internal Auditor", SeniorityMid},
		{"   ", SeniorityOther},
	}
	for _, tt := range tests {
		if got := ClassifySeniority(tt.title); got != tt.want {
			t.Errorf("ClassifySeniority(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestBucketSalary(t *testing.T) {
	tests := []struct {
		in   *int64
		want SalaryBucket
	}{
		{nil, SalaryBucketUnknown},
		{int64Ptr(0), SalaryBucketLow},
		{int64Ptr(49999), SalaryBucketLow},
		{int64Ptr(50000), SalaryBucketMedium},
		{int64Ptr(100000), SalaryBucketMedium},
		{int64Ptr(100001), SalaryBucketHigh},
	}
	for _, tt := range tests {
		if got := BucketSalary(tt.in); got != tt.want {
			t.Errorf("BucketSalary(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

