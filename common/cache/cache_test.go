package cache

import (
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	if got := Key("dataset"); got != "jobtrends:dataset" {
		t.Fatalf("Key() = %q", got)
	}

	a := Key("dataset", "data/cleaned_jobs.csv")
	b := Key("dataset", "data/other.csv")
	if a == b {
		t.Fatalf("different paths produced the same key")
	}
	if !strings.HasPrefix(a, "jobtrends:dataset:") || len(a) != len("jobtrends:dataset:")+16 {
		t.Fatalf("unexpected key %q", a)
	}

	if got := Key("source", "csv", "https://example.com/jobs.csv"); !strings.HasPrefix(got, "jobtrends:source:csv:") {
		t.Fatalf("unexpected key %q", got)
	}
}
