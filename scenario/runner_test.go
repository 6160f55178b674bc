package scenario

import "testing"

// TestCorpus drives every YAML suite under testdata through the Runner.
// Each case is reported individually so a single failing scenario names
// itself.
func TestCorpus(t *testing.T) {
	tests, err := LoadAllTests("testdata")
	if err != nil {
		t.Fatalf("load scenarios: %v", err)
	}
	if len(tests) == 0 {
		t.Fatal("no scenario tests found under testdata")
	}

	r := NewRunner()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.Suite.Name+"/"+tc.Test.Name, func(t *testing.T) {
			res := r.Run(tc)
			if res.Skipped {
				t.Skip(res.SkipReason)
			}
			if !res.Passed {
				t.Fatalf("scenario failed: %v", res.Error)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	results := []TestResult{
		{Passed: true},
		{Skipped: true, SkipReason: "not yet"},
		{Error: nil, Passed: false},
	}
	s := ComputeStats(results)
	if s.Total != 3 || s.Passed != 1 || s.Skipped != 1 || s.Failed != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if got := FormatStats(s); got != "1 passed, 1 failed, 1 skipped (3 total)" {
		t.Fatalf("unexpected format %q", got)
	}
}
