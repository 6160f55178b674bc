package scenario

import (
	"fmt"
	"reflect"
	"strings"

	"loom/content"
	"loom/engine"
	"loom/loader"
)

// TestResult is the outcome of running one scenario test case.
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
}

// Runner executes scenario test cases. It is stateless between cases: a
// fresh Engine is built from each test's suite story before it runs.
type Runner struct{}

// NewRunner returns a Runner.
func NewRunner() *Runner { return &Runner{} }

// Run executes a single test case: loads the suite's story fresh,
// steps and chooses per Choices, and checks the result against Expect.
func (r *Runner) Run(test LoadedTest) TestResult {
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{Test: test, Skipped: true, SkipReason: reason}
	}

	tree, err := loader.Load([]byte(test.Suite.Story))
	if err != nil {
		if test.Test.Expect.Error != "" {
			return TestResult{Test: test, Passed: strings.Contains(err.Error(), test.Test.Expect.Error)}
		}
		return TestResult{Test: test, Error: fmt.Errorf("load story: %w", err)}
	}

	eng := engine.New(tree, nil)
	for name, stub := range test.Test.Externals {
		val, cerr := convertValue(stub.Returns)
		if cerr != nil {
			return TestResult{Test: test, Error: fmt.Errorf("external %q: %w", name, cerr)}
		}
		eng.BindExternal(name, func(args []content.Value) (content.Value, error) { return val, nil }, true)
	}

	var externalTrace []string
	if len(test.Test.Expect.ExternalTrace) > 0 {
		eng.Callbacks.OnEvaluateFunction = func(name string, args []content.Value) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.String()
			}
			entry := name
			if len(parts) > 0 {
				entry = fmt.Sprintf("%s + %v", name, parts)
			}
			externalTrace = append(externalTrace, entry)
		}
	}

	var gotLines []string
	var gotTags [][]string
	choiceStep := 0

	for eng.CanContinue() || len(eng.CurrentChoices()) > 0 {
		if eng.CanContinue() {
			text, cerr := eng.ContinueMaximally()
			if cerr != nil {
				if test.Test.Expect.Error != "" {
					return TestResult{Test: test, Passed: strings.Contains(cerr.Error(), test.Test.Expect.Error)}
				}
				return TestResult{Test: test, Error: fmt.Errorf("continue: %w", cerr)}
			}
			gotLines = append(gotLines, text)
			gotTags = append(gotTags, eng.CurrentTags())
			continue
		}
		if len(eng.CurrentChoices()) == 0 {
			break
		}
		idx := 0
		if choiceStep < len(test.Test.Choices) {
			idx = test.Test.Choices[choiceStep]
		}
		choiceStep++
		if cerr := eng.ChooseChoice(idx); cerr != nil {
			if test.Test.Expect.Error != "" {
				return TestResult{Test: test, Passed: strings.Contains(cerr.Error(), test.Test.Expect.Error)}
			}
			return TestResult{Test: test, Error: fmt.Errorf("choose-choice: %w", cerr)}
		}
	}

	if test.Test.Expect.Error != "" {
		return TestResult{Test: test, Error: fmt.Errorf("expected error %q but playthrough completed", test.Test.Expect.Error)}
	}

	if len(test.Test.Expect.Lines) > 0 && !reflect.DeepEqual(gotLines, test.Test.Expect.Lines) {
		return TestResult{Test: test, Error: fmt.Errorf("lines mismatch: got %v, want %v", gotLines, test.Test.Expect.Lines)}
	}
	if len(test.Test.Expect.Tags) > 0 && !tagsEqual(gotTags, test.Test.Expect.Tags) {
		return TestResult{Test: test, Error: fmt.Errorf("tags mismatch: got %v, want %v", gotTags, test.Test.Expect.Tags)}
	}
	if len(test.Test.Expect.ExternalTrace) > 0 && !reflect.DeepEqual(externalTrace, test.Test.Expect.ExternalTrace) {
		return TestResult{Test: test, Error: fmt.Errorf("external trace mismatch: got %v, want %v", externalTrace, test.Test.Expect.ExternalTrace)}
	}
	for name, want := range test.Test.Expect.FinalVars {
		wantVal, cerr := convertValue(want)
		if cerr != nil {
			return TestResult{Test: test, Error: fmt.Errorf("finalVars %q: %w", name, cerr)}
		}
		got, ok := eng.VariablesState().Get(name)
		if !ok {
			return TestResult{Test: test, Error: fmt.Errorf("finalVars: no such global %q", name)}
		}
		if !got.Equal(wantVal) {
			return TestResult{Test: test, Error: fmt.Errorf("finalVars %q: got %v, want %v", name, got, wantVal)}
		}
	}

	return TestResult{Test: test, Passed: true}
}

// RunAll executes every test in tests.
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	out := make([]TestResult, len(tests))
	for i, t := range tests {
		out[i] = r.Run(t)
	}
	return out
}

// Stats summarizes a batch of TestResults.
type Stats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats tallies results into a Stats.
func ComputeStats(results []TestResult) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Passed:
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

// FormatStats renders a Stats as a human-readable summary.
func FormatStats(s Stats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)", s.Passed, s.Failed, s.Skipped, s.Total)
}

func tagsEqual(got, want [][]string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !reflect.DeepEqual(got[i], want[i]) {
			return false
		}
	}
	return true
}

// convertValue converts a YAML-decoded value into a content.Value.
func convertValue(v interface{}) (content.Value, error) {
	switch val := v.(type) {
	case int:
		return content.NewInt(val), nil
	case int64:
		return content.NewInt(int(val)), nil
	case float64:
		return content.NewFloat(val), nil
	case string:
		return content.NewString(val), nil
	case bool:
		return content.NewBool(val), nil
	default:
		return nil, fmt.Errorf("unsupported scenario value type %T", v)
	}
}
