// Package scenario implements a YAML-driven conformance harness for the
// story engine: each suite names an inline compiled-story document and a
// sequence of per-test continue/choice steps with expected output.
package scenario

// TestSuite represents a complete YAML scenario file: one compiled
// story plus the test cases run against it.
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Story       string     `yaml:"story"` // inline loader.Load-compatible JSON
	Tests       []TestCase `yaml:"tests"`
}

// TestCase drives one playthrough: continue repeatedly, picking
// Choices[i] after the i-th line stops at a choice point, then checks
// Expect against what the engine produced.
type TestCase struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Skip        interface{}             `yaml:"skip,omitempty"` // bool or string
	Choices     []int                   `yaml:"choices,omitempty"`
	Externals   map[string]ExternalStub `yaml:"externals,omitempty"`
	Expect      Expectation             `yaml:"expect"`
}

// ExternalStub binds a fixed return value to a named external function
// for the duration of a test case.
type ExternalStub struct {
	Returns interface{} `yaml:"returns"`
}

// Expectation names what a test case's playthrough must produce.
type Expectation struct {
	Lines         []string               `yaml:"lines,omitempty"`         // current-text after each continue, in order
	Tags          [][]string             `yaml:"tags,omitempty"`          // current-tags after each continue, parallel to Lines
	Error         string                 `yaml:"error,omitempty"`         // substring expected in a load or session error
	FinalVars     map[string]interface{} `yaml:"finalVars,omitempty"`     // expected global values once the playthrough ends
	ExternalTrace []string               `yaml:"externalTrace,omitempty"` // expected on-evaluate-function call trace, in order
}

// IsSkipped reports whether a test case should be skipped, and why.
func (tc *TestCase) IsSkipped() (bool, string) {
	switch v := tc.Skip.(type) {
	case nil:
		return false, ""
	case bool:
		return v, "skipped"
	case string:
		return true, v
	default:
		return false, ""
	}
}
