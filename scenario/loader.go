package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadedTest pairs a single test case with the suite (and file) it came
// from, keeping a test's provenance alongside its parsed form.
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests walks dir for *.yaml scenario files and flattens every
// suite's test cases into one slice. A file that fails to parse is
// reported to stderr and skipped rather than aborting the whole run.
func LoadAllTests(dir string) ([]LoadedTest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve scenario directory: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("scenario directory %q: %w", abs, err)
	}

	var loaded []LoadedTest
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		tests, ferr := loadSuiteFile(path)
		if ferr != nil {
			relPath, _ := filepath.Rel(abs, path)
			fmt.Fprintf(os.Stderr, "scenario: skipping %s: %v\n", relPath, ferr)
			return nil
		}
		loaded = append(loaded, tests...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadSuiteFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	out := make([]LoadedTest, 0, len(suite.Tests))
	for _, tc := range suite.Tests {
		out = append(out, LoadedTest{File: path, Suite: suite, Test: tc})
	}
	return out, nil
}
