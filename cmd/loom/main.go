// Command loom is the CLI façade over the story engine: load a compiled
// ink document and drive it, either non-interactively with a fixed
// choice sequence, interactively from a terminal, or by running a
// directory of YAML conformance scenarios.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"loom/engine"
	"loom/internal/trace"
	"loom/loader"
	"loom/scenario"
)

var (
	traceEnabled bool
	traceFilter  string
	logLevel     string
)

func main() {
	root := &cobra.Command{
		Use:   "loom",
		Short: "loom runs compiled ink stories",
	}
	root.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "enable engine step tracing")
	root.PersistentFlags().StringVar(&traceFilter, "trace-filter", "", "trace filter pattern (glob, e.g. 'knot.*')")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "logrus level (debug, info, warn, error)")

	root.AddCommand(runCmd(), playCmd(), scenarioCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	l.SetLevel(level)
	return l
}

func newTracer() *trace.Tracer {
	var filters []string
	if traceFilter != "" {
		filters = strings.Split(traceFilter, ",")
	}
	return trace.New(traceEnabled, filters, os.Stderr)
}

func loadStory(storyPath string) (*engine.Engine, error) {
	raw, err := os.ReadFile(storyPath)
	if err != nil {
		return nil, fmt.Errorf("read story: %w", err)
	}
	tree, err := loader.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("load story: %w", err)
	}
	eng := engine.New(tree, nil)
	eng.Logger = newLogger()
	eng.Tracer = newTracer()
	return eng, nil
}

func runCmd() *cobra.Command {
	var choicesFlag string
	cmd := &cobra.Command{
		Use:   "run <story.json>",
		Short: "run a story non-interactively against a fixed choice sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadStory(args[0])
			if err != nil {
				return err
			}
			choices := parseChoices(choicesFlag)
			step := 0
			for eng.CanContinue() || len(eng.CurrentChoices()) > 0 {
				if eng.CanContinue() {
					text, err := eng.ContinueMaximally()
					if err != nil {
						return err
					}
					fmt.Print(text)
					continue
				}
				if len(eng.CurrentChoices()) == 0 {
					break
				}
				idx := 0
				if step < len(choices) {
					idx = choices[step]
				}
				step++
				if err := eng.ChooseChoice(idx); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&choicesFlag, "choices", "", "comma-separated choice indices, e.g. 0,1,2")
	return cmd
}

func parseChoices(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <story.json>",
		Short: "play a story interactively, prompting for choices on the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadStory(args[0])
			if err != nil {
				return err
			}
			eng.Callbacks.OnError = func(message string, severity engine.Severity) {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", severity, message)
			}
			reader := bufio.NewReader(os.Stdin)
			for eng.CanContinue() || len(eng.CurrentChoices()) > 0 {
				if eng.CanContinue() {
					text, err := eng.ContinueMaximally()
					if err != nil {
						return err
					}
					fmt.Print(text)
					continue
				}
				choices := eng.CurrentChoices()
				if len(choices) == 0 {
					break
				}
				for i, c := range choices {
					fmt.Printf("%d) %s\n", i+1, c.Text)
				}
				fmt.Print("> ")
				line, _ := reader.ReadString('\n')
				n, err := strconv.Atoi(strings.TrimSpace(line))
				if err != nil || n < 1 || n > len(choices) {
					fmt.Fprintln(os.Stderr, "invalid choice")
					continue
				}
				if err := eng.ChooseChoice(n - 1); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <dir>",
		Short: "run a directory of YAML conformance scenarios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := scenario.LoadAllTests(args[0])
			if err != nil {
				return err
			}
			runner := scenario.NewRunner()
			results := runner.RunAll(tests)
			for _, r := range results {
				switch {
				case r.Skipped:
					fmt.Printf("SKIP %s (%s)\n", r.Test.Test.Name, r.SkipReason)
				case r.Error != nil:
					fmt.Printf("FAIL %s: %v\n", r.Test.Test.Name, r.Error)
				case r.Passed:
					fmt.Printf("PASS %s\n", r.Test.Test.Name)
				}
			}
			stats := scenario.ComputeStats(results)
			fmt.Println(scenario.FormatStats(stats))
			if stats.Failed > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}
