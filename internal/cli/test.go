package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/recq/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Golden string // golden directory (default <scenarios-dir>/golden)
	Update bool   // regenerate golden files
	Filter string // glob over scenario file names, without extension
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name       string   `json:"name"`
	Pass       bool     `json:"pass"`
	DurationMS int64    `json:"duration_ms"`
	Golden     string   `json:"golden,omitempty"` // "match", "updated", "missing" or "mismatch"
	Errors     []string `json:"errors,omitempty"`
}

// TestResult summarises a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	r.Total++
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run query scenarios",
		Long: `Run YAML query scenarios through the harness.

Each scenario loads a dataset, runs its query in memory and against a
scratch SQLite store, and checks the assertions. When a golden snapshot
exists for the scenario it must match as well.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  recq test ./scenarios
  recq test ./scenarios --filter "fuzzy_*"
  recq test ./scenarios --golden ./golden --update
  recq test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden snapshot directory (default <scenarios-dir>/golden)")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	golden := opts.Golden
	if golden == "" {
		golden = filepath.Join(dir, "golden")
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	r := scenarioRunner{golden: golden, update: opts.Update}
	if opts.Format != "json" {
		r.progress = cmd.OutOrStdout()
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, f := range files {
		result.add(r.run(f))
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	if result.Total == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles walks dir for .yaml and .yml files in lexical order.
func findScenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", filter, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// scenarioRunner runs scenario files one by one against a golden
// directory, printing a line per scenario when progress is set.
type scenarioRunner struct {
	golden   string
	update   bool
	progress io.Writer
}

func (r scenarioRunner) run(path string) ScenarioResult {
	start := time.Now()
	res := r.evaluate(path)
	res.DurationMS = time.Since(start).Milliseconds()
	res.Pass = len(res.Errors) == 0

	if r.progress != nil {
		mark := "✓"
		if !res.Pass {
			mark = "✗"
		}
		note := ""
		if res.Golden == "updated" {
			note = " (golden updated)"
		}
		fmt.Fprintf(r.progress, "%s %s%s\n", mark, res.Name, note)
		for _, e := range res.Errors {
			fmt.Fprintf(r.progress, "  %s\n", e)
		}
	}
	return res
}

func (r scenarioRunner) evaluate(path string) ScenarioResult {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(path),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}
	res := ScenarioResult{Name: scenario.Name}

	out, err := harness.Run(scenario)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return res
	}
	res.Errors = append(res.Errors, out.Errors...)

	snap, err := harness.MarshalSnapshot(out.Snapshot)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("failed to marshal snapshot: %v", err))
		return res
	}
	status, err := r.checkGolden(scenario.Name, snap)
	res.Golden = status
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	return res
}

// checkGolden compares snap with <golden>/<name>.golden, or rewrites the
// file in update mode. A missing file is not a failure.
func (r scenarioRunner) checkGolden(name string, snap []byte) (string, error) {
	path := filepath.Join(r.golden, name+".golden")
	if r.update {
		if err := os.MkdirAll(r.golden, 0o755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snap, 0o644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return "updated", nil
	}

	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "missing", nil
	case err != nil:
		return "", fmt.Errorf("failed to read golden file: %w", err)
	case !bytes.Equal(want, snap):
		return "mismatch", errors.New("snapshot does not match golden file (run with --update to regenerate)")
	}
	return "match", nil
}

func testFailure(result TestResult) error {
	return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
}

func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	resp := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if result.Failed > 0 {
		return testFailure(result)
	}
	return nil
}

func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return testFailure(result)
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
