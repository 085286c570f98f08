package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/scenario"
	"github.com/roach88/exprql/internal/serialize"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Dialect  string // overrides the scenario's dialect
	Dialects string // directory of CUE dialect definitions
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Scenario  string   `json:"scenario"`
	Dialect   string   `json:"dialect"`
	Text      string   `json:"text,omitempty"`
	Constants []string `json:"constants,omitempty"`
	Error     string   `json:"error,omitempty"`
	Verified  bool     `json:"verified"`
	Diffs     []string `json:"diffs,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <scenario.yaml>",
		Short: "Serialize a scenario's expression or query",
		Long: `Build the expression or query described by a scenario document and
serialize it with the scenario's dialect.

The scenario's expectations are checked unless --dialect overrides the
dialect it was written for.

Exit codes:
  0 - Rendered (and matched expectations, if any)
  1 - Serialization failed or output differs from expectations
  2 - Command error (missing file, invalid document, unknown dialect)

Examples:
  exprql render ./scenarios/cat.yaml
  exprql render ./scenarios/cat.yaml --dialect postgres
  exprql render ./scenarios/cat.yaml --dialects ./dialects --dialect oracle`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "render with this dialect instead of the scenario's")
	cmd.Flags().StringVar(&opts.Dialects, "dialects", "", "directory of CUE dialect definitions")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := loadScenario(formatter, path)
	if err != nil {
		return err
	}

	reg, _, err := newRegistry(opts.RootOptions, opts.Dialects)
	if err != nil {
		return fail(formatter, ErrCodeDialectLoad, "failed to load dialects", err)
	}

	verify := hasExpectations(s)
	if opts.Dialect != "" && opts.Dialect != s.DialectName() {
		formatter.VerboseLog("Rendering %s with %s instead of %s; expectations skipped", s.Name, opts.Dialect, s.DialectName())
		s.Dialect = opts.Dialect
		verify = false
	}

	res, err := scenario.Run(s, reg, serialize.WithLogger(opts.Logger()))
	if err != nil {
		if dialect.IsUnknownDialect(err) {
			return fail(formatter, ErrCodeUnknown, err.Error(), nil)
		}
		return fail(formatter, ErrCodeScenario, "failed to build scenario", err)
	}

	result := newRenderResult(res)
	if verify {
		if verr := scenario.Verify(s, res); verr != nil {
			var ee *scenario.ExpectationError
			if errors.As(verr, &ee) {
				result.Diffs = ee.Diffs
			}
			return renderFailure(formatter, res, result, ErrCodeExpectation, verr.Error())
		}
		result.Verified = true
	} else if res.Err != nil {
		return renderFailure(formatter, res, result, ErrCodeSerialize, res.Err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if _, err := formatter.Writer.Write(res.Golden()); err != nil {
		return err
	}
	if result.Verified {
		fmt.Fprintln(formatter.Writer, "✓ matches expectations")
	}
	return nil
}

// renderFailure reports a result that rendered but failed (exit code 1).
func renderFailure(f *OutputFormatter, res *scenario.Result, result *RenderResult, code, message string) error {
	if f.Format == "json" {
		_ = f.Failure(code, message, result)
	} else {
		_, _ = f.Writer.Write(res.Golden())
		_ = f.Failure(code, message, nil)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message))
}

func newRenderResult(res *scenario.Result) *RenderResult {
	out := &RenderResult{
		Scenario: res.Scenario,
		Dialect:  res.Dialect,
		Text:     res.Text,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
		return out
	}
	for _, c := range res.Constants {
		out.Constants = append(out.Constants, scenario.FormatConstant(c))
	}
	return out
}

func hasExpectations(s *scenario.Scenario) bool {
	return s.Expect.Text != "" || s.Expect.Error != "" || len(s.Expect.Constants) > 0
}

// loadScenario reads the scenario at path, reporting failures as command
// errors.
func loadScenario(f *OutputFormatter, path string) (*scenario.Scenario, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fail(f, ErrCodeNotFound, fmt.Sprintf("scenario file not found: %s", path), nil)
	}
	s, err := scenario.Load(path)
	if err != nil {
		return nil, fail(f, ErrCodeScenario, "failed to load scenario", err)
	}
	f.VerboseLog("Loaded scenario %s from %s", s.Name, path)
	return s, nil
}
